package interfaces

import (
	"context"

	"github.com/secmon-lab/orgdesk/pkg/domain/model"
	"github.com/secmon-lab/orgdesk/pkg/domain/types"
)

// EmployeeRepository is the read side of the employees collection. Writes go through
// Transaction.
type EmployeeRepository interface {
	// Get retrieves an employee by ID. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, id model.EmployeeID) (*model.Employee, error)

	// List retrieves all employees, newest first
	List(ctx context.Context) ([]*model.Employee, error)

	// ListByDepartment retrieves employees whose departmentId equals departmentID, newest first
	ListByDepartment(ctx context.Context, departmentID model.DepartmentID) ([]*model.Employee, error)

	// ListByLevel retrieves employees with the given hierarchy level, newest first
	ListByLevel(ctx context.Context, level types.HierarchyLevel) ([]*model.Employee, error)

	// FindByEmail returns the first employee whose stored email equals email.
	// Returns nil, nil if there is none.
	FindByEmail(ctx context.Context, email string) (*model.Employee, error)
}
