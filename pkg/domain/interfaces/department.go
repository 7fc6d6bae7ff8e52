package interfaces

import (
	"context"

	"github.com/secmon-lab/orgdesk/pkg/domain/model"
)

// DepartmentRepository is the read side of the departments collection. Writes go through
// Transaction.
type DepartmentRepository interface {
	// Get retrieves a department by ID. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, id model.DepartmentID) (*model.Department, error)

	// List retrieves all departments, newest first
	List(ctx context.Context) ([]*model.Department, error)
}
