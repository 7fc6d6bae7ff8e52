package interfaces

import (
	"github.com/secmon-lab/orgdesk/pkg/domain/model"
)

// Transaction is the view of the store inside RunTransaction. Reads observe the state at
// the start of the transaction; buffered writes are not visible to later reads.
type Transaction interface {
	GetEmployee(id model.EmployeeID) (*model.Employee, error)
	// GetEmployees reads several employees in one round trip. Missing IDs are absent from the
	// returned map.
	GetEmployees(ids ...model.EmployeeID) (map[model.EmployeeID]*model.Employee, error)
	// FindEmployeeByEmail returns nil, nil if no employee has the email
	FindEmployeeByEmail(email string) (*model.Employee, error)
	ListEmployees() ([]*model.Employee, error)
	ListEmployeesByDepartment(id model.DepartmentID) ([]*model.Employee, error)
	GetDepartment(id model.DepartmentID) (*model.Department, error)
	ListDepartments() ([]*model.Department, error)

	// CreateEmployee stores e under e.ID and stamps CreatedAt and UpdatedAt. The commit
	// fails if the ID is taken.
	CreateEmployee(e *model.Employee) (*model.Employee, error)
	// UpdateEmployee replaces every field except CreatedAt and stamps UpdatedAt. The commit
	// fails with ErrNotFound if the document does not exist.
	UpdateEmployee(e *model.Employee) (*model.Employee, error)
	// SetEmployeeDepartment overwrites departmentId only
	SetEmployeeDepartment(id model.EmployeeID, departmentID model.DepartmentID) error
	DeleteEmployee(id model.EmployeeID) error

	CreateDepartment(d *model.Department) (*model.Department, error)
	UpdateDepartment(d *model.Department) (*model.Department, error)
	// AddDepartmentMembers unions ids into employeeIds and raises employeesCount by len(ids).
	// ids must be distinct and not yet listed.
	AddDepartmentMembers(id model.DepartmentID, ids ...model.EmployeeID) error
	// RemoveDepartmentMembers removes every occurrence of ids from employeeIds and lowers
	// employeesCount by len(ids). ids must be the listed occurrences, as returned by
	// model.IntersectEmployeeIDs(d.EmployeeIDs, ...).
	RemoveDepartmentMembers(id model.DepartmentID, ids ...model.EmployeeID) error
	DeleteDepartment(id model.DepartmentID) error
}
