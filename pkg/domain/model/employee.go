package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/types"
	"github.com/shopspring/decimal"
)

// EmployeeID is a UUID-based identifier for Employee
type EmployeeID string

// NewEmployeeID generates a new UUID v4 EmployeeID
func NewEmployeeID() EmployeeID {
	return EmployeeID(uuid.New().String())
}

// String returns the string representation of EmployeeID
func (id EmployeeID) String() string {
	return string(id)
}

// AdmissionDateLayout is the calendar date format of Employee.AdmissionDate
const AdmissionDateLayout = "2006-01-02"

// Employee is a member of the organization
type Employee struct {
	ID            EmployeeID
	Name          string `validate:"required,max=200"`
	Email         string `validate:"required,email,max=254"`
	DepartmentID  DepartmentID
	Status        types.EmployeeStatus
	Avatar        types.AvatarID `validate:"required"`
	Role          string         `validate:"required,max=200"`
	AdmissionDate string         `validate:"required,datetime=2006-01-02"`
	Level         types.HierarchyLevel
	ManagerID     EmployeeID
	BaseSalary    decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NormalizeEmail trims and lower-cases an email address. Uniqueness of employee emails is
// defined on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Normalize trims free text fields, normalizes the email, fills the default status and rounds
// the salary to cents.
func (e *Employee) Normalize() {
	e.Name = strings.TrimSpace(e.Name)
	e.Email = NormalizeEmail(e.Email)
	e.Role = strings.TrimSpace(e.Role)
	e.AdmissionDate = strings.TrimSpace(e.AdmissionDate)
	e.DepartmentID = DepartmentID(strings.TrimSpace(string(e.DepartmentID)))
	e.ManagerID = EmployeeID(strings.TrimSpace(string(e.ManagerID)))
	e.Status = e.Status.Normalize()
	e.BaseSalary = e.BaseSalary.Round(2)
}

// Validate checks the employee fields. It does not check references to other documents.
func (e *Employee) Validate() error {
	if err := validateStruct(e, ErrInvalidEmployee); err != nil {
		return err
	}
	if !e.Status.IsValid() {
		return goerr.Wrap(ErrInvalidEmployee, "invalid status",
			goerr.V(FieldKey, "Status"), goerr.V(ValueKey, e.Status))
	}
	if !e.Level.IsValid() {
		return goerr.Wrap(ErrInvalidEmployee, "invalid hierarchy level",
			goerr.V(FieldKey, "Level"), goerr.V(ValueKey, e.Level))
	}
	if !e.BaseSalary.IsPositive() {
		return goerr.Wrap(ErrInvalidEmployee, "base salary must be positive",
			goerr.V(FieldKey, "BaseSalary"), goerr.V(ValueKey, e.BaseSalary.String()))
	}
	if e.ID != "" && e.ManagerID == e.ID {
		return goerr.Wrap(ErrInvalidEmployee, "employee cannot be its own manager",
			goerr.V(FieldKey, "ManagerID"))
	}
	return nil
}

// EmployeePatch holds a partial update of an employee. Nil fields are left untouched.
type EmployeePatch struct {
	Name          *string
	Email         *string
	DepartmentID  *DepartmentID
	Status        *types.EmployeeStatus
	Avatar        *types.AvatarID
	Role          *string
	AdmissionDate *string
	Level         *types.HierarchyLevel
	ManagerID     *EmployeeID
	BaseSalary    *decimal.Decimal
}

// IsEmpty reports whether the patch changes nothing
func (p *EmployeePatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.DepartmentID == nil && p.Status == nil &&
		p.Avatar == nil && p.Role == nil && p.AdmissionDate == nil && p.Level == nil &&
		p.ManagerID == nil && p.BaseSalary == nil
}

// Apply returns a copy of e with the patch merged in
func (p *EmployeePatch) Apply(e *Employee) *Employee {
	merged := *e
	if p.Name != nil {
		merged.Name = *p.Name
	}
	if p.Email != nil {
		merged.Email = *p.Email
	}
	if p.DepartmentID != nil {
		merged.DepartmentID = *p.DepartmentID
	}
	if p.Status != nil {
		merged.Status = *p.Status
	}
	if p.Avatar != nil {
		merged.Avatar = *p.Avatar
	}
	if p.Role != nil {
		merged.Role = *p.Role
	}
	if p.AdmissionDate != nil {
		merged.AdmissionDate = *p.AdmissionDate
	}
	if p.Level != nil {
		merged.Level = *p.Level
	}
	if p.ManagerID != nil {
		merged.ManagerID = *p.ManagerID
	}
	if p.BaseSalary != nil {
		merged.BaseSalary = *p.BaseSalary
	}
	return &merged
}
