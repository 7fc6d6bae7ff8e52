package model

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DepartmentID is a UUID-based identifier for Department
type DepartmentID string

// NewDepartmentID generates a new UUID v4 DepartmentID
func NewDepartmentID() DepartmentID {
	return DepartmentID(uuid.New().String())
}

// String returns the string representation of DepartmentID
func (id DepartmentID) String() string {
	return string(id)
}

// Department groups employees. EmployeeIDs is a set stored as a list; EmployeesCount is a
// denormalized copy of its length kept for display only.
type Department struct {
	ID             DepartmentID
	Name           string `validate:"required,max=200"`
	ManagerID      EmployeeID
	EmployeeIDs    []EmployeeID
	EmployeesCount int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Normalize trims the name and removes empty and duplicated member IDs, keeping first
// occurrence order.
func (d *Department) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.ManagerID = EmployeeID(strings.TrimSpace(string(d.ManagerID)))
	d.EmployeeIDs = UniqueEmployeeIDs(d.EmployeeIDs)
	d.EmployeesCount = len(d.EmployeeIDs)
}

// Validate checks the department fields. It does not check references to other documents.
func (d *Department) Validate() error {
	return validateStruct(d, ErrInvalidDepartment)
}

// HasMember reports whether id is listed in EmployeeIDs
func (d *Department) HasMember(id EmployeeID) bool {
	return slices.Contains(d.EmployeeIDs, id)
}

// Copy returns a deep copy of the department
func (d *Department) Copy() *Department {
	copied := *d
	copied.EmployeeIDs = slices.Clone(d.EmployeeIDs)
	return &copied
}

// DepartmentPatch holds a partial update of a department. Nil fields are left untouched.
type DepartmentPatch struct {
	Name        *string
	ManagerID   *EmployeeID
	EmployeeIDs *[]EmployeeID
}

// IsEmpty reports whether the patch changes nothing
func (p *DepartmentPatch) IsEmpty() bool {
	return p.Name == nil && p.ManagerID == nil && p.EmployeeIDs == nil
}

// Apply returns a copy of d with the patch merged in
func (p *DepartmentPatch) Apply(d *Department) *Department {
	merged := d.Copy()
	if p.Name != nil {
		merged.Name = *p.Name
	}
	if p.ManagerID != nil {
		merged.ManagerID = *p.ManagerID
	}
	if p.EmployeeIDs != nil {
		merged.EmployeeIDs = slices.Clone(*p.EmployeeIDs)
	}
	return merged
}

// UniqueEmployeeIDs drops empty and duplicated IDs, keeping first occurrence order
func UniqueEmployeeIDs(ids []EmployeeID) []EmployeeID {
	seen := make(map[EmployeeID]struct{}, len(ids))
	result := make([]EmployeeID, 0, len(ids))
	for _, id := range ids {
		id = EmployeeID(strings.TrimSpace(string(id)))
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

// IntersectEmployeeIDs returns the IDs of a that are also in b, in the order of a
func IntersectEmployeeIDs(a, b []EmployeeID) []EmployeeID {
	set := make(map[EmployeeID]struct{}, len(b))
	for _, id := range b {
		set[id] = struct{}{}
	}

	var result []EmployeeID
	for _, id := range a {
		if _, ok := set[id]; ok {
			result = append(result, id)
		}
	}
	return result
}

// SubtractEmployeeIDs returns the IDs of a that are not in b, in the order of a
func SubtractEmployeeIDs(a, b []EmployeeID) []EmployeeID {
	set := make(map[EmployeeID]struct{}, len(b))
	for _, id := range b {
		set[id] = struct{}{}
	}

	var result []EmployeeID
	for _, id := range a {
		if _, ok := set[id]; !ok {
			result = append(result, id)
		}
	}
	return result
}
