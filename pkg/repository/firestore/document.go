package firestore

import (
	"time"

	"github.com/secmon-lab/orgdesk/pkg/domain/model"
	"github.com/secmon-lab/orgdesk/pkg/domain/types"
	"github.com/shopspring/decimal"
)

type employeeDocument struct {
	Name          string    `firestore:"name"`
	Email         string    `firestore:"email"`
	DepartmentID  string    `firestore:"departmentId"`
	Status        string    `firestore:"status"`
	Avatar        string    `firestore:"avatar"`
	Role          string    `firestore:"role"`
	AdmissionDate string    `firestore:"admissionDate"`
	Level         string    `firestore:"level"`
	ManagerID     string    `firestore:"managerId"`
	BaseSalary    float64   `firestore:"baseSalary"`
	CreatedAt     time.Time `firestore:"createdAt"`
	UpdatedAt     time.Time `firestore:"updatedAt"`
}

func toEmployeeDocument(e *model.Employee) *employeeDocument {
	return &employeeDocument{
		Name:          e.Name,
		Email:         e.Email,
		DepartmentID:  e.DepartmentID.String(),
		Status:        e.Status.String(),
		Avatar:        string(e.Avatar),
		Role:          e.Role,
		AdmissionDate: e.AdmissionDate,
		Level:         e.Level.String(),
		ManagerID:     e.ManagerID.String(),
		BaseSalary:    e.BaseSalary.Round(2).InexactFloat64(),
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func (d *employeeDocument) toModel(id string) *model.Employee {
	return &model.Employee{
		ID:            model.EmployeeID(id),
		Name:          d.Name,
		Email:         d.Email,
		DepartmentID:  model.DepartmentID(d.DepartmentID),
		Status:        types.EmployeeStatus(d.Status),
		Avatar:        types.AvatarID(d.Avatar),
		Role:          d.Role,
		AdmissionDate: d.AdmissionDate,
		Level:         types.HierarchyLevel(d.Level),
		ManagerID:     model.EmployeeID(d.ManagerID),
		BaseSalary:    decimal.NewFromFloat(d.BaseSalary).Round(2),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type departmentDocument struct {
	Name           string    `firestore:"name"`
	ManagerID      string    `firestore:"managerId"`
	EmployeeIDs    []string  `firestore:"employeeIds"`
	EmployeesCount int       `firestore:"employeesCount"`
	CreatedAt      time.Time `firestore:"createdAt"`
	UpdatedAt      time.Time `firestore:"updatedAt"`
}

func toDepartmentDocument(d *model.Department) *departmentDocument {
	ids := make([]string, len(d.EmployeeIDs))
	for i, id := range d.EmployeeIDs {
		ids[i] = id.String()
	}
	return &departmentDocument{
		Name:           d.Name,
		ManagerID:      d.ManagerID.String(),
		EmployeeIDs:    ids,
		EmployeesCount: d.EmployeesCount,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func (d *departmentDocument) toModel(id string) *model.Department {
	ids := make([]model.EmployeeID, len(d.EmployeeIDs))
	for i, v := range d.EmployeeIDs {
		ids[i] = model.EmployeeID(v)
	}
	return &model.Department{
		ID:             model.DepartmentID(id),
		Name:           d.Name,
		ManagerID:      model.EmployeeID(d.ManagerID),
		EmployeeIDs:    ids,
		EmployeesCount: d.EmployeesCount,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func toAnySlice[T ~string](ids []T) []any {
	result := make([]any, len(ids))
	for i, id := range ids {
		result[i] = string(id)
	}
	return result
}
