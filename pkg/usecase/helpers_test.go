package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/orgdesk/pkg/domain/interfaces"
	"github.com/secmon-lab/orgdesk/pkg/domain/model"
	"github.com/secmon-lab/orgdesk/pkg/domain/types"
	"github.com/secmon-lab/orgdesk/pkg/repository/memory"
	"github.com/secmon-lab/orgdesk/pkg/usecase"
	"github.com/shopspring/decimal"
)

func setup(t *testing.T, opts ...memory.Option) (*usecase.UseCases, *memory.Memory) {
	t.Helper()
	repo := memory.New(opts...)
	return usecase.New(repo), repo
}

func employeeInput(name, email string) *model.Employee {
	return &model.Employee{
		Name:          name,
		Email:         email,
		Status:        types.EmployeeStatusActive,
		Avatar:        "avatar2",
		Role:          "Engineer",
		AdmissionDate: "2022-01-17",
		Level:         types.HierarchyLevelMid,
		BaseSalary:    decimal.RequireFromString("5300.00"),
	}
}

func saveEmployee(t *testing.T, uc *usecase.UseCases, input *model.Employee) model.EmployeeID {
	t.Helper()
	id, err := uc.Employee.SaveEmployeeAndSyncDepartments(context.Background(), "", input)
	gt.NoError(t, err).Required()
	return id
}

func saveDepartment(t *testing.T, uc *usecase.UseCases, name string, members ...model.EmployeeID) model.DepartmentID {
	t.Helper()
	id, err := uc.Department.SaveDepartmentAndSyncEmployees(context.Background(), "", &model.Department{
		Name:        name,
		EmployeeIDs: members,
	})
	gt.NoError(t, err).Required()
	return id
}

func getEmployee(t *testing.T, uc *usecase.UseCases, id model.EmployeeID) *model.Employee {
	t.Helper()
	e, err := uc.Employee.GetEmployee(context.Background(), id)
	gt.NoError(t, err).Required()
	gt.Value(t, e).NotNil().Required()
	return e
}

func getDepartment(t *testing.T, uc *usecase.UseCases, id model.DepartmentID) *model.Department {
	t.Helper()
	d, err := uc.Department.GetDepartment(context.Background(), id)
	gt.NoError(t, err).Required()
	gt.Value(t, d).NotNil().Required()
	return d
}

// assertConsistent checks that every employee is listed by exactly the department it points
// at and by no other.
func assertConsistent(t *testing.T, repo interfaces.Repository) {
	t.Helper()
	ctx := context.Background()

	employees, err := repo.Employee().List(ctx)
	gt.NoError(t, err).Required()
	departments, err := repo.Department().List(ctx)
	gt.NoError(t, err).Required()

	for _, d := range departments {
		if d.EmployeesCount != len(d.EmployeeIDs) {
			t.Errorf("department %s has employeesCount %d for %d listed members", d.ID, d.EmployeesCount, len(d.EmployeeIDs))
		}
	}

	for _, e := range employees {
		for _, d := range departments {
			listed := 0
			for _, id := range d.EmployeeIDs {
				if id == e.ID {
					listed++
				}
			}
			if d.ID == e.DepartmentID {
				if listed != 1 {
					t.Errorf("department %s lists employee %s %d times, want 1", d.ID, e.ID, listed)
				}
			} else if listed != 0 {
				t.Errorf("department %s lists employee %s that points at %q", d.ID, e.ID, e.DepartmentID)
			}
		}
	}
}

func isErr(err, target error) bool {
	return errors.Is(err, target)
}
