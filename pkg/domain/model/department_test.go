package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/orgdesk/pkg/domain/model"
)

func TestDepartment_Normalize(t *testing.T) {
	d := &model.Department{
		Name:        "  Engineering ",
		EmployeeIDs: []model.EmployeeID{"a", "b", "", "a", " c ", "b"},
	}
	d.Normalize()

	gt.Value(t, d.Name).Equal("Engineering")
	gt.Value(t, d.EmployeeIDs).Equal([]model.EmployeeID{"a", "b", "c"})
	gt.Number(t, d.EmployeesCount).Equal(3)
}

func TestDepartment_Validate(t *testing.T) {
	gt.NoError(t, (&model.Department{Name: "Sales"}).Validate())
	gt.Error(t, (&model.Department{}).Validate()).Is(model.ErrInvalidDepartment)
}

func TestDepartment_Copy(t *testing.T) {
	d := &model.Department{ID: "d1", Name: "Ops", EmployeeIDs: []model.EmployeeID{"a"}}
	copied := d.Copy()
	copied.EmployeeIDs[0] = "z"

	gt.Value(t, d.EmployeeIDs[0]).Equal(model.EmployeeID("a"))
	gt.Bool(t, d.HasMember("a")).True()
	gt.Bool(t, d.HasMember("z")).False()
}

func TestDepartmentPatch_Apply(t *testing.T) {
	d := &model.Department{ID: "d1", Name: "Ops", EmployeeIDs: []model.EmployeeID{"a"}}
	ids := []model.EmployeeID{"b", "c"}
	p := &model.DepartmentPatch{EmployeeIDs: &ids}

	merged := p.Apply(d)
	gt.Value(t, merged.Name).Equal("Ops")
	gt.Value(t, merged.EmployeeIDs).Equal([]model.EmployeeID{"b", "c"})
	gt.Value(t, d.EmployeeIDs).Equal([]model.EmployeeID{"a"})
}

func TestEmployeeIDSetOperations(t *testing.T) {
	a := []model.EmployeeID{"1", "2", "3", "4"}
	b := []model.EmployeeID{"4", "2", "9"}

	gt.Value(t, model.IntersectEmployeeIDs(a, b)).Equal([]model.EmployeeID{"2", "4"})
	gt.Value(t, model.SubtractEmployeeIDs(a, b)).Equal([]model.EmployeeID{"1", "3"})
	gt.Array(t, model.IntersectEmployeeIDs(a, nil)).Length(0)
	gt.Value(t, model.SubtractEmployeeIDs(a, nil)).Equal(a)
}

func TestNewIDs(t *testing.T) {
	gt.Value(t, model.NewEmployeeID()).NotEqual(model.NewEmployeeID())
	gt.Number(t, len(model.NewDepartmentID().String())).Equal(36)
}
