package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/orgdesk/pkg/domain/model"
	"github.com/secmon-lab/orgdesk/pkg/domain/types"
	"github.com/secmon-lab/orgdesk/pkg/usecase"
)

func TestDepartmentUseCase_CreateDepartment(t *testing.T) {
	ctx := context.Background()
	uc, _ := setup(t)
	e1 := saveEmployee(t, uc, employeeInput("Ana", "ana@example.com"))

	created, err := uc.Department.CreateDepartment(ctx, &model.Department{
		Name:        " Legal ",
		EmployeeIDs: []model.EmployeeID{e1, e1},
	})
	gt.NoError(t, err).Required()
	gt.Value(t, created.Name).Equal("Legal")
	gt.Value(t, created.EmployeeIDs).Equal([]model.EmployeeID{e1})
	gt.Number(t, created.EmployeesCount).Equal(1)

	t.Run("does not touch employees", func(t *testing.T) {
		gt.Value(t, getEmployee(t, uc, e1).DepartmentID).Equal(model.DepartmentID(""))
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := uc.Department.CreateDepartment(ctx, &model.Department{Name: "  "})
		gt.Error(t, err).Is(usecase.ErrInvalidDepartment)
	})

	t.Run("rejects non-manager", func(t *testing.T) {
		_, err := uc.Department.CreateDepartment(ctx, &model.Department{Name: "Ops", ManagerID: e1})
		gt.Error(t, err).Is(usecase.ErrInvalidManager)
	})
}

func TestDepartmentUseCase_GetAndList(t *testing.T) {
	ctx := context.Background()
	uc, _ := setup(t)

	d, err := uc.Department.GetDepartment(ctx, model.NewDepartmentID())
	gt.NoError(t, err).Required()
	gt.Value(t, d).Nil()

	first := saveDepartment(t, uc, "First")
	second := saveDepartment(t, uc, "Second")

	list, err := uc.Department.ListDepartments(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, list).Length(2).Required()
	gt.Value(t, list[0].ID).Equal(second)
	gt.Value(t, list[1].ID).Equal(first)
}

func TestDepartmentUseCase_UpdateDepartment(t *testing.T) {
	ctx := context.Background()
	uc, _ := setup(t)
	e1 := saveEmployee(t, uc, employeeInput("Ana", "ana@example.com"))
	id := saveDepartment(t, uc, "Legal")

	name := "Legal & Compliance"
	members := []model.EmployeeID{e1}
	updated, err := uc.Department.UpdateDepartment(ctx, id, &model.DepartmentPatch{
		Name:        &name,
		EmployeeIDs: &members,
	})
	gt.NoError(t, err).Required()
	gt.Value(t, updated.Name).Equal(name)
	gt.Value(t, updated.EmployeeIDs).Equal(members)
	gt.Value(t, getEmployee(t, uc, e1).DepartmentID).Equal(model.DepartmentID(""))

	_, err = uc.Department.UpdateDepartment(ctx, model.NewDepartmentID(), &model.DepartmentPatch{Name: &name})
	gt.Error(t, err).Is(usecase.ErrDepartmentNotFound)
}

func TestDepartmentUseCase_SaveDepartmentAndSyncEmployees(t *testing.T) {
	ctx := context.Background()

	t.Run("members are moved out of other departments", func(t *testing.T) {
		uc, repo := setup(t)
		e1 := saveEmployee(t, uc, employeeInput("Ana", "ana@example.com"))
		e2 := saveEmployee(t, uc, employeeInput("Bruno", "bruno@example.com"))
		e3 := saveEmployee(t, uc, employeeInput("Carla", "carla@example.com"))

		d0 := saveDepartment(t, uc, "Old", e1, e3)
		d1 := saveDepartment(t, uc, "New", e1, e2)

		gt.Value(t, getDepartment(t, uc, d0).EmployeeIDs).Equal([]model.EmployeeID{e3})
		gt.Value(t, getEmployee(t, uc, e1).DepartmentID).Equal(d1)
		gt.Value(t, getEmployee(t, uc, e2).DepartmentID).Equal(d1)
		gt.Value(t, getEmployee(t, uc, e3).DepartmentID).Equal(d0)

		saved := getDepartment(t, uc, d1)
		gt.Value(t, saved.EmployeeIDs).Equal([]model.EmployeeID{e1, e2})
		gt.Number(t, saved.EmployeesCount).Equal(2)
		assertConsistent(t, repo)
	})

	t.Run("dropped members are cleared", func(t *testing.T) {
		uc, repo := setup(t)
		e1 := saveEmployee(t, uc, employeeInput("Ana", "ana@example.com"))
		e2 := saveEmployee(t, uc, employeeInput("Bruno", "bruno@example.com"))
		id := saveDepartment(t, uc, "Team", e1, e2)

		_, err := uc.Department.SaveDepartmentAndSyncEmployees(ctx, id, &model.Department{
			Name:        "Team",
			EmployeeIDs: []model.EmployeeID{e2},
		})
		gt.NoError(t, err).Required()

		gt.Value(t, getEmployee(t, uc, e1).DepartmentID).Equal(model.DepartmentID(""))
		gt.Value(t, getEmployee(t, uc, e2).DepartmentID).Equal(id)
		gt.Number(t, getDepartment(t, uc, id).EmployeesCount).Equal(1)
		assertConsistent(t, repo)
	})

	t.Run("keeps creation time on update", func(t *testing.T) {
		uc, _ := setup(t)
		id := saveDepartment(t, uc, "Team")
		before := getDepartment(t, uc, id)

		_, err := uc.Department.SaveDepartmentAndSyncEmployees(ctx, id, &model.Department{Name: "Renamed"})
		gt.NoError(t, err).Required()

		after := getDepartment(t, uc, id)
		gt.Value(t, after.Name).Equal("Renamed")
		gt.Bool(t, after.CreatedAt.Equal(before.CreatedAt)).True()
	})

	t.Run("unknown member is rejected", func(t *testing.T) {
		uc, _ := setup(t)
		_, err := uc.Department.SaveDepartmentAndSyncEmployees(ctx, "", &model.Department{
			Name:        "Team",
			EmployeeIDs: []model.EmployeeID{model.NewEmployeeID()},
		})
		gt.Error(t, err).Is(usecase.ErrEmployeeNotFound)

		list, err := uc.Department.ListDepartments(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(0)
	})

	t.Run("missing department is rejected", func(t *testing.T) {
		uc, _ := setup(t)
		_, err := uc.Department.SaveDepartmentAndSyncEmployees(ctx, model.NewDepartmentID(), &model.Department{Name: "Team"})
		gt.Error(t, err).Is(usecase.ErrDepartmentNotFound)
	})

	t.Run("manager must be a Manager", func(t *testing.T) {
		uc, _ := setup(t)
		boss := employeeInput("Boss", "boss@example.com")
		boss.Level = types.HierarchyLevelManager
		bossID := saveEmployee(t, uc, boss)
		mid := saveEmployee(t, uc, employeeInput("Mid", "mid@example.com"))

		_, err := uc.Department.SaveDepartmentAndSyncEmployees(ctx, "", &model.Department{Name: "Team", ManagerID: mid})
		gt.Error(t, err).Is(usecase.ErrInvalidManager)

		id, err := uc.Department.SaveDepartmentAndSyncEmployees(ctx, "", &model.Department{Name: "Team", ManagerID: bossID})
		gt.NoError(t, err).Required()
		gt.Value(t, getDepartment(t, uc, id).ManagerID).Equal(bossID)
	})
}

func TestDepartmentUseCase_DeleteDepartmentAndClearEmployees(t *testing.T) {
	ctx := context.Background()
	uc, repo := setup(t)
	e1 := saveEmployee(t, uc, employeeInput("Ana", "ana@example.com"))
	e2 := saveEmployee(t, uc, employeeInput("Bruno", "bruno@example.com"))
	id := saveDepartment(t, uc, "Team", e1, e2)

	gt.NoError(t, uc.Department.DeleteDepartmentAndClearEmployees(ctx, id)).Required()

	d, err := uc.Department.GetDepartment(ctx, id)
	gt.NoError(t, err).Required()
	gt.Value(t, d).Nil()
	gt.Value(t, getEmployee(t, uc, e1).DepartmentID).Equal(model.DepartmentID(""))
	gt.Value(t, getEmployee(t, uc, e2).DepartmentID).Equal(model.DepartmentID(""))
	assertConsistent(t, repo)

	t.Run("missing department is a no-op", func(t *testing.T) {
		gt.NoError(t, uc.Department.DeleteDepartmentAndClearEmployees(ctx, id))
	})

	t.Run("listed employee already gone", func(t *testing.T) {
		e3 := saveEmployee(t, uc, employeeInput("Carla", "carla@example.com"))
		gt.NoError(t, uc.Employee.DeleteEmployee(ctx, e3)).Required()

		stale, err := uc.Department.CreateDepartment(ctx, &model.Department{
			Name:        "Stale",
			EmployeeIDs: []model.EmployeeID{e3},
		})
		gt.NoError(t, err).Required()
		gt.NoError(t, uc.Department.DeleteDepartmentAndClearEmployees(ctx, stale.ID)).Required()
	})
}

func TestDepartmentUseCase_DeleteDepartment(t *testing.T) {
	ctx := context.Background()
	uc, _ := setup(t)
	e1 := saveEmployee(t, uc, employeeInput("Ana", "ana@example.com"))
	busy := saveDepartment(t, uc, "Busy", e1)
	empty := saveDepartment(t, uc, "Empty")

	err := uc.Department.DeleteDepartment(ctx, busy)
	gt.Error(t, err).Is(usecase.ErrDepartmentHasEmployees)
	gt.Value(t, getEmployee(t, uc, e1).DepartmentID).Equal(busy)

	gt.NoError(t, uc.Department.DeleteDepartment(ctx, empty)).Required()

	err = uc.Department.DeleteDepartment(ctx, empty)
	gt.Error(t, err).Is(usecase.ErrDepartmentNotFound)
}

func TestDepartmentUseCase_DeleteDepartments(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects the whole request when one has employees", func(t *testing.T) {
		uc, _ := setup(t)
		e1 := saveEmployee(t, uc, employeeInput("Ana", "ana@example.com"))
		empty := saveDepartment(t, uc, "Empty")
		busy := saveDepartment(t, uc, "Busy", e1)

		err := uc.Department.DeleteDepartments(ctx, []model.DepartmentID{empty, busy})
		gt.Error(t, err).Is(usecase.ErrDepartmentHasEmployees)

		list, err := uc.Department.ListDepartments(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(2)
	})

	t.Run("deletes every empty department", func(t *testing.T) {
		uc, _ := setup(t)
		var ids []model.DepartmentID
		for _, name := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"} {
			ids = append(ids, saveDepartment(t, uc, name))
		}
		keep := saveDepartment(t, uc, "Keep")

		gt.NoError(t, uc.Department.DeleteDepartments(ctx, append(ids, ids[0], model.NewDepartmentID()))).Required()

		list, err := uc.Department.ListDepartments(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(1).Required()
		gt.Value(t, list[0].ID).Equal(keep)
	})
}

func TestDepartmentUseCase_ListDepartmentSummaries(t *testing.T) {
	ctx := context.Background()
	uc, _ := setup(t)

	boss := employeeInput("Marta Gomes", "marta@example.com")
	boss.Level = types.HierarchyLevelManager
	bossID := saveEmployee(t, uc, boss)
	e1 := saveEmployee(t, uc, employeeInput("Ana", "ana@example.com"))
	e2 := saveEmployee(t, uc, employeeInput("Bruno", "bruno@example.com"))

	_, err := uc.Department.SaveDepartmentAndSyncEmployees(ctx, "", &model.Department{
		Name:        "Engineering",
		ManagerID:   bossID,
		EmployeeIDs: []model.EmployeeID{e1, e2},
	})
	gt.NoError(t, err).Required()
	saveDepartment(t, uc, "Marketing")

	t.Run("all departments with derived count", func(t *testing.T) {
		page, err := uc.Department.ListDepartmentSummaries(ctx, model.ListQuery{})
		gt.NoError(t, err).Required()
		gt.Array(t, page.Items).Length(2).Required()
		gt.Value(t, page.Items[0].Department.Name).Equal("Marketing")
		gt.Number(t, page.Items[0].MemberCount).Equal(0)
		gt.Value(t, page.Items[1].Department.Name).Equal("Engineering")
		gt.Number(t, page.Items[1].MemberCount).Equal(2)
		gt.Value(t, page.Items[1].ManagerName).Equal("Marta Gomes")
	})

	t.Run("search by name", func(t *testing.T) {
		page, err := uc.Department.ListDepartmentSummaries(ctx, model.ListQuery{Query: "ENG"})
		gt.NoError(t, err).Required()
		gt.Array(t, page.Items).Length(1).Required()
		gt.Value(t, page.Items[0].Department.Name).Equal("Engineering")
	})

	t.Run("search by count", func(t *testing.T) {
		page, err := uc.Department.ListDepartmentSummaries(ctx, model.ListQuery{Query: "0"})
		gt.NoError(t, err).Required()
		gt.Array(t, page.Items).Length(1).Required()
		gt.Value(t, page.Items[0].Department.Name).Equal("Marketing")
	})
}
