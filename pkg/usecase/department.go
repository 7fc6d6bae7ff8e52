package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/interfaces"
	"github.com/secmon-lab/orgdesk/pkg/domain/model"
	"github.com/secmon-lab/orgdesk/pkg/domain/model/config"
	"github.com/secmon-lab/orgdesk/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

type DepartmentUseCase struct {
	repo    interfaces.Repository
	console *config.Console
}

func NewDepartmentUseCase(repo interfaces.Repository, console *config.Console) *DepartmentUseCase {
	return &DepartmentUseCase{
		repo:    repo,
		console: console,
	}
}

func prepareDepartment(input *model.Department) (*model.Department, error) {
	d := input.Copy()
	d.Normalize()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// CreateDepartment inserts a department as given. Listed employees are not updated.
func (uc *DepartmentUseCase) CreateDepartment(ctx context.Context, input *model.Department) (*model.Department, error) {
	d, err := prepareDepartment(input)
	if err != nil {
		return nil, err
	}
	d.ID = model.NewDepartmentID()

	var created *model.Department
	err = uc.repo.RunTransaction(ctx, func(ctx context.Context, tx interfaces.Transaction) error {
		if err := checkManager(tx, d.ManagerID, ""); err != nil {
			return err
		}
		var err error
		created, err = tx.CreateDepartment(d)
		return err
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create department")
	}
	return created, nil
}

// GetDepartment returns nil, nil when the department does not exist
func (uc *DepartmentUseCase) GetDepartment(ctx context.Context, id model.DepartmentID) (*model.Department, error) {
	d, err := uc.repo.Department().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get department", goerr.V(DepartmentIDKey, id))
	}
	return d, nil
}

// ListDepartments returns every department, newest first
func (uc *DepartmentUseCase) ListDepartments(ctx context.Context) ([]*model.Department, error) {
	departments, err := uc.repo.Department().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list departments")
	}
	return departments, nil
}

// UpdateDepartment merges patch into the stored department without touching employees
func (uc *DepartmentUseCase) UpdateDepartment(ctx context.Context, id model.DepartmentID, patch *model.DepartmentPatch) (*model.Department, error) {
	var updated *model.Department
	err := uc.repo.RunTransaction(ctx, func(ctx context.Context, tx interfaces.Transaction) error {
		existing, err := tx.GetDepartment(id)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return goerr.Wrap(ErrDepartmentNotFound, "cannot update missing department", goerr.V(DepartmentIDKey, id))
			}
			return goerr.Wrap(err, "failed to get department", goerr.V(DepartmentIDKey, id))
		}

		merged, err := prepareDepartment(patch.Apply(existing))
		if err != nil {
			return err
		}
		if merged.ManagerID != existing.ManagerID {
			if err := checkManager(tx, merged.ManagerID, ""); err != nil {
				return err
			}
		}

		updated, err = tx.UpdateDepartment(merged)
		return err
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update department", goerr.V(DepartmentIDKey, id))
	}
	return updated, nil
}

// SaveDepartmentAndSyncEmployees creates (empty id) or updates the department in one
// transaction and makes its member list authoritative: listed employees point at it and are
// removed from every other department, dropped members that still point at it are cleared.
func (uc *DepartmentUseCase) SaveDepartmentAndSyncEmployees(ctx context.Context, id model.DepartmentID, input *model.Department) (model.DepartmentID, error) {
	d, err := prepareDepartment(input)
	if err != nil {
		return "", err
	}

	isNew := id == ""
	if isNew {
		d.ID = model.NewDepartmentID()
	} else {
		d.ID = id
	}

	err = uc.repo.RunTransaction(ctx, func(ctx context.Context, tx interfaces.Transaction) error {
		var dropped []model.EmployeeID
		if !isNew {
			existing, err := tx.GetDepartment(d.ID)
			if err != nil {
				if errors.Is(err, interfaces.ErrNotFound) {
					return goerr.Wrap(ErrDepartmentNotFound, "cannot save missing department", goerr.V(DepartmentIDKey, d.ID))
				}
				return goerr.Wrap(err, "failed to get department", goerr.V(DepartmentIDKey, d.ID))
			}
			dropped = model.SubtractEmployeeIDs(existing.EmployeeIDs, d.EmployeeIDs)
			d.CreatedAt = existing.CreatedAt
		}

		if err := checkManager(tx, d.ManagerID, ""); err != nil {
			return err
		}

		employees, err := tx.GetEmployees(append(d.EmployeeIDs[:len(d.EmployeeIDs):len(d.EmployeeIDs)], dropped...)...)
		if err != nil {
			return err
		}
		for _, member := range d.EmployeeIDs {
			if _, ok := employees[member]; !ok {
				return goerr.Wrap(ErrEmployeeNotFound, "listed employee does not exist",
					goerr.V(EmployeeIDKey, member),
					goerr.V(DepartmentIDKey, d.ID))
			}
		}

		departments, err := tx.ListDepartments()
		if err != nil {
			return err
		}

		if isNew {
			if _, err := tx.CreateDepartment(d); err != nil {
				return err
			}
		} else {
			if _, err := tx.UpdateDepartment(d); err != nil {
				return err
			}
		}

		for _, other := range departments {
			if other.ID == d.ID {
				continue
			}
			if overlap := model.IntersectEmployeeIDs(other.EmployeeIDs, d.EmployeeIDs); len(overlap) > 0 {
				if err := tx.RemoveDepartmentMembers(other.ID, overlap...); err != nil {
					return err
				}
			}
		}

		for _, member := range d.EmployeeIDs {
			if employees[member].DepartmentID != d.ID {
				if err := tx.SetEmployeeDepartment(member, d.ID); err != nil {
					return err
				}
			}
		}

		for _, member := range dropped {
			if e, ok := employees[member]; ok && e.DepartmentID == d.ID {
				if err := tx.SetEmployeeDepartment(member, ""); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to save department", goerr.V(DepartmentIDKey, d.ID))
	}

	logging.From(ctx).Info("department saved",
		"department_id", d.ID,
		"members", len(d.EmployeeIDs),
		"created", isNew)
	return d.ID, nil
}

// DeleteDepartmentAndClearEmployees deletes the department and clears departmentId of the
// employees pointing at it. A missing department is a no-op.
func (uc *DepartmentUseCase) DeleteDepartmentAndClearEmployees(ctx context.Context, id model.DepartmentID) error {
	err := uc.repo.RunTransaction(ctx, func(ctx context.Context, tx interfaces.Transaction) error {
		existing, err := getDepartmentIfExists(tx, id)
		if err != nil || existing == nil {
			return err
		}
		return deleteDepartmentTx(tx, existing, false)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to delete department", goerr.V(DepartmentIDKey, id))
	}
	return nil
}

// DeleteDepartment deletes the department only when no employee points at it
func (uc *DepartmentUseCase) DeleteDepartment(ctx context.Context, id model.DepartmentID) error {
	err := uc.repo.RunTransaction(ctx, func(ctx context.Context, tx interfaces.Transaction) error {
		existing, err := getDepartmentIfExists(tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return goerr.Wrap(ErrDepartmentNotFound, "cannot delete missing department", goerr.V(DepartmentIDKey, id))
		}
		return deleteDepartmentTx(tx, existing, true)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to delete department", goerr.V(DepartmentIDKey, id))
	}

	logging.From(ctx).Info("department deleted", "department_id", id)
	return nil
}

func deleteDepartmentTx(tx interfaces.Transaction, d *model.Department, guarded bool) error {
	linked, err := tx.ListEmployeesByDepartment(d.ID)
	if err != nil {
		return err
	}
	if guarded && len(linked) > 0 {
		return goerr.Wrap(ErrDepartmentHasEmployees, "move employees out before deleting",
			goerr.V(DepartmentIDKey, d.ID),
			goerr.V(MemberCountKey, len(linked)))
	}

	listed, err := tx.GetEmployees(d.EmployeeIDs...)
	if err != nil {
		return err
	}

	cleared := make(map[model.EmployeeID]struct{}, len(linked)+len(listed))
	for _, e := range linked {
		cleared[e.ID] = struct{}{}
	}
	for _, e := range listed {
		if e.DepartmentID == d.ID {
			cleared[e.ID] = struct{}{}
		}
	}

	for id := range cleared {
		if err := tx.SetEmployeeDepartment(id, ""); err != nil {
			return err
		}
	}
	return tx.DeleteDepartment(d.ID)
}

// DeleteDepartments deletes every department with DeleteDepartment. The whole request is
// rejected before any deletion if one of them still has employees; ids that no longer exist
// are skipped.
func (uc *DepartmentUseCase) DeleteDepartments(ctx context.Context, ids []model.DepartmentID) error {
	unique := make([]model.DepartmentID, 0, len(ids))
	seen := make(map[model.DepartmentID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	for _, id := range unique {
		linked, err := uc.repo.Employee().ListByDepartment(ctx, id)
		if err != nil {
			return goerr.Wrap(err, "failed to count department members", goerr.V(DepartmentIDKey, id))
		}
		if len(linked) > 0 {
			return goerr.Wrap(ErrDepartmentHasEmployees, "move employees out before deleting",
				goerr.V(DepartmentIDKey, id),
				goerr.V(MemberCountKey, len(linked)))
		}
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(bulkConcurrency)
	for _, id := range unique {
		eg.Go(func() error {
			if err := uc.DeleteDepartment(ctx, id); err != nil && !errors.Is(err, ErrDepartmentNotFound) {
				return err
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return goerr.Wrap(err, "failed to delete departments", goerr.V("count", len(unique)))
	}
	return nil
}

// ListDepartmentSummaries returns departments with their derived member count and manager
// name, filtered by a case-insensitive substring of the name or of the member count.
func (uc *DepartmentUseCase) ListDepartmentSummaries(ctx context.Context, query model.ListQuery) (*model.Page[*model.DepartmentSummary], error) {
	query = query.Normalized(uc.console.PageSize)

	departments, err := uc.repo.Department().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list departments")
	}
	employees, err := uc.repo.Employee().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list employees")
	}

	counts := make(map[model.DepartmentID]int, len(departments))
	names := make(map[model.EmployeeID]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.Name
		if e.DepartmentID != "" {
			counts[e.DepartmentID]++
		}
	}

	var rows []*model.DepartmentSummary
	for _, d := range departments {
		row := &model.DepartmentSummary{
			Department:  d,
			MemberCount: counts[d.ID],
			ManagerName: names[d.ManagerID],
		}
		if query.Query != "" &&
			!strings.Contains(strings.ToLower(d.Name), query.Query) &&
			!strings.Contains(strconv.Itoa(row.MemberCount), query.Query) {
			continue
		}
		rows = append(rows, row)
	}

	return model.Paginate(rows, query), nil
}
