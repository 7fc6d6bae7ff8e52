package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/interfaces"
	"github.com/secmon-lab/orgdesk/pkg/domain/model"
	"github.com/secmon-lab/orgdesk/pkg/domain/model/config"
	"github.com/secmon-lab/orgdesk/pkg/domain/types"
	"github.com/secmon-lab/orgdesk/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// bulkConcurrency bounds the transactions a bulk delete runs at once
const bulkConcurrency = 8

type EmployeeUseCase struct {
	repo    interfaces.Repository
	console *config.Console
}

func NewEmployeeUseCase(repo interfaces.Repository, console *config.Console) *EmployeeUseCase {
	return &EmployeeUseCase{
		repo:    repo,
		console: console,
	}
}

// prepare returns a normalized copy of input with configured defaults applied, validated
// against the model rules and the avatar set.
func (uc *EmployeeUseCase) prepare(input *model.Employee) (*model.Employee, error) {
	e := *input
	if e.Status == "" {
		e.Status = uc.console.DefaultStatus
	}
	if e.Avatar == "" {
		e.Avatar = uc.console.Avatars.Default()
	}
	e.Normalize()

	if err := e.Validate(); err != nil {
		return nil, err
	}
	if !uc.console.Avatars.Contains(e.Avatar) {
		return nil, goerr.Wrap(ErrInvalidAvatar, "unknown avatar", goerr.V("avatar", e.Avatar))
	}
	return &e, nil
}

// CreateEmployee inserts an employee without touching any department
func (uc *EmployeeUseCase) CreateEmployee(ctx context.Context, input *model.Employee) (*model.Employee, error) {
	e, err := uc.prepare(input)
	if err != nil {
		return nil, err
	}
	e.ID = model.NewEmployeeID()

	var created *model.Employee
	err = uc.repo.RunTransaction(ctx, func(ctx context.Context, tx interfaces.Transaction) error {
		if err := checkEmailAvailable(tx, e.Email, e.ID); err != nil {
			return err
		}
		if err := checkManager(tx, e.ManagerID, e.ID); err != nil {
			return err
		}

		var err error
		created, err = tx.CreateEmployee(e)
		return err
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create employee")
	}

	logging.From(ctx).Info("employee created", "employee_id", created.ID)
	return created, nil
}

// GetEmployee returns nil, nil when the employee does not exist
func (uc *EmployeeUseCase) GetEmployee(ctx context.Context, id model.EmployeeID) (*model.Employee, error) {
	e, err := uc.repo.Employee().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get employee", goerr.V(EmployeeIDKey, id))
	}
	return e, nil
}

// ListEmployees returns every employee, newest first
func (uc *EmployeeUseCase) ListEmployees(ctx context.Context) ([]*model.Employee, error) {
	employees, err := uc.repo.Employee().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list employees")
	}
	return employees, nil
}

// ListManagerCandidates returns the employees that may be picked as a manager
func (uc *EmployeeUseCase) ListManagerCandidates(ctx context.Context) ([]*model.Employee, error) {
	managers, err := uc.repo.Employee().ListByLevel(ctx, types.HierarchyLevelManager)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list manager candidates")
	}
	return managers, nil
}

// UpdateEmployee merges patch into the stored employee. Department membership lists are not
// touched, even when the patch changes DepartmentID.
func (uc *EmployeeUseCase) UpdateEmployee(ctx context.Context, id model.EmployeeID, patch *model.EmployeePatch) (*model.Employee, error) {
	var updated *model.Employee
	err := uc.repo.RunTransaction(ctx, func(ctx context.Context, tx interfaces.Transaction) error {
		existing, err := tx.GetEmployee(id)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return goerr.Wrap(ErrEmployeeNotFound, "cannot update missing employee", goerr.V(EmployeeIDKey, id))
			}
			return goerr.Wrap(err, "failed to get employee", goerr.V(EmployeeIDKey, id))
		}

		merged, err := uc.prepare(patch.Apply(existing))
		if err != nil {
			return err
		}
		merged.ID = existing.ID
		merged.CreatedAt = existing.CreatedAt

		if merged.Email != existing.Email {
			if err := checkEmailAvailable(tx, merged.Email, merged.ID); err != nil {
				return err
			}
		}
		if merged.ManagerID != existing.ManagerID {
			if err := checkManager(tx, merged.ManagerID, merged.ID); err != nil {
				return err
			}
		}

		updated, err = tx.UpdateEmployee(merged)
		return err
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update employee", goerr.V(EmployeeIDKey, id))
	}
	return updated, nil
}

// EmailExists reports whether an employee other than ignore uses email. Comparison is on the
// trimmed lower-cased form; an empty email never exists.
func (uc *EmployeeUseCase) EmailExists(ctx context.Context, email string, ignore model.EmployeeID) (bool, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return false, nil
	}

	found, err := uc.repo.Employee().FindByEmail(ctx, email)
	if err != nil {
		return false, goerr.Wrap(err, "failed to look up email", goerr.V(EmailKey, email))
	}
	if found == nil {
		return false, nil
	}
	return found.ID != ignore, nil
}

// SaveEmployeeAndSyncDepartments creates (empty id) or updates the employee and moves its id
// between department member lists in one transaction. Returns the employee id.
func (uc *EmployeeUseCase) SaveEmployeeAndSyncDepartments(ctx context.Context, id model.EmployeeID, input *model.Employee) (model.EmployeeID, error) {
	draft := *input
	draft.ID = id
	e, err := uc.prepare(&draft)
	if err != nil {
		return "", err
	}

	isNew := id == ""
	if isNew {
		e.ID = model.NewEmployeeID()
	}

	err = uc.repo.RunTransaction(ctx, func(ctx context.Context, tx interfaces.Transaction) error {
		var previous model.DepartmentID
		if !isNew {
			existing, err := tx.GetEmployee(e.ID)
			if err != nil {
				if errors.Is(err, interfaces.ErrNotFound) {
					return goerr.Wrap(ErrEmployeeNotFound, "cannot save missing employee", goerr.V(EmployeeIDKey, e.ID))
				}
				return goerr.Wrap(err, "failed to get employee", goerr.V(EmployeeIDKey, e.ID))
			}
			previous = existing.DepartmentID
			e.CreatedAt = existing.CreatedAt
		}

		if err := checkEmailAvailable(tx, e.Email, e.ID); err != nil {
			return err
		}
		if err := checkManager(tx, e.ManagerID, e.ID); err != nil {
			return err
		}

		var prevDept *model.Department
		if previous != "" && previous != e.DepartmentID {
			d, err := getDepartmentIfExists(tx, previous)
			if err != nil {
				return err
			}
			prevDept = d
		}

		var nextDept *model.Department
		if e.DepartmentID != "" {
			d, err := getDepartmentIfExists(tx, e.DepartmentID)
			if err != nil {
				return err
			}
			if d == nil {
				return goerr.Wrap(ErrDepartmentNotFound, "target department does not exist",
					goerr.V(DepartmentIDKey, e.DepartmentID))
			}
			nextDept = d
		}

		if isNew {
			if _, err := tx.CreateEmployee(e); err != nil {
				return err
			}
		} else {
			if _, err := tx.UpdateEmployee(e); err != nil {
				return err
			}
		}

		if prevDept != nil {
			if listed := model.IntersectEmployeeIDs(prevDept.EmployeeIDs, []model.EmployeeID{e.ID}); len(listed) > 0 {
				if err := tx.RemoveDepartmentMembers(prevDept.ID, listed...); err != nil {
					return err
				}
			}
		}
		if nextDept != nil && !nextDept.HasMember(e.ID) {
			if err := tx.AddDepartmentMembers(nextDept.ID, e.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to save employee", goerr.V(EmployeeIDKey, e.ID))
	}

	logging.From(ctx).Info("employee saved",
		"employee_id", e.ID,
		"department_id", e.DepartmentID,
		"created", isNew)
	return e.ID, nil
}

// DeleteEmployee removes the employee and its id from its department's member list. A
// missing employee is a no-op.
func (uc *EmployeeUseCase) DeleteEmployee(ctx context.Context, id model.EmployeeID) error {
	deleted := false
	err := uc.repo.RunTransaction(ctx, func(ctx context.Context, tx interfaces.Transaction) error {
		deleted = false
		existing, err := tx.GetEmployee(id)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil
			}
			return goerr.Wrap(err, "failed to get employee", goerr.V(EmployeeIDKey, id))
		}

		var dept *model.Department
		if existing.DepartmentID != "" {
			dept, err = getDepartmentIfExists(tx, existing.DepartmentID)
			if err != nil {
				return err
			}
		}

		if dept != nil {
			if listed := model.IntersectEmployeeIDs(dept.EmployeeIDs, []model.EmployeeID{id}); len(listed) > 0 {
				if err := tx.RemoveDepartmentMembers(dept.ID, listed...); err != nil {
					return err
				}
			}
		}
		if err := tx.DeleteEmployee(id); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to delete employee", goerr.V(EmployeeIDKey, id))
	}

	if deleted {
		logging.From(ctx).Info("employee deleted", "employee_id", id)
	}
	return nil
}

// DeleteEmployees deletes each id with DeleteEmployee concurrently and returns the first
// failure. Deletions that already committed stay committed.
func (uc *EmployeeUseCase) DeleteEmployees(ctx context.Context, ids []model.EmployeeID) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(bulkConcurrency)

	for _, id := range model.UniqueEmployeeIDs(ids) {
		eg.Go(func() error {
			return uc.DeleteEmployee(ctx, id)
		})
	}

	if err := eg.Wait(); err != nil {
		return goerr.Wrap(err, "failed to delete employees", goerr.V("count", len(ids)))
	}
	return nil
}

// SearchEmployees filters employees by a case-insensitive substring of name, email or
// department name and returns the requested page, newest first.
func (uc *EmployeeUseCase) SearchEmployees(ctx context.Context, query model.ListQuery) (*model.Page[*model.EmployeeSummary], error) {
	query = query.Normalized(uc.console.PageSize)

	employees, err := uc.repo.Employee().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list employees")
	}
	departments, err := uc.repo.Department().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list departments")
	}

	deptNames := make(map[model.DepartmentID]string, len(departments))
	for _, d := range departments {
		deptNames[d.ID] = d.Name
	}
	names := make(map[model.EmployeeID]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.Name
	}

	var rows []*model.EmployeeSummary
	for _, e := range employees {
		row := &model.EmployeeSummary{
			Employee:       e,
			DepartmentName: deptNames[e.DepartmentID],
			ManagerName:    names[e.ManagerID],
		}
		if query.Query != "" && !matchEmployee(row, query.Query) {
			continue
		}
		rows = append(rows, row)
	}

	return model.Paginate(rows, query), nil
}

func matchEmployee(row *model.EmployeeSummary, q string) bool {
	return strings.Contains(strings.ToLower(row.Employee.Name), q) ||
		strings.Contains(strings.ToLower(row.Employee.Email), q) ||
		strings.Contains(strings.ToLower(row.DepartmentName), q)
}
