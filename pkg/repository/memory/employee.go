package memory

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/model"
	"github.com/secmon-lab/orgdesk/pkg/domain/types"
)

type employeeRepository struct {
	m *Memory
}

func (r *employeeRepository) Get(ctx context.Context, id model.EmployeeID) (*model.Employee, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	return r.m.state.getEmployee(id)
}

func (r *employeeRepository) List(ctx context.Context) ([]*model.Employee, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	return r.m.state.filterEmployees(func(e *model.Employee) bool { return true }), nil
}

func (r *employeeRepository) ListByDepartment(ctx context.Context, departmentID model.DepartmentID) ([]*model.Employee, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	return r.m.state.filterEmployees(func(e *model.Employee) bool {
		return e.DepartmentID == departmentID
	}), nil
}

func (r *employeeRepository) ListByLevel(ctx context.Context, level types.HierarchyLevel) ([]*model.Employee, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	return r.m.state.filterEmployees(func(e *model.Employee) bool {
		return e.Level == level
	}), nil
}

func (r *employeeRepository) FindByEmail(ctx context.Context, email string) (*model.Employee, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	return r.m.state.findEmployeeByEmail(email), nil
}

func (s *state) getEmployee(id model.EmployeeID) (*model.Employee, error) {
	r, ok := s.employees[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "employee not found", goerr.V("id", id))
	}
	return copyEmployee(r.employee), nil
}

// filterEmployees returns copies of matching employees, newest first
func (s *state) filterEmployees(match func(e *model.Employee) bool) []*model.Employee {
	records := make([]*employeeRecord, 0, len(s.employees))
	for _, r := range s.employees {
		if match(r.employee) {
			records = append(records, r)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.employee.CreatedAt.Equal(b.employee.CreatedAt) {
			return a.employee.CreatedAt.After(b.employee.CreatedAt)
		}
		return a.seq > b.seq
	})

	employees := make([]*model.Employee, len(records))
	for i, r := range records {
		employees[i] = copyEmployee(r.employee)
	}
	return employees
}

func (s *state) findEmployeeByEmail(email string) *model.Employee {
	matched := s.filterEmployees(func(e *model.Employee) bool { return e.Email == email })
	if len(matched) == 0 {
		return nil
	}
	return matched[0]
}
