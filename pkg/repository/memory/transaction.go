package memory

import (
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/interfaces"
	"github.com/secmon-lab/orgdesk/pkg/domain/model"
)

type operation func(s *state) error

type transaction struct {
	state *state
	ops   []operation
}

var _ interfaces.Transaction = &transaction{}

func (t *transaction) checkRead() error {
	if len(t.ops) > 0 {
		return ErrReadAfterWrite
	}
	return nil
}

func (t *transaction) GetEmployee(id model.EmployeeID) (*model.Employee, error) {
	if err := t.checkRead(); err != nil {
		return nil, err
	}
	return t.state.getEmployee(id)
}

func (t *transaction) GetEmployees(ids ...model.EmployeeID) (map[model.EmployeeID]*model.Employee, error) {
	if err := t.checkRead(); err != nil {
		return nil, err
	}

	result := make(map[model.EmployeeID]*model.Employee, len(ids))
	for _, id := range ids {
		if r, ok := t.state.employees[id]; ok {
			result[id] = copyEmployee(r.employee)
		}
	}
	return result, nil
}

func (t *transaction) FindEmployeeByEmail(email string) (*model.Employee, error) {
	if err := t.checkRead(); err != nil {
		return nil, err
	}
	return t.state.findEmployeeByEmail(email), nil
}

func (t *transaction) ListEmployees() ([]*model.Employee, error) {
	if err := t.checkRead(); err != nil {
		return nil, err
	}
	return t.state.filterEmployees(func(e *model.Employee) bool { return true }), nil
}

func (t *transaction) ListEmployeesByDepartment(id model.DepartmentID) ([]*model.Employee, error) {
	if err := t.checkRead(); err != nil {
		return nil, err
	}
	return t.state.filterEmployees(func(e *model.Employee) bool {
		return e.DepartmentID == id
	}), nil
}

func (t *transaction) GetDepartment(id model.DepartmentID) (*model.Department, error) {
	if err := t.checkRead(); err != nil {
		return nil, err
	}
	return t.state.getDepartment(id)
}

func (t *transaction) ListDepartments() ([]*model.Department, error) {
	if err := t.checkRead(); err != nil {
		return nil, err
	}
	return t.state.listDepartments(), nil
}

func (t *transaction) CreateEmployee(e *model.Employee) (*model.Employee, error) {
	now := time.Now().UTC()
	created := copyEmployee(e)
	created.CreatedAt = now
	created.UpdatedAt = now

	stored := copyEmployee(created)
	t.ops = append(t.ops, func(s *state) error {
		if _, ok := s.employees[stored.ID]; ok {
			return goerr.Wrap(ErrAlreadyExists, "employee already exists", goerr.V("id", stored.ID))
		}
		s.employees[stored.ID] = &employeeRecord{employee: stored, seq: s.nextSeq()}
		return nil
	})

	return created, nil
}

func (t *transaction) UpdateEmployee(e *model.Employee) (*model.Employee, error) {
	updated := copyEmployee(e)
	updated.UpdatedAt = time.Now().UTC()

	stored := copyEmployee(updated)
	t.ops = append(t.ops, func(s *state) error {
		current, ok := s.employees[stored.ID]
		if !ok {
			return goerr.Wrap(ErrNotFound, "employee not found", goerr.V("id", stored.ID))
		}
		stored.CreatedAt = current.employee.CreatedAt
		s.employees[stored.ID] = &employeeRecord{employee: stored, seq: current.seq}
		return nil
	})

	return updated, nil
}

func (t *transaction) SetEmployeeDepartment(id model.EmployeeID, departmentID model.DepartmentID) error {
	now := time.Now().UTC()
	t.ops = append(t.ops, func(s *state) error {
		current, ok := s.employees[id]
		if !ok {
			return goerr.Wrap(ErrNotFound, "employee not found", goerr.V("id", id))
		}
		next := copyEmployee(current.employee)
		next.DepartmentID = departmentID
		next.UpdatedAt = now
		s.employees[id] = &employeeRecord{employee: next, seq: current.seq}
		return nil
	})
	return nil
}

// DeleteEmployee succeeds for a missing document, as Firestore deletes do
func (t *transaction) DeleteEmployee(id model.EmployeeID) error {
	t.ops = append(t.ops, func(s *state) error {
		delete(s.employees, id)
		return nil
	})
	return nil
}

func (t *transaction) CreateDepartment(d *model.Department) (*model.Department, error) {
	now := time.Now().UTC()
	created := d.Copy()
	created.CreatedAt = now
	created.UpdatedAt = now

	stored := created.Copy()
	t.ops = append(t.ops, func(s *state) error {
		if _, ok := s.departments[stored.ID]; ok {
			return goerr.Wrap(ErrAlreadyExists, "department already exists", goerr.V("id", stored.ID))
		}
		s.departments[stored.ID] = &departmentRecord{department: stored, seq: s.nextSeq()}
		return nil
	})

	return created, nil
}

func (t *transaction) UpdateDepartment(d *model.Department) (*model.Department, error) {
	updated := d.Copy()
	updated.UpdatedAt = time.Now().UTC()

	stored := updated.Copy()
	t.ops = append(t.ops, func(s *state) error {
		current, ok := s.departments[stored.ID]
		if !ok {
			return goerr.Wrap(ErrNotFound, "department not found", goerr.V("id", stored.ID))
		}
		stored.CreatedAt = current.department.CreatedAt
		s.departments[stored.ID] = &departmentRecord{department: stored, seq: current.seq}
		return nil
	})

	return updated, nil
}

func (t *transaction) AddDepartmentMembers(id model.DepartmentID, ids ...model.EmployeeID) error {
	if len(ids) == 0 {
		return nil
	}
	members := slices.Clone(ids)
	now := time.Now().UTC()

	t.ops = append(t.ops, func(s *state) error {
		current, ok := s.departments[id]
		if !ok {
			return goerr.Wrap(ErrNotFound, "department not found", goerr.V("id", id))
		}
		next := current.department.Copy()
		for _, member := range members {
			if !next.HasMember(member) {
				next.EmployeeIDs = append(next.EmployeeIDs, member)
				next.EmployeesCount++
			}
		}
		next.UpdatedAt = now
		s.departments[id] = &departmentRecord{department: next, seq: current.seq}
		return nil
	})
	return nil
}

func (t *transaction) RemoveDepartmentMembers(id model.DepartmentID, ids ...model.EmployeeID) error {
	if len(ids) == 0 {
		return nil
	}
	members := slices.Clone(ids)
	now := time.Now().UTC()

	t.ops = append(t.ops, func(s *state) error {
		current, ok := s.departments[id]
		if !ok {
			return goerr.Wrap(ErrNotFound, "department not found", goerr.V("id", id))
		}
		next := current.department.Copy()
		before := len(next.EmployeeIDs)
		next.EmployeeIDs = model.SubtractEmployeeIDs(next.EmployeeIDs, members)
		if next.EmployeeIDs == nil {
			next.EmployeeIDs = []model.EmployeeID{}
		}
		next.EmployeesCount = max(next.EmployeesCount-(before-len(next.EmployeeIDs)), 0)
		next.UpdatedAt = now
		s.departments[id] = &departmentRecord{department: next, seq: current.seq}
		return nil
	})
	return nil
}

func (t *transaction) DeleteDepartment(id model.DepartmentID) error {
	t.ops = append(t.ops, func(s *state) error {
		delete(s.departments, id)
		return nil
	})
	return nil
}
