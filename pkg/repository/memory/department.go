package memory

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/model"
)

type departmentRepository struct {
	m *Memory
}

func (r *departmentRepository) Get(ctx context.Context, id model.DepartmentID) (*model.Department, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	return r.m.state.getDepartment(id)
}

func (r *departmentRepository) List(ctx context.Context) ([]*model.Department, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	return r.m.state.listDepartments(), nil
}

func (s *state) getDepartment(id model.DepartmentID) (*model.Department, error) {
	r, ok := s.departments[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "department not found", goerr.V("id", id))
	}
	return r.department.Copy(), nil
}

func (s *state) listDepartments() []*model.Department {
	records := make([]*departmentRecord, 0, len(s.departments))
	for _, r := range s.departments {
		records = append(records, r)
	}

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.department.CreatedAt.Equal(b.department.CreatedAt) {
			return a.department.CreatedAt.After(b.department.CreatedAt)
		}
		return a.seq > b.seq
	})

	departments := make([]*model.Department, len(records))
	for i, r := range records {
		departments[i] = r.department.Copy()
	}
	return departments
}
