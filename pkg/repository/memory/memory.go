package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/interfaces"
	"github.com/secmon-lab/orgdesk/pkg/domain/model"
)

var (
	// ErrNotFound aliases the domain sentinel so callers can match either
	ErrNotFound = interfaces.ErrNotFound

	// ErrReadAfterWrite is returned when a transaction reads after its first buffered write
	ErrReadAfterWrite = goerr.New("read after write in transaction")

	// ErrAlreadyExists is returned at commit when a create targets an existing document
	ErrAlreadyExists = goerr.New("document already exists")
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory keeps employees and departments behind one mutex. Transactions hold the write lock
// for their whole duration, so they are serialized.
type Memory struct {
	mu    sync.RWMutex
	state *state

	employee   *employeeRepository
	department *departmentRepository
	tokens     *tokenStore
	admins     *adminStore

	commitHook func() error
}

var _ interfaces.Repository = &Memory{}

type Option func(*Memory)

// WithCommitHook installs fn to run right before buffered writes are applied. A non-nil
// error aborts the commit and nothing is written.
func WithCommitHook(fn func() error) Option {
	return func(m *Memory) {
		m.commitHook = fn
	}
}

func New(opts ...Option) *Memory {
	m := &Memory{
		state:  newState(),
		tokens: newTokenStore(),
		admins: newAdminStore(),
	}
	m.employee = &employeeRepository{m: m}
	m.department = &departmentRepository{m: m}

	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Employee() interfaces.EmployeeRepository {
	return m.employee
}

func (m *Memory) Department() interfaces.DepartmentRepository {
	return m.department
}

// RunTransaction runs fn against a snapshot of the current state and applies its buffered
// writes atomically when fn returns nil. fn must not call other methods of m.
func (m *Memory) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.Transaction) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &transaction{state: m.state}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	if m.commitHook != nil {
		if err := m.commitHook(); err != nil {
			return goerr.Wrap(err, "failed to commit transaction")
		}
	}

	next := m.state.clone()
	for _, op := range tx.ops {
		if err := op(next); err != nil {
			return goerr.Wrap(err, "failed to commit transaction")
		}
	}
	m.state = next

	return nil
}

func (m *Memory) Close() error {
	return nil
}

type employeeRecord struct {
	employee *model.Employee
	seq      int64
}

type departmentRecord struct {
	department *model.Department
	seq        int64
}

type state struct {
	employees   map[model.EmployeeID]*employeeRecord
	departments map[model.DepartmentID]*departmentRecord
	seq         int64
}

func newState() *state {
	return &state{
		employees:   make(map[model.EmployeeID]*employeeRecord),
		departments: make(map[model.DepartmentID]*departmentRecord),
	}
}

// clone copies the maps. Records are replaced, never mutated, so they can be shared.
func (s *state) clone() *state {
	next := &state{
		employees:   make(map[model.EmployeeID]*employeeRecord, len(s.employees)),
		departments: make(map[model.DepartmentID]*departmentRecord, len(s.departments)),
		seq:         s.seq,
	}
	for id, r := range s.employees {
		next.employees[id] = r
	}
	for id, r := range s.departments {
		next.departments[id] = r
	}
	return next
}

func (s *state) nextSeq() int64 {
	s.seq++
	return s.seq
}

func copyEmployee(e *model.Employee) *model.Employee {
	copied := *e
	return &copied
}
