package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/orgdesk/pkg/domain/interfaces"
	"github.com/secmon-lab/orgdesk/pkg/repository/memory"
)

func TestMemoryCommitHook(t *testing.T) {
	errCommit := goerr.New("commit rejected")
	fail := false
	repo := memory.New(memory.WithCommitHook(func() error {
		if fail {
			return errCommit
		}
		return nil
	}))
	ctx := context.Background()

	d := seedDepartment(t, repo, newDepartment("Ops"))

	fail = true
	e := newEmployee("Ana", "ana@example.com")
	err := repo.RunTransaction(ctx, func(ctx context.Context, tx interfaces.Transaction) error {
		if _, err := tx.CreateEmployee(e); err != nil {
			return err
		}
		return tx.AddDepartmentMembers(d.ID, e.ID)
	})
	gt.Error(t, err).Is(errCommit)

	_, err = repo.Employee().Get(ctx, e.ID)
	gt.Error(t, err).Is(interfaces.ErrNotFound)

	got, err := repo.Department().Get(ctx, d.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, got.EmployeeIDs).Length(0)
}

func TestMemoryReadAfterWrite(t *testing.T) {
	repo := memory.New()
	err := repo.RunTransaction(context.Background(), func(ctx context.Context, tx interfaces.Transaction) error {
		if err := tx.DeleteEmployee("x"); err != nil {
			return err
		}
		_, err := tx.ListDepartments()
		return err
	})
	gt.Error(t, err).Is(memory.ErrReadAfterWrite)
}
