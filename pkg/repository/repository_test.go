package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/orgdesk/pkg/domain/interfaces"
	"github.com/secmon-lab/orgdesk/pkg/domain/model"
	"github.com/secmon-lab/orgdesk/pkg/domain/types"
	"github.com/secmon-lab/orgdesk/pkg/repository/firestore"
	"github.com/secmon-lab/orgdesk/pkg/repository/memory"
	"github.com/shopspring/decimal"
)

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	if err != nil {
		t.Fatalf("failed to create firestore repository: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("failed to close firestore repository: %v", err)
		}
	})
	return repo
}

func newMemoryRepository(t *testing.T) interfaces.Repository {
	return memory.New()
}

func newEmployee(name, email string) *model.Employee {
	return &model.Employee{
		ID:            model.NewEmployeeID(),
		Name:          name,
		Email:         email,
		Status:        types.EmployeeStatusActive,
		Avatar:        "avatar1",
		Role:          "Engineer",
		AdmissionDate: "2023-05-10",
		Level:         types.HierarchyLevelMid,
		BaseSalary:    decimal.RequireFromString("4200.75"),
	}
}

func newDepartment(name string, members ...model.EmployeeID) *model.Department {
	d := &model.Department{
		ID:          model.NewDepartmentID(),
		Name:        name,
		EmployeeIDs: members,
	}
	d.Normalize()
	return d
}

func seedEmployee(t *testing.T, repo interfaces.Repository, e *model.Employee) *model.Employee {
	t.Helper()

	var created *model.Employee
	err := repo.RunTransaction(context.Background(), func(ctx context.Context, tx interfaces.Transaction) error {
		var err error
		created, err = tx.CreateEmployee(e)
		return err
	})
	gt.NoError(t, err).Required()
	return created
}

func seedDepartment(t *testing.T, repo interfaces.Repository, d *model.Department) *model.Department {
	t.Helper()

	var created *model.Department
	err := repo.RunTransaction(context.Background(), func(ctx context.Context, tx interfaces.Transaction) error {
		var err error
		created, err = tx.CreateDepartment(d)
		return err
	})
	gt.NoError(t, err).Required()
	return created
}

func assertTimeClose(t *testing.T, got, want time.Time) {
	t.Helper()
	diff := got.Sub(want)
	if diff > time.Second || diff < -time.Second {
		t.Errorf("time mismatch: got %v, want %v, diff %v", got, want, diff)
	}
}
