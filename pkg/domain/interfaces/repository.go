package interfaces

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/model/auth"
)

// ErrNotFound is returned (wrapped) by backends when a document does not exist
var ErrNotFound = goerr.New("not found")

// Repository defines the interface for data persistence
type Repository interface {
	Employee() EmployeeRepository
	Department() DepartmentRepository

	// RunTransaction runs fn in one atomic transaction. All reads must happen before the first
	// write. Writes are applied only when fn returns nil and the commit succeeds; fn may be
	// invoked more than once when the store retries on contention.
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error

	// Auth methods
	PutToken(ctx context.Context, token *auth.Token) error
	GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error)
	DeleteToken(ctx context.Context, tokenID auth.TokenID) error

	// PutAdmin creates or replaces an administrator account keyed by its email
	PutAdmin(ctx context.Context, admin *auth.Admin) error
	// GetAdmin returns ErrNotFound when no account has the given email
	GetAdmin(ctx context.Context, email string) (*auth.Admin, error)

	Close() error
}
