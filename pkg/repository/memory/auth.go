package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/model/auth"
)

type tokenStore struct {
	mu     sync.RWMutex
	tokens map[auth.TokenID]*auth.Token
}

func newTokenStore() *tokenStore {
	return &tokenStore{
		tokens: make(map[auth.TokenID]*auth.Token),
	}
}

type adminStore struct {
	mu     sync.RWMutex
	admins map[string]*auth.Admin
}

func newAdminStore() *adminStore {
	return &adminStore{
		admins: make(map[string]*auth.Admin),
	}
}

func (r *Repository) PutToken(ctx context.Context, token *auth.Token) error {
	if err := token.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token")
	}

	r.tokens.mu.Lock()
	defer r.tokens.mu.Unlock()

	copied := *token
	r.tokens.tokens[token.ID] = &copied
	return nil
}

func (r *Repository) GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error) {
	r.tokens.mu.RLock()
	defer r.tokens.mu.RUnlock()

	token, ok := r.tokens.tokens[tokenID]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "token not found", goerr.V("token_id", tokenID))
	}

	copied := *token
	return &copied, nil
}

// DeleteToken removes the token. Deleting a missing token is not an error.
func (r *Repository) DeleteToken(ctx context.Context, tokenID auth.TokenID) error {
	r.tokens.mu.Lock()
	defer r.tokens.mu.Unlock()

	delete(r.tokens.tokens, tokenID)
	return nil
}

func (r *Repository) PutAdmin(ctx context.Context, admin *auth.Admin) error {
	if admin.Email == "" {
		return goerr.New("admin email is empty")
	}

	r.admins.mu.Lock()
	defer r.admins.mu.Unlock()

	copied := *admin
	r.admins.admins[admin.Email] = &copied
	return nil
}

func (r *Repository) GetAdmin(ctx context.Context, email string) (*auth.Admin, error) {
	r.admins.mu.RLock()
	defer r.admins.mu.RUnlock()

	admin, ok := r.admins.admins[email]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "admin not found", goerr.V("email", email))
	}

	copied := *admin
	return &copied, nil
}
