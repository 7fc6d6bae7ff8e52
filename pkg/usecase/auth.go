package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/interfaces"
	"github.com/secmon-lab/orgdesk/pkg/domain/model"
	"github.com/secmon-lab/orgdesk/pkg/domain/model/auth"
	"github.com/secmon-lab/orgdesk/pkg/utils/async"
	"github.com/secmon-lab/orgdesk/pkg/utils/logging"
	"golang.org/x/sync/singleflight"
)

// AuthUseCaseInterface is the session provider used by the HTTP layer
type AuthUseCaseInterface interface {
	SignIn(ctx context.Context, email, password string) (*auth.Token, error)
	ValidateToken(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error)
	Logout(ctx context.Context, tokenID auth.TokenID) error
	IsNoAuthn() bool
	// Subscribe registers fn for session events. Calling the returned function unsubscribes.
	Subscribe(fn SessionHandler) (unsubscribe func())
}

// SessionHandler receives session events asynchronously
type SessionHandler func(ctx context.Context, event auth.SessionEvent)

type AuthUseCase struct {
	repo     interfaces.Repository
	tokenTTL time.Duration
	cache    *authCache
	flight   singleflight.Group
	events   *sessionBroker
}

// AuthOption is a functional option for AuthUseCase
type AuthOption func(*AuthUseCase)

// WithTokenTTL sets the lifetime of issued session tokens
func WithTokenTTL(ttl time.Duration) AuthOption {
	return func(uc *AuthUseCase) {
		uc.tokenTTL = ttl
	}
}

func NewAuthUseCase(repo interfaces.Repository, options ...AuthOption) *AuthUseCase {
	uc := &AuthUseCase{
		repo:     repo,
		tokenTTL: auth.DefaultTokenTTL,
		cache:    newAuthCache(),
		events:   newSessionBroker(),
	}

	for _, opt := range options {
		opt(uc)
	}

	return uc
}

// IsNoAuthn returns false for regular AuthUseCase
func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

// SignIn checks the email/password pair against the stored admin account and issues a
// session token. Every failure is reported as ErrInvalidCredential.
func (uc *AuthUseCase) SignIn(ctx context.Context, email, password string) (*auth.Token, error) {
	email = model.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, goerr.Wrap(ErrInvalidCredential, "email and password are required")
	}

	admin, err := uc.repo.GetAdmin(ctx, email)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrInvalidCredential, "unknown admin", goerr.V(EmailKey, email))
		}
		return nil, goerr.Wrap(err, "failed to get admin", goerr.V(EmailKey, email))
	}

	if err := admin.VerifyPassword(password); err != nil {
		return nil, goerr.Wrap(ErrInvalidCredential, "password mismatch", goerr.V(EmailKey, email))
	}

	token := auth.NewTokenWithTTL(admin.Email, admin.Email, admin.Name, uc.tokenTTL)
	if err := uc.repo.PutToken(ctx, token); err != nil {
		return nil, goerr.Wrap(err, "failed to store token", goerr.V("token", token))
	}
	uc.cache.set(token)

	logging.From(ctx).Info("admin signed in", "email", admin.Email, "token_id", token.ID)
	uc.events.publish(ctx, auth.SessionEvent{Type: auth.SessionSignedIn, Token: token})
	return token, nil
}

// ValidateToken validates the token and returns user info
func (uc *AuthUseCase) ValidateToken(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error) {
	return uc.validateTokenWithCache(ctx, tokenID, tokenSecret)
}

// Logout deletes the token
func (uc *AuthUseCase) Logout(ctx context.Context, tokenID auth.TokenID) error {
	token, cached := uc.cache.get(tokenID)
	if !cached {
		found, err := uc.repo.GetToken(ctx, tokenID)
		if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(err, "failed to get token", goerr.V("token_id", tokenID))
		}
		token = found
	}

	// Remove from cache first
	uc.cache.remove(tokenID)

	if err := uc.repo.DeleteToken(ctx, tokenID); err != nil {
		return goerr.Wrap(err, "failed to delete token", goerr.V("token_id", tokenID))
	}

	if token != nil {
		uc.events.publish(ctx, auth.SessionEvent{Type: auth.SessionSignedOut, Token: token})
	}
	return nil
}

func (uc *AuthUseCase) Subscribe(fn SessionHandler) func() {
	return uc.events.subscribe(fn)
}

// CreateAdmin registers an administrator account, replacing the password of an existing
// account with the same email.
func (uc *AuthUseCase) CreateAdmin(ctx context.Context, email, name, password string) (*auth.Admin, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return nil, goerr.New("admin email is required")
	}
	if name == "" {
		name = email
	}

	admin, err := auth.NewAdmin(email, name, password)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.PutAdmin(ctx, admin); err != nil {
		return nil, goerr.Wrap(err, "failed to store admin", goerr.V(EmailKey, email))
	}
	return admin, nil
}

// sessionBroker fans session events out to subscribers. Each delivery runs in its own
// goroutine so a slow subscriber never blocks a request.
type sessionBroker struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]SessionHandler
}

func newSessionBroker() *sessionBroker {
	return &sessionBroker{handlers: make(map[int]SessionHandler)}
}

func (b *sessionBroker) subscribe(fn SessionHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers, id)
		})
	}
}

func (b *sessionBroker) publish(ctx context.Context, event auth.SessionEvent) {
	b.mu.RLock()
	handlers := make([]SessionHandler, 0, len(b.handlers))
	for _, fn := range b.handlers {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		async.Dispatch(ctx, func(ctx context.Context) error {
			fn(ctx, event)
			return nil
		})
	}
}
