package usecase

import (
	"context"

	"github.com/secmon-lab/orgdesk/pkg/domain/model/auth"
)

// NoAuthnUseCase authenticates every request as one configured admin (for development/testing)
type NoAuthnUseCase struct {
	email string
	name  string
}

// NewNoAuthnUseCase creates a new NoAuthnUseCase instance with specified user info. An empty
// email falls back to the anonymous user.
func NewNoAuthnUseCase(email, name string) *NoAuthnUseCase {
	if email == "" {
		email = auth.AnonymousEmail
	}
	if name == "" {
		name = email
	}
	return &NoAuthnUseCase{
		email: email,
		name:  name,
	}
}

// SignIn accepts any credential and returns a token for the configured admin
func (uc *NoAuthnUseCase) SignIn(ctx context.Context, email, password string) (*auth.Token, error) {
	return uc.token(), nil
}

// ValidateToken always returns a token for the specified user
func (uc *NoAuthnUseCase) ValidateToken(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error) {
	return uc.token(), nil
}

// Logout does nothing in no-auth mode
func (uc *NoAuthnUseCase) Logout(ctx context.Context, tokenID auth.TokenID) error {
	return nil
}

// Subscribe never delivers events since no session is ever opened or closed
func (uc *NoAuthnUseCase) Subscribe(fn SessionHandler) func() {
	return func() {}
}

// IsNoAuthn returns true for NoAuthnUseCase
func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}

func (uc *NoAuthnUseCase) token() *auth.Token {
	return auth.NewToken(uc.email, uc.email, uc.name)
}
