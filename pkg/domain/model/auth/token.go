package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultTokenTTL is the lifetime of a session token
const DefaultTokenTTL = 7 * 24 * time.Hour

// AnonymousEmail is the email of the synthetic session used when authentication is disabled
const AnonymousEmail = "anonymous@localhost"

type TokenID string

func NewTokenID() TokenID {
	return TokenID(uuid.New().String())
}

func (id TokenID) String() string {
	return string(id)
}

type TokenSecret string

// NewTokenSecret returns 32 random bytes hex encoded
func NewTokenSecret() TokenSecret {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(goerr.Wrap(err, "failed to read random bytes"))
	}
	return TokenSecret(hex.EncodeToString(buf))
}

func (s TokenSecret) String() string {
	return string(s)
}

// Token is a session of a signed in administrator. Sub is the admin email used to sign in.
type Token struct {
	ID        TokenID     `json:"id"`
	Secret    TokenSecret `json:"secret" masq:"secret"`
	Sub       string      `json:"sub"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	ExpiresAt time.Time   `json:"expires_at"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewToken issues a token valid for DefaultTokenTTL
func NewToken(sub, email, name string) *Token {
	return NewTokenWithTTL(sub, email, name, DefaultTokenTTL)
}

func NewTokenWithTTL(sub, email, name string, ttl time.Duration) *Token {
	now := time.Now().UTC()
	return &Token{
		ID:        NewTokenID(),
		Secret:    NewTokenSecret(),
		Sub:       sub,
		Email:     email,
		Name:      name,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

// NewAnonymousUser returns the session attached to requests in no-authentication mode
func NewAnonymousUser() *Token {
	return NewToken(AnonymousEmail, AnonymousEmail, "Anonymous")
}

func (t *Token) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

func (t *Token) Validate() error {
	if t.ID == "" {
		return goerr.New("token ID is empty")
	}
	if t.Secret == "" {
		return goerr.New("token secret is empty", goerr.V("token_id", t.ID))
	}
	if t.Sub == "" {
		return goerr.New("token subject is empty", goerr.V("token_id", t.ID))
	}
	return nil
}

type ctxTokenKey struct{}

func ContextWithToken(ctx context.Context, token *Token) context.Context {
	return context.WithValue(ctx, ctxTokenKey{}, token)
}

// TokenFromContext returns the session token of the request, or an error when the request is
// not authenticated.
func TokenFromContext(ctx context.Context) (*Token, error) {
	token, ok := ctx.Value(ctxTokenKey{}).(*Token)
	if !ok || token == nil {
		return nil, goerr.New("no token in context")
	}
	return token, nil
}
