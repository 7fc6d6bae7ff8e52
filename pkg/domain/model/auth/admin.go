package auth

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted when registering an administrator
const MinPasswordLength = 8

var (
	ErrPasswordTooShort = goerr.New("password is too short")
	ErrPasswordMismatch = goerr.New("password does not match")
)

// Admin is an account allowed to sign in to the console. Email is stored normalized.
type Admin struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash" masq:"secret"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewAdmin hashes password with bcrypt and returns the account
func NewAdmin(email, name, password string) (*Admin, error) {
	if len(password) < MinPasswordLength {
		return nil, goerr.Wrap(ErrPasswordTooShort, "failed to create admin",
			goerr.V("min_length", MinPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to hash password")
	}

	return &Admin{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// VerifyPassword returns ErrPasswordMismatch when password is not the admin's password
func (a *Admin) VerifyPassword(password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return goerr.Wrap(ErrPasswordMismatch, "failed to verify password", goerr.V("email", a.Email))
	}
	return nil
}
