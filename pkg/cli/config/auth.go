package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/domain/interfaces"
	"github.com/secmon-lab/orgdesk/pkg/domain/model/auth"
	"github.com/secmon-lab/orgdesk/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Auth holds CLI flags for administrator sessions
type Auth struct {
	tokenTTL    time.Duration
	noAuthEmail string
	noAuthName  string
}

func (a *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "token-ttl",
			Usage:       "Lifetime of a sign-in session",
			Value:       auth.DefaultTokenTTL,
			Category:    "Authentication",
			Sources:     cli.EnvVars("ORGDESK_TOKEN_TTL"),
			Destination: &a.tokenTTL,
		},
		&cli.StringFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and act as the given administrator email (development only)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("ORGDESK_NO_AUTH"),
			Destination: &a.noAuthEmail,
		},
		&cli.StringFlag{
			Name:        "no-auth-name",
			Usage:       "Display name used in no-auth mode",
			Category:    "Authentication",
			Sources:     cli.EnvVars("ORGDESK_NO_AUTH_NAME"),
			Destination: &a.noAuthName,
		},
	}
}

func (a Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Duration("token_ttl", a.tokenTTL),
		slog.Bool("no_auth", a.IsNoAuthMode()),
	)
}

// IsNoAuthMode returns true when every request is authenticated as the no-auth admin
func (a *Auth) IsNoAuthMode() bool {
	return a.noAuthEmail != ""
}

// Configure returns the session provider for the configured mode
func (a *Auth) Configure(repo interfaces.Repository) (usecase.AuthUseCaseInterface, error) {
	if a.IsNoAuthMode() {
		return usecase.NewNoAuthnUseCase(a.noAuthEmail, a.noAuthName), nil
	}
	if a.tokenTTL <= 0 {
		return nil, goerr.Wrap(ErrInvalidConfig, "token-ttl must be positive", goerr.V("token_ttl", a.tokenTTL))
	}
	return usecase.NewAuthUseCase(repo, usecase.WithTokenTTL(a.tokenTTL)), nil
}

// NewAuthForTest creates an Auth config for testing purposes
func NewAuthForTest(tokenTTL time.Duration, noAuthEmail, noAuthName string) *Auth {
	return &Auth{
		tokenTTL:    tokenTTL,
		noAuthEmail: noAuthEmail,
		noAuthName:  noAuthName,
	}
}
