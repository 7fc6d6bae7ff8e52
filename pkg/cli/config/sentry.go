package config

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Sentry holds CLI flags for error reporting
type Sentry struct {
	dsn         string
	environment string
}

func (s *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN. Server errors are reported when set",
			Category:    "Sentry",
			Sources:     cli.EnvVars("ORGDESK_SENTRY_DSN"),
			Destination: &s.dsn,
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment name",
			Value:       "production",
			Category:    "Sentry",
			Sources:     cli.EnvVars("ORGDESK_SENTRY_ENV"),
			Destination: &s.environment,
		},
	}
}

func (s Sentry) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("enabled", s.dsn != ""),
		slog.String("environment", s.environment),
	)
}

// Configure initializes the global Sentry client and returns a flush function. It does nothing
// when no DSN is set.
func (s *Sentry) Configure(release string) (func(), error) {
	if s.dsn == "" {
		return func() {}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         s.dsn,
		Environment: s.environment,
		Release:     release,
	}); err != nil {
		return func() {}, goerr.Wrap(err, "failed to initialize sentry", goerr.V("environment", s.environment))
	}

	return func() { sentry.Flush(2 * time.Second) }, nil
}
