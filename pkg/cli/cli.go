package cli

import (
	"context"

	"github.com/secmon-lab/orgdesk/pkg/cli/config"
	"github.com/secmon-lab/orgdesk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var closers []func()

	flags := append(loggerCfg.Flags(), sentryCfg.Flags()...)

	app := &cli.Command{
		Name:    "orgdesk",
		Usage:   "Employee and department administration console",
		Version: version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closers = append(closers, f)

			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return ctx, err
			}
			closers = append(closers, flush)

			logging.Default().Info("Starting orgdesk", "logger", loggerCfg, "sentry", sentryCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdMigrate(),
			cmdAdmin(),
			cmdCheck(),
			cmdExport(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}
