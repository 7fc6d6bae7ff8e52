package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/cli/config"
	"github.com/secmon-lab/orgdesk/pkg/usecase"
	"github.com/secmon-lab/orgdesk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdAdmin() *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Manage console administrators",
		Commands: []*cli.Command{
			cmdAdminAdd(),
		},
	}
}

func cmdAdminAdd() *cli.Command {
	var repoCfg config.Repository
	var email, name, password string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "email",
			Usage:       "Sign-in email of the administrator",
			Required:    true,
			Destination: &email,
		},
		&cli.StringFlag{
			Name:        "name",
			Usage:       "Display name (defaults to the email)",
			Destination: &name,
		},
		&cli.StringFlag{
			Name:        "password",
			Usage:       "Sign-in password",
			Required:    true,
			Sources:     cli.EnvVars("ORGDESK_ADMIN_PASSWORD"),
			Destination: &password,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "add",
		Usage: "Create or replace an administrator account",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			admin, err := usecase.NewAuthUseCase(repo).CreateAdmin(ctx, email, name, password)
			if err != nil {
				return goerr.Wrap(err, "failed to create administrator", goerr.V("email", email))
			}

			logging.Default().Info("Administrator saved", "email", admin.Email, "name", admin.Name)
			return nil
		},
	}
}
