package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/cli/config"
	httpctrl "github.com/secmon-lab/orgdesk/pkg/controller/http"
	"github.com/secmon-lab/orgdesk/pkg/domain/model/auth"
	"github.com/secmon-lab/orgdesk/pkg/service/worker"
	"github.com/secmon-lab/orgdesk/pkg/usecase"
	"github.com/secmon-lab/orgdesk/pkg/utils/async"
	"github.com/secmon-lab/orgdesk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var checkInterval time.Duration
	var consoleCfg config.Console
	var repoCfg config.Repository
	var authCfg config.Auth

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("ORGDESK_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "integrity-check-interval",
			Usage:       "Run the read-only integrity check periodically (0 disables)",
			Sources:     cli.EnvVars("ORGDESK_INTEGRITY_CHECK_INTERVAL"),
			Destination: &checkInterval,
		},
	}

	flags = append(flags, consoleCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			console, err := consoleCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load application config")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			authUC, err := authCfg.Configure(repo)
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}
			if authCfg.IsNoAuthMode() {
				logging.Default().Warn("Running in no-auth mode (development only)", "auth", authCfg)
			}

			unsubscribe := authUC.Subscribe(logSessionEvent)
			defer unsubscribe()

			uc := usecase.New(repo,
				usecase.WithConsoleConfig(console),
				usecase.WithAuth(authUC),
			)

			var checkWorker *worker.IntegrityCheckWorker
			if checkInterval > 0 {
				checkWorker = worker.NewIntegrityCheckWorker(uc.Integrity, checkInterval)
				if err := checkWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start integrity check worker")
				}
				defer checkWorker.Stop()
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpctrl.WithAuth(authUC)),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr, "page_size", console.PageSize)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				async.Wait()

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}

func logSessionEvent(ctx context.Context, ev auth.SessionEvent) {
	if ev.Token == nil {
		return
	}
	logging.From(ctx).Info("admin session changed",
		"event", ev.Type,
		"email", ev.Token.Email,
		"token_id", ev.Token.ID,
	)
}
