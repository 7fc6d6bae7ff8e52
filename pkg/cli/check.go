package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/cli/config"
	"github.com/secmon-lab/orgdesk/pkg/usecase"
	"github.com/secmon-lab/orgdesk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// ErrIntegrityIssues is returned by check when broken references remain
var ErrIntegrityIssues = goerr.New("integrity issues remain")

func cmdCheck() *cli.Command {
	var consoleCfg config.Console
	var repoCfg config.Repository
	var fix bool

	var flags []cli.Flag
	flags = append(flags, consoleCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "fix",
		Usage:       "Repair broken references, taking each employee's department as authoritative",
		Destination: &fix,
	})

	return &cli.Command{
		Name:    "check",
		Aliases: []string{"validate", "v"},
		Usage:   "Validate configuration and check employee/department cross references",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			console, err := consoleCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}
			logger.Info("Configuration validation passed",
				"page_size", console.PageSize,
				"avatar_count", len(console.Avatars),
			)

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo, usecase.WithConsoleConfig(console))
			w := outputWriter(c)

			result, err := uc.Integrity.Check(ctx)
			if err != nil {
				return goerr.Wrap(err, "integrity check failed")
			}
			printReport(w, result)

			if fix && result.HasIssues() {
				repaired, err := uc.Integrity.Repair(ctx)
				if err != nil {
					return goerr.Wrap(err, "integrity repair failed")
				}
				color.New(color.FgCyan).Fprintf(w, "repaired %d document(s)\n", repaired.Repaired)

				result, err = uc.Integrity.Check(ctx)
				if err != nil {
					return goerr.Wrap(err, "integrity check failed")
				}
				printReport(w, result)
			}

			if result.HasIssues() {
				return goerr.Wrap(ErrIntegrityIssues, "check found issues", goerr.V("count", len(result.Issues)))
			}
			return nil
		},
	}
}

func outputWriter(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func printReport(w io.Writer, result *usecase.ValidationResult) {
	if !result.HasIssues() {
		color.New(color.FgGreen).Fprintln(w, "no integrity issues found")
		return
	}

	warn := color.New(color.FgYellow, color.Bold)
	for _, issue := range result.Issues {
		warn.Fprintf(w, "[%s]", issue.Kind)
		fmt.Fprintf(w, " %s", issue.Message)
		if issue.EmployeeID != "" {
			fmt.Fprintf(w, " employee=%s", issue.EmployeeID)
		}
		if issue.DepartmentID != "" {
			fmt.Fprintf(w, " department=%s", issue.DepartmentID)
		}
		if issue.Expected != "" || issue.Actual != "" {
			fmt.Fprintf(w, " expected=%q actual=%q", issue.Expected, issue.Actual)
		}
		fmt.Fprintln(w)
	}
	color.New(color.FgRed).Fprintf(w, "%d issue(s) found\n", len(result.Issues))
}
