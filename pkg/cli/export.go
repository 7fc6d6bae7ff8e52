package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/cli/config"
	"github.com/secmon-lab/orgdesk/pkg/usecase"
	"github.com/secmon-lab/orgdesk/pkg/utils/logging"
	"github.com/secmon-lab/orgdesk/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

const gcsScheme = "gs://"

func cmdExport() *cli.Command {
	var repoCfg config.Repository
	var output string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Destination of the roster JSON: a file path, gs://bucket/object, or - for stdout",
			Value:       "-",
			Sources:     cli.EnvVars("ORGDESK_EXPORT_OUTPUT"),
			Destination: &output,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "export",
		Usage: "Export departments and their members as JSON",
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

			uc := usecase.New(repo)
			if err := writeRoster(ctx, uc.Export, output, outputWriter(c)); err != nil {
				return err
			}

			logging.Default().Info("Roster exported", "output", output)
			return nil
		},
	}
}

func writeRoster(ctx context.Context, export *usecase.ExportUseCase, output string, stdout io.Writer) error {
	switch {
	case output == "" || output == "-":
		return export.Roster(ctx, stdout)

	case strings.HasPrefix(output, gcsScheme):
		bucket, object, err := parseGCSPath(output)
		if err != nil {
			return err
		}

		client, err := storage.NewClient(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to create storage client")
		}
		defer safe.Close(ctx, client)

		w := client.Bucket(bucket).Object(object).NewWriter(ctx)
		w.ContentType = "application/json"
		if err := export.Roster(ctx, w); err != nil {
			_ = w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return goerr.Wrap(err, "failed to upload roster", goerr.V("bucket", bucket), goerr.V("object", object))
		}
		return nil

	default:
		// #nosec G304 - path is given by the operator
		f, err := os.Create(output)
		if err != nil {
			return goerr.Wrap(err, "failed to create output file", goerr.V("path", output))
		}
		if err := export.Roster(ctx, f); err != nil {
			safe.Close(ctx, f)
			return err
		}
		if err := f.Close(); err != nil {
			return goerr.Wrap(err, "failed to close output file", goerr.V("path", output))
		}
		return nil
	}
}

func parseGCSPath(path string) (bucket, object string, err error) {
	bucket, object, ok := strings.Cut(strings.TrimPrefix(path, gcsScheme), "/")
	if !ok || bucket == "" || object == "" {
		return "", "", goerr.New("invalid GCS path, expected gs://bucket/object", goerr.V("path", path))
	}
	return bucket, object, nil
}
