package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
	"github.com/secmon-lab/orgdesk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Logger holds CLI flags for the process wide logger
type Logger struct {
	level  string
	format string
	output string
}

func (l *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Aliases:     []string{"l"},
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Category:    "Logging",
			Sources:     cli.EnvVars("ORGDESK_LOG_LEVEL"),
			Destination: &l.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json)",
			Value:       "console",
			Category:    "Logging",
			Sources:     cli.EnvVars("ORGDESK_LOG_FORMAT"),
			Destination: &l.format,
		},
		&cli.StringFlag{
			Name:        "log-output",
			Usage:       "Log output (stdout, stderr, or file path)",
			Value:       "stdout",
			Category:    "Logging",
			Sources:     cli.EnvVars("ORGDESK_LOG_OUTPUT"),
			Destination: &l.output,
		},
	}
}

func (l Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", l.level),
		slog.String("format", l.format),
		slog.String("output", l.output),
	)
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Configure builds the logger, installs it as the process default and returns a closer for the
// output file, if any.
func (l *Logger) Configure() (func(), error) {
	closer := func() {}

	level, ok := logLevels[strings.ToLower(l.level)]
	if !ok {
		return closer, goerr.Wrap(ErrInvalidConfig, "invalid log level", goerr.V("level", l.level))
	}

	var w io.Writer
	switch l.output {
	case "stdout", "-", "":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		// #nosec G304 - path is given by the operator
		f, err := os.OpenFile(l.output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return closer, goerr.Wrap(err, "failed to open log file", goerr.V("path", l.output))
		}
		w = f
		closer = func() { _ = f.Close() }
	}

	logger, err := newLogger(w, level, l.format)
	if err != nil {
		closer()
		return func() {}, err
	}
	logging.SetDefault(logger)

	return closer, nil
}

func newLogger(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	filter := masq.New(
		masq.WithTag("secret"),
		masq.WithFieldName("password"),
		masq.WithFieldName("Password"),
		masq.WithFieldName("token_secret"),
		masq.WithFieldName("PasswordHash"),
	)

	var handler slog.Handler
	switch format {
	case "console":
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithReplaceAttr(filter),
			clog.WithSource(true),
		)
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource:   true,
			Level:       level,
			ReplaceAttr: filter,
		})
	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid log format", goerr.V("format", format))
	}

	return slog.New(handler), nil
}
