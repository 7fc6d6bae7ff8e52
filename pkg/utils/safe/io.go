package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/secmon-lab/orgdesk/pkg/utils/logging"
)

// Close closes closer and logs a failure. Nil closers are ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.Any("error", err))
	}
}

// Write writes data to w and logs a failure. Nil writers are ignored.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Error("Failed to write", slog.Any("error", err))
	}
}

// Run calls fn and logs its error with msg. Meant for deferred cleanup whose error has no
// caller to go to.
func Run(ctx context.Context, msg string, fn func() error) {
	if err := fn(); err != nil {
		logging.From(ctx).Error(msg, slog.Any("error", err))
	}
}
