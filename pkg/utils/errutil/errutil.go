package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/orgdesk/pkg/utils/logging"
)

// Handle logs the error with goerr values and stack and reports it to Sentry. Sentry capture is
// a no-op when no client was initialized.
func Handle(ctx context.Context, err error, msg string) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	report(ctx, err, msg, ge)
}

func report(ctx context.Context, err error, msg string, ge *goerr.Error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	if hub.Client() == nil {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("message", msg)
		if ge != nil {
			scope.SetContext("goerr", sentry.Context(ge.Values()))
		}
		hub.CaptureException(err)
	})
}

type errorBody struct {
	Error string `json:"error"`
}

// HandleHTTP writes a JSON error body with statusCode. 5xx errors are logged and reported; 4xx
// errors are logged at warn level since they are caused by the request.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	if statusCode >= http.StatusInternalServerError {
		Handle(ctx, err, "HTTP error")
	} else {
		logging.From(ctx).Warn("HTTP request rejected",
			"status", statusCode,
			"error", err.Error(),
		)
	}

	message := err.Error()
	if statusCode >= http.StatusInternalServerError {
		message = http.StatusText(statusCode)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if encErr := json.NewEncoder(w).Encode(errorBody{Error: message}); encErr != nil {
		logging.From(ctx).Error("failed to encode error response", "error", encErr)
	}
}
