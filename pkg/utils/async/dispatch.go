package async

import (
	"context"
	"sync"

	"github.com/secmon-lab/orgdesk/pkg/utils/errutil"
	"github.com/secmon-lab/orgdesk/pkg/utils/logging"
)

var inflight sync.WaitGroup

// Dispatch runs handler in a new goroutine with a context detached from ctx's cancellation but
// carrying its logger. Errors and panics are logged.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.WithoutCancel(ctx), logging.From(ctx))

	inflight.Add(1)
	go func() {
		defer inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			errutil.Handle(bgCtx, err, "async handler failed")
		}
	}()
}

// Wait blocks until every dispatched handler has returned
func Wait() {
	inflight.Wait()
}
