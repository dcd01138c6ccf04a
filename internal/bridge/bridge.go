// Package bridge runs the long-lived tasks that move sensor state onto the
// message bus: the input sampler, the reading publisher, the readiness
// poller and the control-channel handler.
//
// Each task owns a for/select loop over an injected tick channel so tests
// can drive it one cycle at a time.
package bridge

import (
	"context"
	"time"
)

// Clock returns the current time.
type Clock func() time.Time

func loop(ctx context.Context, tick <-chan time.Time, step func()) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			step()
		}
	}
}
