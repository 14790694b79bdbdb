package middleware

import (
	"context"

	"github.com/google/uuid"
)

type traceKey struct{}

// trace carries facts learned deep in the handler chain back out to the
// access log, which runs before Auth has resolved the caller.
type trace struct {
	accountID uuid.UUID
	role      string
}

func withTrace(ctx context.Context) (context.Context, *trace) {
	if t, ok := ctx.Value(traceKey{}).(*trace); ok {
		return ctx, t
	}
	t := &trace{}
	return context.WithValue(ctx, traceKey{}, t), t
}

func traceFrom(ctx context.Context) *trace {
	t, _ := ctx.Value(traceKey{}).(*trace)
	return t
}
