// Package trace carries a run ID in the context; Log prefixes every line
// with TRACE=id so one batch or command can be grepped end to end.
package trace

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

type ctxKey int

const traceIDKey ctxKey = 0

func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey, id)
}

func TraceID(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey).(string); ok {
		return id
	}
	return ""
}

// NewTraceID returns a fresh random run ID.
func NewTraceID() string {
	return uuid.NewString()
}

// Short trims an ID to its first block for compact log lines.
func Short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Log writes one line prefixed with TRACE=id.
func Log(ctx context.Context, format string, args ...interface{}) {
	id := Short(TraceID(ctx))
	if id == "" {
		id = "-"
	}
	log.Printf("TRACE=%s | %s", id, fmt.Sprintf(format, args...))
}
