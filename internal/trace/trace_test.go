package trace

import (
	"bytes"
	"context"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTraceIDRoundTrip(t *testing.T) {
	assert.Equal(t, "", TraceID(context.Background()))

	id := NewTraceID()
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, TraceID(WithTraceID(context.Background(), id)))
}

func TestLogPrefix(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)
	flags := log.Flags()
	log.SetFlags(0)
	defer log.SetFlags(flags)

	Log(context.Background(), "hello %d", 1)
	Log(WithTraceID(context.Background(), "0123456789abcdef"), "world")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"TRACE=- | hello 1", "TRACE=01234567 | world"}, lines)
}
