package recorder

import (
	"context"

	"StockPulse/internal/model"
)

// NoopRecorder is a no-op implementation used when no storage is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordBatch(_ context.Context, _ *model.BatchResult) error { return nil }
func (n *NoopRecorder) Close() error                                            { return nil }
