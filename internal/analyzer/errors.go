package analyzer

import (
	"errors"
	"fmt"

	"StockPulse/internal/calculator"
	"StockPulse/internal/collector"
)

var (
	// ErrDataUnavailable means the price source returned nothing, failed, or
	// delivered bars that do not pass validation.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrInsufficientHistory means too few bars for the requested analysis.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrComputation means a numeric stage produced an unusable value.
	ErrComputation = errors.New("computation error")
)

// classify maps collector and calculator failures onto the analyzer's
// taxonomy. The original error stays in the chain.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrDataUnavailable), errors.Is(err, ErrInsufficientHistory), errors.Is(err, ErrComputation):
		return err
	case errors.Is(err, calculator.ErrInsufficientBars):
		return fmt.Errorf("%w: %w", ErrInsufficientHistory, err)
	case errors.Is(err, collector.ErrInvalidBars), errors.Is(err, collector.ErrNoData):
		return fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
}
