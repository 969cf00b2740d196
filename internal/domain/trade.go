package domain

import (
	"errors"
	"fmt"
)

// Record-level failures. Both are recoverable: the run skips the offending
// record, keeps it in the rejection log and continues with the batch.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrOverAllocation = errors.New("allocation exceeds available capital")
)

// Trade is one simulated round trip: buy at entry, sell at exit, with a
// fixed slice of capital. Immutable once built; the run folds it into the
// summary and never touches it again.
type Trade struct {
	Symbol           string
	Strategy         Strategy
	EntryPrice       float64
	ExitPrice        float64
	CapitalAllocated float64
	ReturnPct        float64 // (exit - entry) / entry, fractional
	PnL              float64 // CapitalAllocated * ReturnPct
}

// Win reports whether the trade closed with a positive return.
func (t Trade) Win() bool { return t.ReturnPct > 0 }

// Simulate prices a single trade. It fails with ErrInvalidInput when any
// input is non-positive or non-finite. It never touches portfolio capital;
// the caller owns the allocation ceiling.
func Simulate(entry, exit, capital float64) (Trade, error) {
	if !isFinite(entry) || entry <= 0 {
		return Trade{}, fmt.Errorf("domain.Simulate: entry price %.4f: %w", entry, ErrInvalidInput)
	}
	if !isFinite(exit) || exit <= 0 {
		return Trade{}, fmt.Errorf("domain.Simulate: exit price %.4f: %w", exit, ErrInvalidInput)
	}
	if !isFinite(capital) || capital <= 0 {
		return Trade{}, fmt.Errorf("domain.Simulate: capital %.2f: %w", capital, ErrInvalidInput)
	}

	ret := (exit - entry) / entry
	return Trade{
		EntryPrice:       entry,
		ExitPrice:        exit,
		CapitalAllocated: capital,
		ReturnPct:        ret,
		PnL:              capital * ret,
	}, nil
}
