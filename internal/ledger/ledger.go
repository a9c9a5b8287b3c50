// Package ledger stores the fill history produced by a simulation run.
package ledger

import (
	"sync"

	"backtest-go/internal/event"
)

// FillRecorder captures fills for later inspection.
type FillRecorder interface {
	Record(event.Fill)
}

// Ledger stores fills in memory. Positions must reconcile against this record:
// the sum of signed fill quantities per symbol is the position.
type Ledger struct {
	mu    sync.Mutex
	fills []event.Fill
}

// NewLedger creates an empty ledger optionally pre-sizing storage.
func NewLedger(capacity int) *Ledger {
	if capacity < 0 {
		capacity = 0
	}
	return &Ledger{fills: make([]event.Fill, 0, capacity)}
}

// Record appends a fill to the ledger.
func (l *Ledger) Record(fill event.Fill) {
	l.mu.Lock()
	l.fills = append(l.fills, fill)
	l.mu.Unlock()
}

// Snapshot returns a copy of the recorded fills.
func (l *Ledger) Snapshot() []event.Fill {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]event.Fill, len(l.fills))
	copy(out, l.fills)
	return out
}

// SignedQuantity sums directional fill quantities for one symbol.
func (l *Ledger) SignedQuantity(symbol string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	var total float64
	for _, fill := range l.fills {
		if fill.Symbol != symbol {
			continue
		}
		switch fill.Direction {
		case event.Buy:
			total += fill.Quantity
		case event.Sell:
			total -= fill.Quantity
		}
	}
	return total
}

// Reset clears all stored fills.
func (l *Ledger) Reset() {
	l.mu.Lock()
	l.fills = l.fills[:0]
	l.mu.Unlock()
}
