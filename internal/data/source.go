package data

import (
	"errors"
	"time"
)

// ErrUnknownSymbol is returned for instruments absent from the data set. It is
// fatal to a run; no recovery is defined.
var ErrUnknownSymbol = errors.New("symbol not present in historical data set")

// ErrNoBars is returned when a symbol has no published bars yet, i.e. before
// the first Advance call.
var ErrNoBars = errors.New("no bars published yet")

// Source replays historical bars in a manner identical to a live feed: the
// consumer only ever sees the "latest" view, which grows by one bar per
// instrument on each Advance. All series are pre-aligned onto a shared
// calendar at setup, so every Advance yields synchronized bars.
type Source interface {
	// Symbols lists the tracked instruments in deterministic order.
	Symbols() []string
	// LatestBar returns the most recently published bar.
	LatestBar(symbol string) (Bar, error)
	// LatestBars returns the most recent n bars, or fewer if the published
	// history is shorter.
	LatestBars(symbol string, n int) ([]Bar, error)
	// LatestBarTime returns the timestamp of the most recent bar.
	LatestBarTime(symbol string) (time.Time, error)
	// LatestBarValue returns one field of the most recent bar.
	LatestBarValue(symbol string, field Field) (float64, error)
	// LatestBarValues returns one field across the most recent n bars.
	LatestBarValues(symbol string, field Field, n int) ([]float64, error)
	// Advance publishes the next bar for every instrument and emits a single
	// Market event. It returns false once the shared calendar is exhausted, at
	// which point no event is emitted and the run should stop.
	Advance() bool
}
