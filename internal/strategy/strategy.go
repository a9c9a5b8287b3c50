// Package strategy contains trading signal generation logic wired into market events.
package strategy

import (
	"strings"

	"backtest-go/internal/bus"
	"backtest-go/internal/data"
	"backtest-go/internal/event"
)

// Strategy defines behaviour shared by strategy implementations. OnEvent
// receives every event on the queue but implementations react only to Market
// events, querying the data source for history and pushing zero or more
// Signal events back onto the queue. Implementations must be deterministic
// functions of the event stream and queried history.
type Strategy interface {
	OnEvent(e event.Event) error
	Name() string
}

// Status tracks per-instrument market participation.
type Status string

const (
	// StatusOut means the strategy holds no opinion on the instrument.
	StatusOut Status = "OUT"
	// StatusLong means the strategy considers itself long the instrument.
	StatusLong Status = "LONG"
	// StatusShort means the strategy considers itself short the instrument.
	StatusShort Status = "SHORT"
)

// Params expresses tunable knobs required by strategy constructors.
type Params struct {
	ShortWindow    int
	LongWindow     int
	Quantity       float64
	WarmupTicks    int
	RebalanceEvery int
	Lookback       int
	SkipRecent     int
	TopN           int
}

// Build returns a strategy implementation matching the configured mode.
func Build(mode string, bars data.Source, events *bus.Queue, params Params) Strategy {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "mac", "ma_cross", "moving_average_cross":
		return NewMovingAverageCross(bars, events, params.ShortWindow, params.LongWindow, params.Quantity)
	case "momentum", "momentum_rank":
		return NewMomentum(bars, events, params)
	default:
		return NewMovingAverageCross(bars, events, params.ShortWindow, params.LongWindow, params.Quantity)
	}
}
