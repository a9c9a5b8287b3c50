package strategy

import (
	"math"
	"time"

	"backtest-go/internal/bus"
	"backtest-go/internal/data"
	"backtest-go/internal/event"
	"backtest-go/internal/metrics"
)

// MovingAverageCross goes long when the short simple moving average of the
// adjusted close crosses above the long one, and exits on the reverse cross.
type MovingAverageCross struct {
	bars        data.Source
	events      *bus.Queue
	shortWindow int
	longWindow  int
	quantity    float64
	status      map[string]Status
}

// NewMovingAverageCross builds the strategy with the given lookback windows
// and a fixed per-signal quantity.
func NewMovingAverageCross(bars data.Source, events *bus.Queue, shortWindow, longWindow int, quantity float64) *MovingAverageCross {
	if shortWindow <= 0 {
		shortWindow = 30
	}
	if longWindow <= shortWindow {
		longWindow = 4 * shortWindow
	}
	if quantity <= 0 {
		quantity = 500
	}
	status := make(map[string]Status)
	for _, s := range bars.Symbols() {
		status[s] = StatusOut
	}
	return &MovingAverageCross{
		bars:        bars,
		events:      events,
		shortWindow: shortWindow,
		longWindow:  longWindow,
		quantity:    quantity,
		status:      status,
	}
}

// Name returns the identifier for the strategy implementation.
func (m *MovingAverageCross) Name() string { return "MovingAverageCross" }

// OnEvent reacts to Market events by comparing the two moving averages for
// every tracked symbol.
func (m *MovingAverageCross) OnEvent(e event.Event) error {
	if _, ok := e.(event.Market); !ok {
		return nil
	}
	for _, s := range m.bars.Symbols() {
		closes, err := m.bars.LatestBarValues(s, data.FieldAdjClose, m.longWindow)
		if err != nil {
			return err
		}
		if len(closes) == 0 || math.IsNaN(closes[len(closes)-1]) {
			continue // not listed yet
		}
		ts, err := m.bars.LatestBarTime(s)
		if err != nil {
			return err
		}

		shortSMA, longSMA := m.averages(closes)
		switch {
		case shortSMA > longSMA && m.status[s] == StatusOut:
			m.emit(s, ts, event.Long)
			m.status[s] = StatusLong
		case shortSMA < longSMA && m.status[s] == StatusLong:
			m.emit(s, ts, event.Exit)
			m.status[s] = StatusOut
		}
	}
	return nil
}

// averages computes the short and long SMA over the published closes. Once
// enough history exists, each window excludes the most recent bar so that the
// signal lags the cross by one bar.
func (m *MovingAverageCross) averages(closes []float64) (shortSMA, longSMA float64) {
	n := len(closes)
	switch {
	case n+1 <= m.shortWindow:
		full := mean(closes)
		return full, full
	case n+1 <= m.longWindow:
		return mean(closes[max(0, n-m.shortWindow-1) : n-1]), mean(closes)
	default:
		return mean(closes[max(0, n-m.shortWindow-1) : n-1]), mean(closes[max(0, n-m.longWindow-1) : n-1])
	}
}

func (m *MovingAverageCross) emit(symbol string, ts time.Time, dir event.Direction) {
	metrics.SignalsTotal.WithLabelValues(symbol, string(dir)).Inc()
	m.events.Push(event.Signal{
		StrategyID: m.Name(),
		Symbol:     symbol,
		Ts:         ts,
		Direction:  dir,
		Strength:   1.0,
		Quantity:   m.quantity,
	})
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
