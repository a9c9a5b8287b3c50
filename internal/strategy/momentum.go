package strategy

import (
	"math"
	"sort"
	"time"

	"backtest-go/internal/bus"
	"backtest-go/internal/data"
	"backtest-go/internal/event"
	"backtest-go/internal/metrics"
)

// Momentum ranks the universe by the t-statistic of a linear trend fitted to
// each instrument's recent period returns, holds the top instruments long, and
// exits holdings that drop out of the ranking. Rebalancing happens on a fixed
// tick cadence after a warmup period.
type Momentum struct {
	bars     data.Source
	events   *bus.Queue
	quantity float64
	warmup   int
	cadence  int
	lookback int
	skip     int
	topN     int
	ticks    int
	status   map[string]Status
}

type momentumScore struct {
	symbol string
	ts     time.Time
	tValue float64
}

// NewMomentum builds the ranking strategy from the shared parameter bundle.
func NewMomentum(bars data.Source, events *bus.Queue, params Params) *Momentum {
	m := &Momentum{
		bars:     bars,
		events:   events,
		quantity: params.Quantity,
		warmup:   params.WarmupTicks,
		cadence:  params.RebalanceEvery,
		lookback: params.Lookback,
		skip:     params.SkipRecent,
		topN:     params.TopN,
		status:   make(map[string]Status),
	}
	if m.quantity <= 0 {
		m.quantity = 500
	}
	if m.warmup <= 0 {
		m.warmup = 252
	}
	if m.cadence <= 0 {
		m.cadence = 30
	}
	if m.lookback <= 0 {
		m.lookback = 223
		if m.skip <= 0 {
			// Classic momentum ignores roughly the last trading month.
			m.skip = 29
		}
	}
	if m.skip < 0 {
		m.skip = 0
	}
	if m.topN <= 0 {
		m.topN = 50
	}
	for _, s := range bars.Symbols() {
		m.status[s] = StatusOut
	}
	return m
}

// Name returns the identifier for the strategy implementation.
func (m *Momentum) Name() string { return "Momentum" }

// OnEvent counts ticks and rebalances on the configured cadence.
func (m *Momentum) OnEvent(e event.Event) error {
	if _, ok := e.(event.Market); !ok {
		return nil
	}
	m.ticks++
	if m.ticks <= m.warmup || m.ticks%m.cadence != 0 {
		return nil
	}
	return m.rebalance()
}

func (m *Momentum) rebalance() error {
	scores := make([]momentumScore, 0, len(m.status))
	window := m.lookback + m.skip
	for _, s := range m.bars.Symbols() {
		returns, err := m.bars.LatestBarValues(s, data.FieldReturn, window)
		if err != nil {
			return err
		}
		if len(returns) < window || math.IsNaN(returns[len(returns)-1]) {
			continue // not listed long enough
		}
		ts, err := m.bars.LatestBarTime(s)
		if err != nil {
			return err
		}
		// The trend is fitted on the older part of the window; the newest
		// skip returns are excluded from the ranking.
		t := trendTValue(returns[:m.lookback])
		if math.IsNaN(t) {
			continue
		}
		scores = append(scores, momentumScore{symbol: s, ts: ts, tValue: t})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].tValue != scores[j].tValue {
			return scores[i].tValue > scores[j].tValue
		}
		return scores[i].symbol < scores[j].symbol
	})
	if len(scores) > m.topN {
		scores = scores[:m.topN]
	}

	held := make(map[string]bool, len(scores))
	for _, sc := range scores {
		held[sc.symbol] = true
		if m.status[sc.symbol] == StatusOut {
			m.status[sc.symbol] = StatusLong
			m.emit(sc.symbol, sc.ts, event.Long)
		}
	}
	for _, s := range m.bars.Symbols() {
		if m.status[s] == StatusLong && !held[s] {
			ts, err := m.bars.LatestBarTime(s)
			if err != nil {
				return err
			}
			m.status[s] = StatusOut
			m.emit(s, ts, event.Exit)
		}
	}
	return nil
}

func (m *Momentum) emit(symbol string, ts time.Time, dir event.Direction) {
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

// trendTValue fits y = beta*x through the origin with x = 1..n and returns the
// t-statistic of beta. Larger values indicate a steadier positive drift.
func trendTValue(y []float64) float64 {
	n := len(y)
	if n < 3 {
		return math.NaN()
	}
	var sxy, sxx float64
	for i, v := range y {
		x := float64(i + 1)
		sxy += x * v
		sxx += x * x
	}
	if sxx == 0 {
		return math.NaN()
	}
	beta := sxy / sxx

	var sse float64
	for i, v := range y {
		x := float64(i + 1)
		r := v - beta*x
		sse += r * r
	}
	variance := sse / float64(n-1)
	if variance <= 0 {
		// A perfect fit has an unbounded t-statistic.
		if beta > 0 {
			return math.Inf(1)
		}
		if beta < 0 {
			return math.Inf(-1)
		}
		return 0
	}
	se := math.Sqrt(variance / sxx)
	return beta / se
}
