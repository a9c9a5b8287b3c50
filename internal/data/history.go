package data

import (
	"fmt"
	"math"
	"sort"
	"time"

	"backtest-go/internal/bus"
	"backtest-go/internal/event"
	"backtest-go/internal/metrics"
)

// History is the reference in-memory Source. It aligns every instrument's
// series onto the union calendar at construction (forward-filling gaps), then
// replays one synchronized bar per instrument on each Advance.
type History struct {
	events   *bus.Queue
	symbols  []string
	calendar []time.Time
	series   map[string][]Bar
	latest   map[string][]Bar
	cursor   int
	halted   bool
}

// NewHistory aligns the supplied per-symbol series and returns a replayable
// source. Market events emitted by Advance are pushed onto events.
func NewHistory(events *bus.Queue, series map[string][]Bar) (*History, error) {
	if events == nil {
		return nil, fmt.Errorf("nil event queue")
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no symbol series supplied")
	}

	symbols := make([]string, 0, len(series))
	for s, bars := range series {
		if len(bars) == 0 {
			return nil, fmt.Errorf("symbol %s: empty series", s)
		}
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	h := &History{
		events:  events,
		symbols: symbols,
		series:  make(map[string][]Bar, len(series)),
		latest:  make(map[string][]Bar, len(series)),
	}
	h.calendar = unionCalendar(series)
	for _, s := range symbols {
		h.series[s] = alignSeries(series[s], h.calendar)
		h.latest[s] = make([]Bar, 0, len(h.calendar))
	}
	return h, nil
}

// unionCalendar merges every timestamp across all symbols into one ascending index.
func unionCalendar(series map[string][]Bar) []time.Time {
	seen := make(map[int64]time.Time)
	for _, bars := range series {
		for _, b := range bars {
			seen[b.Ts.UnixNano()] = b.Ts
		}
	}
	calendar := make([]time.Time, 0, len(seen))
	for _, ts := range seen {
		calendar = append(calendar, ts)
	}
	sort.Slice(calendar, func(i, j int) bool { return calendar[i].Before(calendar[j]) })
	return calendar
}

// alignSeries reindexes bars onto the calendar, forward-filling gaps. Entries
// before the first observation are NaN pads; adjusted close and period return
// are derived after alignment, so padded bars carry a zero return.
func alignSeries(bars []Bar, calendar []time.Time) []Bar {
	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ts.Before(sorted[j].Ts) })

	aligned := make([]Bar, len(calendar))
	idx := 0
	var prev *Bar
	for i, ts := range calendar {
		for idx < len(sorted) && !sorted[idx].Ts.After(ts) {
			prev = &sorted[idx]
			idx++
		}
		if prev == nil {
			aligned[i] = missingBar(ts)
			continue
		}
		b := *prev
		b.Ts = ts
		aligned[i] = b
	}

	prevAdj := math.NaN()
	for i := range aligned {
		if aligned[i].Missing() {
			continue
		}
		aligned[i].AdjClose = aligned[i].Close * aligned[i].AdjFactor
		if math.IsNaN(prevAdj) || prevAdj == 0 {
			aligned[i].Return = 0
		} else {
			aligned[i].Return = aligned[i].AdjClose/prevAdj - 1
		}
		prevAdj = aligned[i].AdjClose
	}
	return aligned
}

func missingBar(ts time.Time) Bar {
	nan := math.NaN()
	return Bar{Ts: ts, Open: nan, High: nan, Low: nan, Close: nan, Volume: nan, AdjFactor: nan, AdjClose: nan, Return: nan}
}

// Symbols implements Source.
func (h *History) Symbols() []string { return h.symbols }

// Calendar exposes the shared time index, useful for sizing sweeps and reports.
func (h *History) Calendar() []time.Time { return h.calendar }

func (h *History) published(symbol string) ([]Bar, error) {
	bars, ok := h.latest[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoBars, symbol)
	}
	return bars, nil
}

// LatestBar implements Source.
func (h *History) LatestBar(symbol string) (Bar, error) {
	bars, err := h.published(symbol)
	if err != nil {
		return Bar{}, err
	}
	return bars[len(bars)-1], nil
}

// LatestBars implements Source.
func (h *History) LatestBars(symbol string, n int) ([]Bar, error) {
	bars, err := h.published(symbol)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = 1
	}
	if n > len(bars) {
		n = len(bars)
	}
	out := make([]Bar, n)
	copy(out, bars[len(bars)-n:])
	return out, nil
}

// LatestBarTime implements Source.
func (h *History) LatestBarTime(symbol string) (time.Time, error) {
	bar, err := h.LatestBar(symbol)
	if err != nil {
		return time.Time{}, err
	}
	return bar.Ts, nil
}

// LatestBarValue implements Source.
func (h *History) LatestBarValue(symbol string, field Field) (float64, error) {
	bar, err := h.LatestBar(symbol)
	if err != nil {
		return 0, err
	}
	return bar.Value(field), nil
}

// LatestBarValues implements Source.
func (h *History) LatestBarValues(symbol string, field Field, n int) ([]float64, error) {
	bars, err := h.LatestBars(symbol, n)
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(bars))
	for i, b := range bars {
		values[i] = b.Value(field)
	}
	return values, nil
}

// Advance implements Source. The shared calendar is exhausted when the cursor
// runs past its end; exhaustion halts the whole run, not a single instrument.
func (h *History) Advance() bool {
	if h.halted || h.cursor >= len(h.calendar) {
		h.halted = true
		return false
	}
	for _, s := range h.symbols {
		h.latest[s] = append(h.latest[s], h.series[s][h.cursor])
	}
	ts := h.calendar[h.cursor]
	h.cursor++
	metrics.BarsTotal.Inc()
	h.events.Push(event.Market{Ts: ts})
	return true
}
