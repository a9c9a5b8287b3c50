// Package portfolio tracks positions, holdings, and the order smoothing queue
// that converts strategy signals into time-sliced orders.
package portfolio

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"backtest-go/internal/bus"
	"backtest-go/internal/data"
	"backtest-go/internal/event"
	"backtest-go/internal/ledger"
	"backtest-go/internal/metrics"
	"backtest-go/internal/risk"
)

// defaultSmoothWindow is the number of equal slices a signal's quantity is
// spread over.
const defaultSmoothWindow = 5

// Portfolio is the sole mutator of positions, holdings history, and the
// per-instrument pending order queues. It consumes Signal and Fill events and
// emits Order events onto the shared queue.
type Portfolio struct {
	bars           data.Source
	events         *bus.Queue
	log            zerolog.Logger
	symbols        []string
	tracked        map[string]bool
	initialCapital float64
	smoothWindow   int
	limits         risk.Limits
	recorder       ledger.FillRecorder

	positions  map[string]float64
	cash       float64
	commission float64
	pending    map[string][]*event.Order

	allPositions []PositionsRow
	allHoldings  []HoldingsRow
}

// Option configures Portfolio construction parameters.
type Option func(*Portfolio)

// WithSmoothWindow overrides the number of slices a signal is spread over.
func WithSmoothWindow(n int) Option {
	return func(p *Portfolio) {
		if n > 0 {
			p.smoothWindow = n
		}
	}
}

// WithLimits installs a per-trade risk guard consulted when signals arrive.
func WithLimits(l risk.Limits) Option {
	return func(p *Portfolio) { p.limits = l }
}

// WithLogger attaches a logger; the default is a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Portfolio) { p.log = log }
}

// WithRecorder attaches a fill recorder (ledger, JSONL file, or both).
func WithRecorder(r ledger.FillRecorder) Option {
	return func(p *Portfolio) { p.recorder = r }
}

// New constructs a portfolio holding initialCapital in cash at start. The
// supplied Source is only read from; the queue receives released orders.
func New(bars data.Source, events *bus.Queue, start time.Time, initialCapital float64, opts ...Option) *Portfolio {
	symbols := bars.Symbols()
	p := &Portfolio{
		bars:           bars,
		events:         events,
		log:            zerolog.Nop(),
		symbols:        symbols,
		tracked:        make(map[string]bool, len(symbols)),
		initialCapital: initialCapital,
		smoothWindow:   defaultSmoothWindow,
		positions:      make(map[string]float64, len(symbols)),
		cash:           initialCapital,
		pending:        make(map[string][]*event.Order, len(symbols)),
	}
	for _, s := range symbols {
		p.tracked[s] = true
		p.positions[s] = 0
	}
	for _, opt := range opts {
		opt(p)
	}

	p.allPositions = []PositionsRow{newPositionsRow(start, p.positions)}
	p.allHoldings = []HoldingsRow{initialHoldingsRow(start, symbols, initialCapital)}
	return p
}

// OnMarket records the per-tick snapshot and walks every instrument's pending
// queue once: slices with remaining delay are decremented, slices reaching
// zero are released for execution in this tick.
func (p *Portfolio) OnMarket(ev event.Market) error {
	if err := p.snapshot(ev.Ts); err != nil {
		return err
	}
	for _, s := range p.symbols {
		queue := p.pending[s]
		if len(queue) == 0 {
			continue
		}
		kept := queue[:0]
		for _, order := range queue {
			if order.Smooth > 0 {
				order.Smooth--
				kept = append(kept, order)
				continue
			}
			p.release(order)
		}
		p.pending[s] = kept
	}
	return nil
}

// OnSignal converts a trade intent into smoothed orders. Pending slices for
// the same instrument are deferred one extra tick before the new slices are
// appended; slices whose counter lands on zero release immediately.
func (p *Portfolio) OnSignal(sig event.Signal) error {
	if !p.tracked[sig.Symbol] {
		return fmt.Errorf("%w: %s", data.ErrUnknownSymbol, sig.Symbol)
	}
	if p.limits != (risk.Limits{}) {
		price, err := p.bars.LatestBarValue(sig.Symbol, data.FieldAdjClose)
		if err != nil {
			return err
		}
		if !p.limits.Allow(sig.Quantity*price, sig.Quantity) {
			p.log.Warn().Str("sym", sig.Symbol).Str("dir", string(sig.Direction)).Float64("qty", sig.Quantity).Msg("signal rejected by risk limits")
			return nil
		}
	}

	for _, order := range p.pending[sig.Symbol] {
		order.Smooth++
	}
	slices, err := p.smoothOrders(sig)
	if err != nil {
		return err
	}
	queue := append(p.pending[sig.Symbol], slices...)

	kept := queue[:0]
	for _, order := range queue {
		if order.Smooth == 0 {
			p.release(order)
			continue
		}
		order.Smooth--
		kept = append(kept, order)
	}
	p.pending[sig.Symbol] = kept
	return nil
}

// smoothOrders splits the signal's quantity into equal slices tagged with
// increasing release delays. Total sliced quantity equals the requested
// quantity; release order is FIFO per instrument.
func (p *Portfolio) smoothOrders(sig event.Signal) ([]*event.Order, error) {
	current := p.positions[sig.Symbol]

	var side event.Side
	var qty float64
	switch sig.Direction {
	case event.Long:
		side, qty = event.Buy, sig.Quantity
	case event.Short:
		// Shorting is only permitted from flat.
		if current != 0 {
			return nil, nil
		}
		side, qty = event.Sell, sig.Quantity
	case event.Exit:
		if current > 0 {
			side, qty = event.Sell, current
		} else if current < 0 {
			side, qty = event.Buy, -current
		} else {
			return nil, nil
		}
	default:
		return nil, fmt.Errorf("unknown signal direction %q", sig.Direction)
	}

	slices := make([]*event.Order, 0, p.smoothWindow)
	slice := qty / float64(p.smoothWindow)
	for i := 0; i < p.smoothWindow; i++ {
		order, err := event.NewOrder(sig.Ts, sig.Symbol, event.MarketOrder, slice, side, i)
		if err != nil {
			return nil, err
		}
		slices = append(slices, order)
	}
	return slices, nil
}

func (p *Portfolio) release(order *event.Order) {
	metrics.OrdersTotal.WithLabelValues(order.Symbol, string(order.Direction)).Inc()
	p.log.Debug().Str("sym", order.Symbol).Str("side", string(order.Direction)).Float64("qty", order.Quantity).Msg("order released")
	p.events.Push(*order)
}

// OnFill applies a simulated execution: the signed position moves by the fill
// quantity and cash moves by the fill cost plus commission, valued at the
// price the fill actually happened at.
func (p *Portfolio) OnFill(fill event.Fill) error {
	if !p.tracked[fill.Symbol] {
		return fmt.Errorf("%w: %s", data.ErrUnknownSymbol, fill.Symbol)
	}
	dir := 0.0
	switch fill.Direction {
	case event.Buy:
		dir = 1
	case event.Sell:
		dir = -1
	}

	p.positions[fill.Symbol] += dir * fill.Quantity
	cost := dir * fill.Price * fill.Quantity
	p.cash -= cost + fill.Commission
	p.commission += fill.Commission

	metrics.FillsTotal.WithLabelValues(fill.Symbol, string(fill.Direction)).Inc()
	if p.recorder != nil {
		p.recorder.Record(fill)
	}
	return nil
}

// snapshot appends one positions row and one holdings row for the tick.
func (p *Portfolio) snapshot(ts time.Time) error {
	p.allPositions = append(p.allPositions, newPositionsRow(ts, p.positions))

	row := HoldingsRow{
		Ts:         ts,
		Values:     make(map[string]float64, len(p.symbols)),
		RawValues:  make(map[string]float64, len(p.symbols)),
		Cash:       p.cash,
		Commission: p.commission,
		Total:      p.cash,
		RawTotal:   p.cash,
	}
	for _, s := range p.symbols {
		price, err := p.bars.LatestBarValue(s, data.FieldAdjClose)
		if err != nil {
			return err
		}
		value := p.positions[s] * price
		if math.IsNaN(value) {
			value = 0 // flat position on a not-yet-listed instrument
		}
		row.RawValues[s] = value
		row.RawTotal += value
		if value < 0 {
			value = 0 // shorts are excluded from the clamped view
		}
		row.Values[s] = value
		row.Total += value
	}
	p.allHoldings = append(p.allHoldings, row)
	return nil
}

// Position returns the current signed quantity held for a symbol.
func (p *Portfolio) Position(symbol string) float64 {
	return p.positions[symbol]
}

// Cash returns the current cash balance.
func (p *Portfolio) Cash() float64 { return p.cash }

// Commission returns the cumulative commission paid.
func (p *Portfolio) Commission() float64 { return p.commission }

// PendingSlices reports the number of queued smoothed orders for a symbol.
func (p *Portfolio) PendingSlices(symbol string) int {
	return len(p.pending[symbol])
}

// PositionsHistory returns the recorded per-tick positions rows, including
// the initial capital-only entry.
func (p *Portfolio) PositionsHistory() []PositionsRow {
	return p.allPositions
}

// HoldingsHistory returns the recorded per-tick holdings rows, including the
// initial capital-only entry.
func (p *Portfolio) HoldingsHistory() []HoldingsRow {
	return p.allHoldings
}

// Totals extracts the clamped equity series for performance analysis.
func (p *Portfolio) Totals() (ts []time.Time, totals []float64) {
	ts = make([]time.Time, len(p.allHoldings))
	totals = make([]float64, len(p.allHoldings))
	for i, row := range p.allHoldings {
		ts[i] = row.Ts
		totals[i] = row.Total
	}
	return ts, totals
}
