// Package backtest drives the event loop that connects the bar source,
// strategy, portfolio, and execution simulator.
package backtest

import (
	"fmt"

	"github.com/rs/zerolog"

	"backtest-go/internal/bus"
	"backtest-go/internal/data"
	"backtest-go/internal/event"
	"backtest-go/internal/execution"
	"backtest-go/internal/portfolio"
	"backtest-go/internal/strategy"
)

// Stats counts the events a run processed.
type Stats struct {
	Ticks   int
	Signals int
	Orders  int
	Fills   int
}

// Engine owns one backtest run. Single-threaded: each Advance on the source
// is followed by a full drain of the event queue before the next tick.
type Engine struct {
	source    data.Source
	events    *bus.Queue
	strategy  strategy.Strategy
	portfolio *portfolio.Portfolio
	simulator *execution.Simulator
	log       zerolog.Logger
	stats     Stats
}

// Option tweaks engine construction.
type Option func(*Engine)

// WithLogger replaces the default silent logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine wires the run loop over already-constructed components. All of
// them must share the same queue.
func NewEngine(source data.Source, events *bus.Queue, strat strategy.Strategy, port *portfolio.Portfolio, sim *execution.Simulator, opts ...Option) *Engine {
	e := &Engine{
		source:    source,
		events:    events,
		strategy:  strat,
		portfolio: port,
		simulator: sim,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run replays the source to exhaustion. Each tick drains the queue to
// quiescence so every signal, order, and fill settles before the next bar.
// A handler error aborts the run; the returned stats cover the completed
// portion only.
func (e *Engine) Run() (Stats, error) {
	e.log.Info().Str("strategy", e.strategy.Name()).Msg("backtest started")
	for e.source.Advance() {
		e.stats.Ticks++
		if err := e.drain(); err != nil {
			e.log.Error().Err(err).Int("tick", e.stats.Ticks).Msg("backtest aborted")
			return e.stats, fmt.Errorf("tick %d: %w", e.stats.Ticks, err)
		}
	}
	e.log.Info().
		Int("ticks", e.stats.Ticks).
		Int("signals", e.stats.Signals).
		Int("orders", e.stats.Orders).
		Int("fills", e.stats.Fills).
		Msg("backtest finished")
	return e.stats, nil
}

// Stats returns the counters accumulated so far.
func (e *Engine) Stats() Stats { return e.stats }

func (e *Engine) drain() error {
	for {
		ev, ok := e.events.Pop()
		if !ok {
			return nil
		}
		switch ev := ev.(type) {
		case event.Market:
			if err := e.strategy.OnEvent(ev); err != nil {
				return fmt.Errorf("strategy: %w", err)
			}
			if err := e.portfolio.OnMarket(ev); err != nil {
				return fmt.Errorf("portfolio market: %w", err)
			}
		case event.Signal:
			e.stats.Signals++
			if err := e.portfolio.OnSignal(ev); err != nil {
				return fmt.Errorf("portfolio signal: %w", err)
			}
		case event.Order:
			e.stats.Orders++
			if err := e.simulator.OnOrder(ev); err != nil {
				return fmt.Errorf("execution: %w", err)
			}
		case event.Fill:
			e.stats.Fills++
			if err := e.portfolio.OnFill(ev); err != nil {
				return fmt.Errorf("portfolio fill: %w", err)
			}
		default:
			e.log.Warn().Str("kind", string(ev.Kind())).Msg("unhandled event kind")
		}
	}
}
