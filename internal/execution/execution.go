// Package execution simulates order handling with a deterministic cost model.
package execution

import (
	"github.com/rs/zerolog"

	"backtest-go/internal/bus"
	"backtest-go/internal/data"
	"backtest-go/internal/event"
)

// ExchangeTag marks fills produced by the simulator rather than a venue.
const ExchangeTag = "SIMULATED"

// Simulator converts orders into fills at the instrument's latest adjusted
// close with a tiered commission. No slippage or latency model; exactly one
// fill per order.
type Simulator struct {
	bars   data.Source
	events *bus.Queue
	log    zerolog.Logger
}

// NewSimulator builds a simulator reading prices from bars and pushing fills
// onto events.
func NewSimulator(bars data.Source, events *bus.Queue, log zerolog.Logger) *Simulator {
	return &Simulator{bars: bars, events: events, log: log}
}

// Execute prices one order and returns the resulting fill.
func (s *Simulator) Execute(order event.Order) (event.Fill, error) {
	if order.Quantity <= 0 {
		return event.Fill{}, event.ErrQuantity
	}
	price, err := s.bars.LatestBarValue(order.Symbol, data.FieldAdjClose)
	if err != nil {
		return event.Fill{}, err
	}
	ts, err := s.bars.LatestBarTime(order.Symbol)
	if err != nil {
		return event.Fill{}, err
	}
	fill := event.NewFill(ts, order.Symbol, ExchangeTag, order.Quantity, order.Direction, price, -1)
	s.log.Debug().Str("sym", fill.Symbol).Str("side", string(fill.Direction)).Float64("qty", fill.Quantity).Float64("px", fill.Price).Float64("fee", fill.Commission).Msg("order filled")
	return fill, nil
}

// OnOrder executes the order and pushes the fill onto the shared queue.
func (s *Simulator) OnOrder(order event.Order) error {
	fill, err := s.Execute(order)
	if err != nil {
		return err
	}
	s.events.Push(fill)
	return nil
}
