// Package event defines the typed payloads exchanged between the simulation components.
package event

import (
	"errors"
	"time"
)

// Kind tags the concrete event variant travelling through the queue.
type Kind string

const (
	// KindMarket marks a new bar becoming visible to consumers.
	KindMarket Kind = "MARKET"
	// KindSignal marks a trade intent emitted by a strategy.
	KindSignal Kind = "SIGNAL"
	// KindOrder marks a sized request bound for the execution layer.
	KindOrder Kind = "ORDER"
	// KindFill marks a simulated execution outcome.
	KindFill Kind = "FILL"
)

// Event is implemented by every variant; consumers switch on the concrete type.
type Event interface {
	Kind() Kind
}

// Direction expresses the intent of a strategy signal.
type Direction string

const (
	// Long requests increased exposure.
	Long Direction = "LONG"
	// Short requests a short position from flat.
	Short Direction = "SHORT"
	// Exit requests the current position be unwound.
	Exit Direction = "EXIT"
)

// Side enumerates order and fill directions.
type Side string

const (
	// Buy indicates a long order.
	Buy Side = "BUY"
	// Sell indicates a short order.
	Sell Side = "SELL"
)

// OrderType distinguishes market from limit orders. The simulator only prices
// market orders; limit is carried for completeness.
type OrderType string

const (
	// MarketOrder executes at the latest available price.
	MarketOrder OrderType = "MKT"
	// LimitOrder executes at a specified price or better.
	LimitOrder OrderType = "LMT"
)

// ErrQuantity rejects order construction with a non-positive quantity.
var ErrQuantity = errors.New("order quantity must be positive")

// Market signals that a fresh bar has been published for every tracked symbol.
type Market struct {
	Ts time.Time
}

// Kind implements Event.
func (Market) Kind() Kind { return KindMarket }

// Signal is a trade intent produced by a strategy and consumed by the portfolio.
type Signal struct {
	StrategyID string
	Symbol     string
	Ts         time.Time
	Direction  Direction
	Strength   float64 // advisory sizing hint
	Quantity   float64
}

// Kind implements Event.
func (Signal) Kind() Kind { return KindSignal }

// Order is a sized request the execution layer can process. Smooth holds the
// number of ticks remaining before the order is released for execution.
type Order struct {
	Ts        time.Time
	Symbol    string
	Type      OrderType
	Quantity  float64
	Direction Side
	Smooth    int
}

// Kind implements Event.
func (Order) Kind() Kind { return KindOrder }

// NewOrder validates and constructs an order. Fractional quantities are
// accepted; rounding policy is left to callers.
func NewOrder(ts time.Time, symbol string, typ OrderType, qty float64, side Side, smooth int) (*Order, error) {
	if qty <= 0 {
		return nil, ErrQuantity
	}
	return &Order{
		Ts:        ts,
		Symbol:    symbol,
		Type:      typ,
		Quantity:  qty,
		Direction: side,
		Smooth:    smooth,
	}, nil
}

// Fill is the simulated execution outcome of an order.
type Fill struct {
	Ts         time.Time
	Symbol     string
	Exchange   string
	Quantity   float64
	Direction  Side
	Price      float64
	Commission float64
}

// Kind implements Event.
func (Fill) Kind() Kind { return KindFill }

// NewFill constructs a fill, deriving the commission from the quantity when a
// negative commission is supplied.
func NewFill(ts time.Time, symbol, exchange string, qty float64, side Side, price, commission float64) Fill {
	if commission < 0 {
		commission = Commission(qty)
	}
	return Fill{
		Ts:         ts,
		Symbol:     symbol,
		Exchange:   exchange,
		Quantity:   qty,
		Direction:  side,
		Price:      price,
		Commission: commission,
	}
}

// Commission implements the tiered Interactive Brokers style schedule: a 1.30
// floor, 0.013 per share up to 500 shares, 0.008 per share beyond.
func Commission(qty float64) float64 {
	perShare := 0.013
	if qty > 500 {
		perShare = 0.008
	}
	cost := perShare * qty
	if cost < 1.30 {
		return 1.30
	}
	return cost
}
