// Package data supplies time-ordered bars per instrument to the rest of the engine.
package data

import (
	"math"
	"time"
)

// Field names a single value inside a bar.
type Field string

const (
	// FieldOpen is the bar open price.
	FieldOpen Field = "open"
	// FieldHigh is the bar high price.
	FieldHigh Field = "high"
	// FieldLow is the bar low price.
	FieldLow Field = "low"
	// FieldClose is the raw close price.
	FieldClose Field = "close"
	// FieldVolume is the traded volume.
	FieldVolume Field = "volume"
	// FieldAdjFactor is the corporate action adjustment factor.
	FieldAdjFactor Field = "adj_factor"
	// FieldAdjClose is the adjusted close (close × adj_factor), derived at load time.
	FieldAdjClose Field = "adj_close"
	// FieldReturn is the period simple return of the adjusted close, derived at load time.
	FieldReturn Field = "return"
)

// Bar is one OHLCV record, plus adjustment factor and the derived adjusted
// close and period return. Immutable once published by a Source. Bars padded
// in before an instrument's first observation carry NaN prices.
type Bar struct {
	Ts        time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	AdjFactor float64
	AdjClose  float64
	Return    float64
}

// Value returns the named field, or NaN for an unknown field name.
func (b Bar) Value(field Field) float64 {
	switch field {
	case FieldOpen:
		return b.Open
	case FieldHigh:
		return b.High
	case FieldLow:
		return b.Low
	case FieldClose:
		return b.Close
	case FieldVolume:
		return b.Volume
	case FieldAdjFactor:
		return b.AdjFactor
	case FieldAdjClose:
		return b.AdjClose
	case FieldReturn:
		return b.Return
	default:
		return math.NaN()
	}
}

// Missing reports whether the bar is a leading pad with no real observation.
func (b Bar) Missing() bool {
	return math.IsNaN(b.Close)
}
