package portfolio

import "time"

// PositionsRow records the signed quantity held per instrument at one tick.
// Quantities keeps the reporting convention of clamping negative
// positions to zero; Raw keeps the signed view.
type PositionsRow struct {
	Ts         time.Time
	Quantities map[string]float64
	Raw        map[string]float64
}

// HoldingsRow records per-instrument market value, cash, cumulative
// commission, and total equity at one tick. Values and Total clamp negative
// market values to zero; RawValues and RawTotal keep the signed view.
type HoldingsRow struct {
	Ts         time.Time
	Values     map[string]float64
	RawValues  map[string]float64
	Cash       float64
	Commission float64
	Total      float64
	RawTotal   float64
}

func newPositionsRow(ts time.Time, positions map[string]float64) PositionsRow {
	row := PositionsRow{
		Ts:         ts,
		Quantities: make(map[string]float64, len(positions)),
		Raw:        make(map[string]float64, len(positions)),
	}
	for s, qty := range positions {
		row.Raw[s] = qty
		if qty < 0 {
			qty = 0
		}
		row.Quantities[s] = qty
	}
	return row
}

func initialHoldingsRow(ts time.Time, symbols []string, capital float64) HoldingsRow {
	row := HoldingsRow{
		Ts:        ts,
		Values:    make(map[string]float64, len(symbols)),
		RawValues: make(map[string]float64, len(symbols)),
		Cash:      capital,
		Total:     capital,
		RawTotal:  capital,
	}
	for _, s := range symbols {
		row.Values[s] = 0
		row.RawValues[s] = 0
	}
	return row
}
