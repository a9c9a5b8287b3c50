package performance

import (
	"math"
	"time"

	"backtest-go/internal/data"
)

// LaggedRow is one observation of the lagged-returns feature table used to
// train direction classifiers on top of backtest output.
type LaggedRow struct {
	Ts        time.Time
	Today     float64 // percent return of the adjusted close
	Volume    float64
	Lags      []float64 // percent returns of the prior lag periods
	Direction float64   // sign of Today
}

// epsilonReturn replaces zero-ish returns so downstream classifiers never see
// an exactly zero feature.
const epsilonReturn = 0.0001

// LaggedSeries builds the lagged percentage-return table from a bar series.
// Rows begin once lags+1 observations are available.
func LaggedSeries(bars []data.Bar, lags int) []LaggedRow {
	if lags <= 0 {
		lags = 5
	}
	returns := make([]float64, len(bars))
	for i := range bars {
		if i == 0 || bars[i-1].AdjClose == 0 || math.IsNaN(bars[i-1].AdjClose) {
			returns[i] = math.NaN()
			continue
		}
		r := (bars[i].AdjClose/bars[i-1].AdjClose - 1) * 100
		if math.Abs(r) < epsilonReturn {
			r = epsilonReturn
		}
		returns[i] = r
	}

	var rows []LaggedRow
	for i := lags + 1; i < len(bars); i++ {
		today := returns[i]
		if math.IsNaN(today) {
			continue
		}
		lagged := make([]float64, 0, lags)
		valid := true
		for k := 1; k <= lags; k++ {
			lag := returns[i-k]
			if math.IsNaN(lag) {
				valid = false
				break
			}
			lagged = append(lagged, lag)
		}
		if !valid {
			continue
		}
		rows = append(rows, LaggedRow{
			Ts:        bars[i].Ts,
			Today:     today,
			Volume:    bars[i].Volume,
			Lags:      lagged,
			Direction: sign(today),
		})
	}
	return rows
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
