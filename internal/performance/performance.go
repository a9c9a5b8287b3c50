// Package performance turns a holdings history into returns, an equity curve,
// and summary statistics.
package performance

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"time"
)

// Curve holds the derived per-tick series for one run. Index 0 corresponds to
// the initial capital-only holdings entry.
type Curve struct {
	Ts       []time.Time
	Total    []float64
	Returns  []float64
	Equity   []float64
	Drawdown []float64
}

// Summary is the headline statistics tuple for a run.
type Summary struct {
	TotalReturnPct   float64
	SharpeRatio      float64
	MaxDrawdownPct   float64
	DrawdownDuration int
}

// drawdownEpsilon absorbs the rounding left by rebuilding equity as a
// cumulative product of returns, so a total that recovers exactly to its
// prior peak reads as zero drawdown.
const drawdownEpsilon = 1e-12

// NewCurve derives returns, the cumulative equity curve, and drawdowns from
// the equity totals. The first return is forced to zero.
func NewCurve(ts []time.Time, totals []float64) *Curve {
	n := len(totals)
	c := &Curve{
		Ts:       ts,
		Total:    totals,
		Returns:  make([]float64, n),
		Equity:   make([]float64, n),
		Drawdown: make([]float64, n),
	}
	equity := 1.0
	for i := 0; i < n; i++ {
		if i == 0 || totals[i-1] == 0 {
			c.Returns[i] = 0
		} else {
			c.Returns[i] = totals[i]/totals[i-1] - 1
		}
		equity *= 1 + c.Returns[i]
		c.Equity[i] = equity
	}

	peak := math.Inf(-1)
	for i, eq := range c.Equity {
		if eq > peak {
			peak = eq
		}
		if peak > 0 {
			if dd := (peak - eq) / peak; dd > drawdownEpsilon {
				c.Drawdown[i] = dd
			}
		}
	}
	return c
}

// SharpeRatio annualizes the mean/volatility ratio of per-period returns.
// periods is the number of trading periods per year, 252 for daily bars.
func SharpeRatio(returns []float64, periods int) float64 {
	if len(returns) == 0 || periods <= 0 {
		return 0
	}
	m := mean(returns)
	sd := stdev(returns, m)
	if sd == 0 {
		return 0
	}
	return math.Sqrt(float64(periods)) * m / sd
}

// MaxDrawdown returns the deepest drawdown and its duration, the longest run
// of consecutive ticks spent below the running peak.
func (c *Curve) MaxDrawdown() (float64, int) {
	var maxDD float64
	var duration, run int
	for _, dd := range c.Drawdown {
		if dd > maxDD {
			maxDD = dd
		}
		if dd > 0 {
			run++
			if run > duration {
				duration = run
			}
		} else {
			run = 0
		}
	}
	return maxDD, duration
}

// Summary computes the headline statistics for the run.
func (c *Curve) Summary(periods int) Summary {
	var totalReturn float64
	if len(c.Equity) > 0 {
		totalReturn = (c.Equity[len(c.Equity)-1] - 1) * 100
	}
	maxDD, duration := c.MaxDrawdown()
	return Summary{
		TotalReturnPct:   totalReturn,
		SharpeRatio:      SharpeRatio(c.Returns, periods),
		MaxDrawdownPct:   maxDD * 100,
		DrawdownDuration: duration,
	}
}

// WriteCSV exports the curve as a table of timestamp to derived series.
func (c *Curve) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"timestamp", "total", "returns", "equity_curve", "drawdown"}); err != nil {
		return err
	}
	for i := range c.Total {
		record := []string{
			c.Ts[i].Format("2006-01-02"),
			fmt.Sprintf("%.6f", c.Total[i]),
			fmt.Sprintf("%.8f", c.Returns[i]),
			fmt.Sprintf("%.8f", c.Equity[i]),
			fmt.Sprintf("%.8f", c.Drawdown[i]),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
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

// stdev is the population standard deviation.
func stdev(values []float64, m float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
