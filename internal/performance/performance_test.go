package performance

import (
	"math"
	"strings"
	"testing"
	"time"
)

func timeline(n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
	}
	return out
}

func TestNewCurveReturnsAndEquity(t *testing.T) {
	totals := []float64{100, 110, 99, 99}
	c := NewCurve(timeline(len(totals)), totals)

	if c.Returns[0] != 0 {
		t.Fatalf("first return must be forced to 0, got %.6f", c.Returns[0])
	}
	if math.Abs(c.Returns[1]-0.10) > 1e-12 {
		t.Fatalf("expected return 0.10, got %.6f", c.Returns[1])
	}
	if math.Abs(c.Returns[2]-(-0.10)) > 1e-12 {
		t.Fatalf("expected return -0.10, got %.6f", c.Returns[2])
	}
	if c.Returns[3] != 0 {
		t.Fatalf("expected flat return, got %.6f", c.Returns[3])
	}
	// equity = 1 * 1.10 * 0.90 = 0.99
	if math.Abs(c.Equity[3]-0.99) > 1e-12 {
		t.Fatalf("expected equity 0.99, got %.6f", c.Equity[3])
	}
}

func TestDrawdownSeries(t *testing.T) {
	totals := []float64{100, 120, 90, 120, 132}
	c := NewCurve(timeline(len(totals)), totals)

	if c.Drawdown[0] != 0 || c.Drawdown[1] != 0 {
		t.Fatalf("no drawdown while making highs: %v", c.Drawdown)
	}
	if math.Abs(c.Drawdown[2]-0.25) > 1e-12 {
		t.Fatalf("expected drawdown 0.25, got %.6f", c.Drawdown[2])
	}
	// Index 3 recovers exactly to the prior peak; the cumulative-product
	// equity rebuild leaves only rounding there, which must not register.
	if c.Drawdown[3] != 0 || c.Drawdown[4] != 0 {
		t.Fatalf("recovered curve should have zero drawdown: %v", c.Drawdown)
	}
	if _, duration := c.MaxDrawdown(); duration != 1 {
		t.Fatalf("only the trough tick is underwater, expected duration 1, got %d", duration)
	}
}

func TestMaxDrawdownDuration(t *testing.T) {
	// Rise, fall monotonically for 10 ticks, then jump above the old peak.
	totals := []float64{100, 110, 120}
	for i := 1; i <= 10; i++ {
		totals = append(totals, 120-float64(i))
	}
	totals = append(totals, 130)
	c := NewCurve(timeline(len(totals)), totals)

	maxDD, duration := c.MaxDrawdown()
	if duration != 10 {
		t.Fatalf("expected drawdown duration 10, got %d", duration)
	}
	want := 10.0 / 120.0
	if math.Abs(maxDD-want) > 1e-12 {
		t.Fatalf("expected max drawdown %.6f, got %.6f", want, maxDD)
	}
}

func TestSharpeRatio(t *testing.T) {
	if got := SharpeRatio(nil, 252); got != 0 {
		t.Fatalf("expected 0 for empty returns, got %.4f", got)
	}
	if got := SharpeRatio([]float64{0.01, 0.01, 0.01}, 252); got != 0 {
		t.Fatalf("expected 0 for zero-variance returns, got %.4f", got)
	}

	returns := []float64{0.01, -0.005, 0.02, 0.0, -0.01}
	got := SharpeRatio(returns, 252)
	m := mean(returns)
	sd := stdev(returns, m)
	want := math.Sqrt(252) * m / sd
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected sharpe %.6f, got %.6f", want, got)
	}
	if got <= 0 {
		t.Fatalf("positive-drift returns should have positive sharpe, got %.4f", got)
	}
}

func TestSummary(t *testing.T) {
	totals := []float64{100, 110, 121}
	c := NewCurve(timeline(len(totals)), totals)
	s := c.Summary(252)

	if math.Abs(s.TotalReturnPct-21.0) > 1e-9 {
		t.Fatalf("expected total return 21%%, got %.4f", s.TotalReturnPct)
	}
	if s.MaxDrawdownPct != 0 || s.DrawdownDuration != 0 {
		t.Fatalf("monotone curve should have no drawdown: %+v", s)
	}
}

func TestWriteCSV(t *testing.T) {
	totals := []float64{100, 110}
	c := NewCurve(timeline(len(totals)), totals)

	var sb strings.Builder
	if err := c.WriteCSV(&sb); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}
	out := sb.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "timestamp,total,returns,equity_curve,drawdown") {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "2020-01-01,100.000000,0.00000000,1.00000000") {
		t.Fatalf("unexpected first row: %s", lines[1])
	}
}
