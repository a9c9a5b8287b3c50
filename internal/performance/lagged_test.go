package performance

import (
	"math"
	"testing"
	"time"

	"backtest-go/internal/data"
)

func laggedBars(closes []float64) []data.Bar {
	out := make([]data.Bar, len(closes))
	for i, c := range closes {
		out[i] = data.Bar{
			Ts:       time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			AdjClose: c,
			Volume:   1000,
		}
	}
	return out
}

func TestLaggedSeriesRows(t *testing.T) {
	closes := []float64{100, 101, 102, 100, 103, 104, 105}
	rows := LaggedSeries(laggedBars(closes), 2)

	// Rows start at index lags+1 = 3.
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	first := rows[0]
	if !first.Ts.Equal(time.Date(2020, 1, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected first row timestamp %v", first.Ts)
	}
	wantToday := (100.0/102.0 - 1) * 100
	if math.Abs(first.Today-wantToday) > 1e-12 {
		t.Fatalf("expected today %.6f, got %.6f", wantToday, first.Today)
	}
	if len(first.Lags) != 2 {
		t.Fatalf("expected 2 lags, got %d", len(first.Lags))
	}
	wantLag1 := (102.0/101.0 - 1) * 100
	if math.Abs(first.Lags[0]-wantLag1) > 1e-12 {
		t.Fatalf("expected lag1 %.6f, got %.6f", wantLag1, first.Lags[0])
	}
	if first.Direction != -1 {
		t.Fatalf("down day should have direction -1, got %.0f", first.Direction)
	}
	if rows[1].Direction != 1 {
		t.Fatalf("up day should have direction 1, got %.0f", rows[1].Direction)
	}
}

func TestLaggedSeriesEpsilon(t *testing.T) {
	closes := []float64{100, 100, 100, 100, 100}
	rows := LaggedSeries(laggedBars(closes), 1)
	if len(rows) == 0 {
		t.Fatal("expected rows for flat series")
	}
	for _, r := range rows {
		if r.Today != epsilonReturn {
			t.Fatalf("flat return should be replaced with epsilon, got %v", r.Today)
		}
		if r.Direction != 1 {
			t.Fatalf("epsilon return is positive, direction should be 1, got %.0f", r.Direction)
		}
	}
}

func TestLaggedSeriesSkipsNaN(t *testing.T) {
	bars := laggedBars([]float64{100, 101, 102, 103, 104})
	bars[0].AdjClose = math.NaN()
	bars[1].AdjClose = math.NaN()
	rows := LaggedSeries(bars, 1)

	// returns[2] is NaN (prior bar NaN), so the first valid row needs both
	// returns[i] and returns[i-1] real: index 4 only.
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if !rows[0].Ts.Equal(bars[4].Ts) {
		t.Fatalf("unexpected row timestamp %v", rows[0].Ts)
	}
}
