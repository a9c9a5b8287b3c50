package strategy

import (
	"math"
	"testing"

	"backtest-go/internal/bus"
	"backtest-go/internal/data"
	"backtest-go/internal/event"
)

// priceWalk builds a bar series from daily simple returns, starting at start.
func priceWalk(start float64, returns []float64) []data.Bar {
	out := make([]data.Bar, len(returns)+1)
	price := start
	out[0] = data.Bar{Ts: day(1), Open: price, High: price, Low: price, Close: price, Volume: 1000, AdjFactor: 1}
	for i, r := range returns {
		price *= 1 + r
		out[i+1] = data.Bar{Ts: day(i + 2), Open: price, High: price, Low: price, Close: price, Volume: 1000, AdjFactor: 1}
	}
	return out
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestMomentumRanksAndRotates(t *testing.T) {
	// A rallies then sells off; B does the opposite. With topN=1 the strategy
	// should hold A first, then rotate into B.
	up := append(repeat(0.01, 7), repeat(-0.01, 6)...)
	down := append(repeat(-0.01, 7), repeat(0.01, 6)...)

	q := bus.NewQueue()
	h, err := data.NewHistory(q, map[string][]data.Bar{
		"AAA": priceWalk(100, up),
		"BBB": priceWalk(100, down),
	})
	if err != nil {
		t.Fatalf("NewHistory returned error: %v", err)
	}
	strat := NewMomentum(h, q, Params{
		Quantity:       500,
		WarmupTicks:    4,
		RebalanceEvery: 2,
		Lookback:       5,
		TopN:           1,
	})

	signals := replay(t, q, h, strat)
	if len(signals) < 3 {
		t.Fatalf("expected at least long/exit/long, got %+v", signals)
	}
	if signals[0].Direction != event.Long || signals[0].Symbol != "AAA" {
		t.Fatalf("expected initial LONG AAA, got %+v", signals[0])
	}

	var sawExitA, sawLongB bool
	for _, sig := range signals[1:] {
		if sig.Symbol == "AAA" && sig.Direction == event.Exit {
			sawExitA = true
		}
		if sig.Symbol == "BBB" && sig.Direction == event.Long {
			sawLongB = true
		}
	}
	if !sawExitA || !sawLongB {
		t.Fatalf("expected rotation out of AAA into BBB, got %+v", signals)
	}
}

func TestMomentumRespectsWarmup(t *testing.T) {
	q := bus.NewQueue()
	h, err := data.NewHistory(q, map[string][]data.Bar{
		"AAA": priceWalk(100, repeat(0.01, 8)),
	})
	if err != nil {
		t.Fatalf("NewHistory returned error: %v", err)
	}
	strat := NewMomentum(h, q, Params{
		Quantity:       500,
		WarmupTicks:    100, // longer than the series
		RebalanceEvery: 2,
		Lookback:       3,
		TopN:           1,
	})

	signals := replay(t, q, h, strat)
	if len(signals) != 0 {
		t.Fatalf("expected no signals during warmup, got %+v", signals)
	}
}

func TestMomentumSkipsRecentReturns(t *testing.T) {
	// AAA trends up cleanly, then crashes in the last two ticks; BBB fades
	// early and rallies late. Ranking on the older part of the window keeps
	// AAA on top; ranking on the freshest returns flips the winner to BBB.
	aaa := []float64{0, 0, 0.01, 0.02, 0.03, -0.1, -0.1}
	bbb := []float64{0, 0, 0.01, 0.005, 0.002, 0.01, 0.02}

	run := func(skip int) []event.Signal {
		q := bus.NewQueue()
		h, err := data.NewHistory(q, map[string][]data.Bar{
			"AAA": priceWalk(100, aaa),
			"BBB": priceWalk(100, bbb),
		})
		if err != nil {
			t.Fatalf("NewHistory returned error: %v", err)
		}
		strat := NewMomentum(h, q, Params{
			Quantity:       500,
			WarmupTicks:    4,
			RebalanceEvery: 8,
			Lookback:       3,
			SkipRecent:     skip,
			TopN:           1,
		})
		return replay(t, q, h, strat)
	}

	withSkip := run(2)
	if len(withSkip) != 1 || withSkip[0].Symbol != "AAA" || withSkip[0].Direction != event.Long {
		t.Fatalf("expected LONG AAA when the crash ticks are excluded, got %+v", withSkip)
	}
	withoutSkip := run(0)
	if len(withoutSkip) != 1 || withoutSkip[0].Symbol != "BBB" || withoutSkip[0].Direction != event.Long {
		t.Fatalf("expected LONG BBB on the freshest window, got %+v", withoutSkip)
	}
}

func TestTrendTValue(t *testing.T) {
	if v := trendTValue([]float64{0.01, 0.012, 0.014, 0.016, 0.018}); v <= 0 {
		t.Fatalf("expected positive t-value for uptrend, got %.4f", v)
	}
	if v := trendTValue([]float64{-0.01, -0.012, -0.014, -0.016, -0.018}); v >= 0 {
		t.Fatalf("expected negative t-value for downtrend, got %.4f", v)
	}
	if v := trendTValue([]float64{0.01, 0.02}); !math.IsNaN(v) {
		t.Fatalf("expected NaN for short input, got %.4f", v)
	}
}
