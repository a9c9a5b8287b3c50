// Binary sweep runs the moving-average cross over a grid of window pairs,
// one independent backtest per combination, and prints the results sorted by
// Sharpe ratio.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"backtest-go/internal/backtest"
	"backtest-go/internal/bus"
	"backtest-go/internal/config"
	"backtest-go/internal/data"
	"backtest-go/internal/execution"
	"backtest-go/internal/performance"
	"backtest-go/internal/portfolio"
	"backtest-go/internal/strategy"
	"backtest-go/internal/util"
)

type result struct {
	short   int
	long    int
	summary performance.Summary
	err     error
}

func main() {
	cfgPath := flag.String("config", "internal/config/config.yaml", "path to the run configuration")
	shorts := flag.String("short", "10,20,30,40", "comma-separated short windows")
	longs := flag.String("long", "60,90,120", "comma-separated long windows")
	flag.Parse()

	log := util.NewLogger("info")

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	shortWindows, err := parseWindows(*shorts)
	if err != nil {
		log.Fatal().Err(err).Msg("parse short windows")
	}
	longWindows, err := parseWindows(*longs)
	if err != nil {
		log.Fatal().Err(err).Msg("parse long windows")
	}

	series, err := data.LoadCSVDir(cfg.Run.CSVDir, cfg.Run.Symbols)
	if err != nil {
		log.Fatal().Err(err).Msg("load bars")
	}

	var wg sync.WaitGroup
	results := make(chan result)
	for _, s := range shortWindows {
		for _, l := range longWindows {
			if s >= l {
				continue
			}
			wg.Add(1)
			go func(short, long int) {
				defer wg.Done()
				summary, err := runOne(cfg, series, short, long)
				results <- result{short: short, long: long, summary: summary, err: err}
			}(s, l)
		}
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var table []result
	for r := range results {
		if r.err != nil {
			log.Error().Err(r.err).Int("short", r.short).Int("long", r.long).Msg("run failed")
			continue
		}
		table = append(table, r)
	}
	if len(table) == 0 {
		log.Warn().Msg("no runs completed")
		os.Exit(1)
	}
	sort.Slice(table, func(i, j int) bool { return table[i].summary.SharpeRatio > table[j].summary.SharpeRatio })

	fmt.Printf("%-8s %-8s %12s %10s %12s %10s\n", "short", "long", "return%", "sharpe", "max_dd%", "dd_ticks")
	for _, r := range table {
		fmt.Printf("%-8d %-8d %12.2f %10.2f %12.2f %10d\n",
			r.short, r.long,
			r.summary.TotalReturnPct,
			r.summary.SharpeRatio,
			r.summary.MaxDrawdownPct,
			r.summary.DrawdownDuration,
		)
	}
}

// runOne executes a fully isolated backtest for one window pair. Every run
// gets its own queue, history cursor, portfolio, and simulator so the
// goroutines never share mutable state.
func runOne(cfg *config.Config, series map[string][]data.Bar, short, long int) (performance.Summary, error) {
	events := bus.NewQueue()
	hist, err := data.NewHistory(events, series)
	if err != nil {
		return performance.Summary{}, err
	}
	start := hist.Calendar()[0]

	strat := strategy.NewMovingAverageCross(hist, events, short, long, cfg.Strategy.Params.Quantity)
	port := portfolio.New(hist, events, start, cfg.Run.InitialCapital,
		portfolio.WithSmoothWindow(cfg.Portfolio.SmoothWindow),
	)
	sim := execution.NewSimulator(hist, events, util.NewLogger("error"))

	if _, err := backtest.NewEngine(hist, events, strat, port, sim).Run(); err != nil {
		return performance.Summary{}, err
	}

	ts, totals := port.Totals()
	periods := cfg.Run.Frequency
	if periods <= 0 {
		periods = 252
	}
	return performance.NewCurve(ts, totals).Summary(periods), nil
}

func parseWindows(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("window %q: %w", p, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("window %d must be positive", n)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no windows supplied")
	}
	return out, nil
}
