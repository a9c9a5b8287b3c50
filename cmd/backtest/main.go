// Binary backtest replays a CSV bar archive through the configured strategy
// and writes the equity curve and fill ledger for the run.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"backtest-go/internal/backtest"
	"backtest-go/internal/bus"
	"backtest-go/internal/config"
	"backtest-go/internal/data"
	"backtest-go/internal/execution"
	"backtest-go/internal/ledger"
	"backtest-go/internal/metrics"
	"backtest-go/internal/performance"
	"backtest-go/internal/portfolio"
	"backtest-go/internal/risk"
	"backtest-go/internal/strategy"
	"backtest-go/internal/util"
)

func main() {
	_ = godotenv.Load() // best-effort

	cfgPath := flag.String("config", "internal/config/config.yaml", "path to the run configuration")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log := util.NewLogger("info")
		log.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger(cfg.App.LogLevel)

	if cfg.App.MetricsAddr != "" {
		_ = metrics.Serve(cfg.App.MetricsAddr)
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}

	series, err := data.LoadCSVDir(cfg.Run.CSVDir, cfg.Run.Symbols)
	if err != nil {
		log.Fatal().Err(err).Msg("load bars")
	}
	start, err := parseDate(cfg.Run.Start)
	if err != nil {
		log.Fatal().Err(err).Msg("parse run.start")
	}
	end, err := parseDate(cfg.Run.End)
	if err != nil {
		log.Fatal().Err(err).Msg("parse run.end")
	}
	if !start.IsZero() || !end.IsZero() {
		series = data.Clip(series, start, end)
	}

	events := bus.NewQueue()
	hist, err := data.NewHistory(events, series)
	if err != nil {
		log.Fatal().Err(err).Msg("build history")
	}
	if start.IsZero() {
		if cal := hist.Calendar(); len(cal) > 0 {
			start = cal[0]
		}
	}

	strat := strategy.Build(cfg.Strategy.Mode, hist, events, strategy.Params{
		ShortWindow:    cfg.Strategy.Params.ShortWindow,
		LongWindow:     cfg.Strategy.Params.LongWindow,
		Quantity:       cfg.Strategy.Params.Quantity,
		WarmupTicks:    cfg.Strategy.Params.WarmupTicks,
		RebalanceEvery: cfg.Strategy.Params.RebalanceEvery,
		Lookback:       cfg.Strategy.Params.Lookback,
		SkipRecent:     cfg.Strategy.Params.SkipRecent,
		TopN:           cfg.Strategy.Params.TopN,
	})

	opts := []portfolio.Option{
		portfolio.WithLogger(log),
		portfolio.WithSmoothWindow(cfg.Portfolio.SmoothWindow),
		portfolio.WithLimits(risk.Limits{
			MaxNotionalPerTrade: cfg.Risk.MaxNotionalPerTrade,
			MaxQuantityPerTrade: cfg.Risk.MaxQuantityPerTrade,
		}),
	}
	var recorder *ledger.JSONLRecorder
	if cfg.Output.FillsPath != "" {
		recorder, err = ledger.NewJSONLRecorder(cfg.Output.FillsPath)
		if err != nil {
			log.Fatal().Err(err).Msg("open fills ledger")
		}
		defer recorder.Close()
		opts = append(opts, portfolio.WithRecorder(recorder))
	}
	port := portfolio.New(hist, events, start, cfg.Run.InitialCapital, opts...)
	sim := execution.NewSimulator(hist, events, log)

	engine := backtest.NewEngine(hist, events, strat, port, sim, backtest.WithLogger(log))
	stats, err := engine.Run()
	if err != nil {
		log.Fatal().Err(err).Msg("backtest incomplete")
	}

	ts, totals := port.Totals()
	curve := performance.NewCurve(ts, totals)
	periods := cfg.Run.Frequency
	if periods <= 0 {
		periods = 252
	}
	summary := curve.Summary(periods)

	fmt.Printf("strategy        %s\n", strat.Name())
	fmt.Printf("ticks           %d\n", stats.Ticks)
	fmt.Printf("fills           %d\n", stats.Fills)
	fmt.Printf("total return    %.2f%%\n", summary.TotalReturnPct)
	fmt.Printf("sharpe ratio    %.2f\n", summary.SharpeRatio)
	fmt.Printf("max drawdown    %.2f%%\n", summary.MaxDrawdownPct)
	fmt.Printf("dd duration     %d\n", summary.DrawdownDuration)
	fmt.Printf("commission      %.2f\n", port.Commission())

	if cfg.Output.EquityCurvePath != "" {
		if err := writeCurve(cfg.Output.EquityCurvePath, curve); err != nil {
			log.Fatal().Err(err).Msg("write equity curve")
		}
		log.Info().Str("path", cfg.Output.EquityCurvePath).Msg("equity curve written")
	}
}

// parseDate treats an empty string as an open bound; anything else must be a
// calendar date, so a typo in the config cannot silently un-clip the run.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

func writeCurve(path string, curve *performance.Curve) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return curve.WriteCSV(file)
}
