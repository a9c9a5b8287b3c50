// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string
	Env         string
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Run describes one simulation: the instrument universe, the bar archive, and capital.
type Run struct {
	Symbols        []string
	CSVDir         string  `yaml:"csv_dir"`
	Start          string  `yaml:"start"`
	End            string  `yaml:"end"`
	InitialCapital float64 `yaml:"initial_capital"`
	Frequency      int     `yaml:"frequency"` // trading periods per year, used only for annualization
}

// StrategyParams groups tunable knobs for a strategy implementation.
type StrategyParams struct {
	ShortWindow    int     `yaml:"short_window"`
	LongWindow     int     `yaml:"long_window"`
	Quantity       float64 `yaml:"quantity"`
	WarmupTicks    int     `yaml:"warmup_ticks"`
	RebalanceEvery int     `yaml:"rebalance_every"`
	Lookback       int     `yaml:"lookback"`
	SkipRecent     int     `yaml:"skip_recent"`
	TopN           int     `yaml:"top_n"`
}

// Strategy specifies which strategy is active along with the parameter bundle.
type Strategy struct {
	Mode   string
	Params StrategyParams
}

// Portfolio holds the order smoothing policy settings.
type Portfolio struct {
	SmoothWindow int `yaml:"smooth_window"`
}

// Risk encodes guard-rails for how much size one signal may request.
type Risk struct {
	MaxNotionalPerTrade float64 `yaml:"max_notional_per_trade"`
	MaxQuantityPerTrade float64 `yaml:"max_quantity_per_trade"`
}

// Output configures where run artifacts are written.
type Output struct {
	EquityCurvePath string `yaml:"equity_curve_path"`
	FillsPath       string `yaml:"fills_path"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App       App       `yaml:"app"`
	Run       Run       `yaml:"run"`
	Strategy  Strategy  `yaml:"strategy"`
	Portfolio Portfolio `yaml:"portfolio"`
	Risk      Risk      `yaml:"risk"`
	Output    Output    `yaml:"output"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
