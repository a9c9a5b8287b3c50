package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Expected column layout of the historical dumps: one file per symbol named
// <symbol>.csv with a header row.
// price_date, ticker, open_price, high_price, low_price, close_price, volume, adj_factor
const csvColumns = 8

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

// LoadCSVDir reads one CSV file per symbol from dir and returns the raw
// per-symbol series, ready for NewHistory to align.
func LoadCSVDir(dir string, symbols []string) (map[string][]Bar, error) {
	series := make(map[string][]Bar, len(symbols))
	for _, s := range symbols {
		bars, err := loadCSVFile(filepath.Join(dir, s+".csv"))
		if err != nil {
			return nil, fmt.Errorf("symbol %s: %w", s, err)
		}
		series[s] = bars
	}
	return series, nil
}

// Clip restricts every series to bars within [start, end]. A zero start or
// end leaves that side unbounded.
func Clip(series map[string][]Bar, start, end time.Time) map[string][]Bar {
	out := make(map[string][]Bar, len(series))
	for s, bars := range series {
		kept := make([]Bar, 0, len(bars))
		for _, b := range bars {
			if !start.IsZero() && b.Ts.Before(start) {
				continue
			}
			if !end.IsZero() && b.Ts.After(end) {
				continue
			}
			kept = append(kept, b)
		}
		out[s] = kept
	}
	return out
}

func loadCSVFile(path string) ([]Bar, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadBars(file)
}

// ReadBars parses bar records from r, skipping the header row.
func ReadBars(r io.Reader) ([]Bar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = csvColumns
	reader.TrimLeadingSpace = true

	var bars []Bar
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if line == 1 {
			continue // header
		}
		bar, err := parseBar(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bar records found")
	}
	return bars, nil
}

func parseBar(record []string) (Bar, error) {
	ts, err := parseDate(record[0])
	if err != nil {
		return Bar{}, err
	}
	fields := make([]float64, 6)
	for i, col := range record[2:] {
		v, err := strconv.ParseFloat(col, 64)
		if err != nil {
			return Bar{}, fmt.Errorf("column %d: %w", i+2, err)
		}
		fields[i] = v
	}
	return Bar{
		Ts:        ts,
		Open:      fields[0],
		High:      fields[1],
		Low:       fields[2],
		Close:     fields[3],
		Volume:    fields[4],
		AdjFactor: fields[5],
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
