package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/pnlbook/pnlbook"
)

// Commands lists every subcommand the pbk binary registers.
var Commands = []subcommands.Command{
	&pnlCmd{},
	&fetchCmd{},
	&snapshotsCmd{},
	&serveCmd{},
}

// newLogger builds the CLI logger. Debug switches to the development config.
func newLogger(debug bool) *zap.Logger {
	var logger *zap.Logger
	var err error
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// loadTrades imports the trade CSV and applies configured split ratios.
// Import anomalies are returned for the caller to log.
func loadTrades(cfg *Config, override string) ([]pnlbook.Trade, []pnlbook.Anomaly, error) {
	path := cfg.TradesFile
	if override != "" {
		path = override
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open trades file %q: %w", path, err)
	}
	defer f.Close()

	trades, anomalies, err := pnlbook.ImportTrades(f)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot import trades from %q: %w", path, err)
	}
	return pnlbook.AdjustForSplits(trades, cfg.SplitRatios()), anomalies, nil
}

// loadIncome imports the configured dividend/interest CSV, if any.
func loadIncome(cfg *Config) ([]pnlbook.IncomeItem, []pnlbook.Anomaly, error) {
	if cfg.IncomeFile == "" {
		return nil, nil, nil
	}
	f, err := os.Open(cfg.IncomeFile)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open income file %q: %w", cfg.IncomeFile, err)
	}
	defer f.Close()
	return pnlbook.ImportIncome(f)
}

// loadPrices reads the configured price snapshot. A missing file yields an
// empty map: the engine treats missing prices as zero.
func loadPrices(cfg *Config, override string) (pnlbook.PriceMap, error) {
	path := cfg.PricesFile
	if override != "" {
		path = override
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return pnlbook.PriceMap{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open prices file %q: %w", path, err)
	}
	defer f.Close()
	return pnlbook.ImportPrices(f)
}

// symbolsOf returns the unique symbols of the tape, sorted.
func symbolsOf(trades []pnlbook.Trade) []string {
	seen := make(map[string]bool)
	var symbols []string
	for _, t := range trades {
		if !seen[t.Symbol] {
			seen[t.Symbol] = true
			symbols = append(symbols, t.Symbol)
		}
	}
	sort.Strings(symbols)
	return symbols
}

// logAnomalies reports skipped records; they never abort a run.
func logAnomalies(logger *zap.Logger, anomalies []pnlbook.Anomaly) {
	for _, a := range anomalies {
		logger.Warn("record skipped", zap.String("symbol", a.Symbol), zap.String("reason", a.Reason))
	}
}

// parseAsOf resolves the -d flag; empty means today.
func parseAsOf(raw string) (pnlbook.Date, error) {
	if raw == "" {
		return pnlbook.Today(), nil
	}
	return pnlbook.ParseDate(raw)
}
