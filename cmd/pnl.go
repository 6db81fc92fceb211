package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/pnlbook/pnlbook"
	"github.com/pnlbook/pnlbook/quote"
	"github.com/pnlbook/pnlbook/renderer"
	"github.com/pnlbook/pnlbook/store"
)

// pnlCmd holds the flags for the 'pnl' subcommand.
type pnlCmd struct {
	config     string
	tradesFile string
	pricesFile string
	asOf       string
	fetch      bool
	save       bool
	jsonOut    bool
	openLots   bool
}

func (*pnlCmd) Name() string     { return "pnl" }
func (*pnlCmd) Synopsis() string { return "realized and unrealized P&L under all accounting methods" }
func (*pnlCmd) Usage() string {
	return `pbk pnl [-c <config>] [-l <trades.csv>] [-prices <prices.json>] [-d <date>] [-fetch] [-save] [-json] [-lots]

  Calculates per-instrument P&L from the trade ledger under the real, average
  cost, FIFO and LIFO conventions, with options rolled up into their
  underlying. Expiration is evaluated against the -d as-of date, so stored
  history replays deterministically.
`
}

func (c *pnlCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.config, "c", "", "Config file (default pnlbook.yaml if present)")
	f.StringVar(&c.tradesFile, "l", "", "Trade ledger CSV, overrides the configured one")
	f.StringVar(&c.pricesFile, "prices", "", "Price snapshot JSON, overrides the configured one")
	f.StringVar(&c.asOf, "d", "", "As-of date for the calculation (defaults to today)")
	f.BoolVar(&c.fetch, "fetch", false, "Fetch live quotes instead of reading the price snapshot")
	f.BoolVar(&c.save, "save", false, "Persist the result set in the snapshot store")
	f.BoolVar(&c.jsonOut, "json", false, "Emit JSONL instead of markdown")
	f.BoolVar(&c.openLots, "lots", false, "Also render the open-lots view")
}

func (c *pnlCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig(c.config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	logger := newLogger(cfg.Debug)
	defer logger.Sync()

	asOf, err := parseAsOf(c.asOf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing as-of date: %v\n", err)
		return subcommands.ExitUsageError
	}

	trades, importAnomalies, err := loadTrades(cfg, c.tradesFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	logAnomalies(logger, importAnomalies)

	income, incomeAnomalies, err := loadIncome(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	logAnomalies(logger, incomeAnomalies)

	var prices pnlbook.PriceMap
	if c.fetch {
		client := quote.New(cfg.Quote.BaseURL, cfg.Quote.APIKey, logger)
		prices = pnlbook.PriceMapFromFloats(client.LastAll(ctx, symbolsOf(trades)))
	} else {
		prices, err = loadPrices(cfg, c.pricesFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}

	results, anomalies, err := pnlbook.ComputePnL(trades, prices, asOf, income)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing P&L: %v\n", err)
		return subcommands.ExitFailure
	}
	logAnomalies(logger, anomalies)

	if c.save {
		db, err := store.Open(cfg.DBPath, logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		defer db.Close()
		if err := db.Save(asOf, results); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}

	if c.jsonOut {
		if err := pnlbook.ExportResults(os.Stdout, results); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	fmt.Println(renderer.PnLMarkdown(results, asOf))
	if c.openLots {
		fmt.Println(renderer.OpenLotsMarkdown(results))
	}
	logger.Info("calculation done", zap.Int("instruments", len(results)), zap.Int("anomalies", len(anomalies)))
	return subcommands.ExitSuccess
}
