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
)

// fetchCmd holds the flags for the 'fetch' subcommand.
type fetchCmd struct {
	config     string
	tradesFile string
	output     string
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetch live quotes for every symbol in the ledger" }
func (*fetchCmd) Usage() string {
	return `pbk fetch [-c <config>] [-l <trades.csv>] [-o <prices.json>]

  Fetches the last close for every symbol in the trade ledger and writes the
  price snapshot consumed by 'pbk pnl'.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.config, "c", "", "Config file (default pnlbook.yaml if present)")
	f.StringVar(&c.tradesFile, "l", "", "Trade ledger CSV, overrides the configured one")
	f.StringVar(&c.output, "o", "", "Output price snapshot file, overrides the configured one")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig(c.config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	logger := newLogger(cfg.Debug)
	defer logger.Sync()

	trades, anomalies, err := loadTrades(cfg, c.tradesFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	logAnomalies(logger, anomalies)

	symbols := symbolsOf(trades)
	client := quote.New(cfg.Quote.BaseURL, cfg.Quote.APIKey, logger)
	prices := client.LastAll(ctx, symbols)
	logger.Info("quotes fetched", zap.Int("requested", len(symbols)), zap.Int("received", len(prices)))

	path := cfg.PricesFile
	if c.output != "" {
		path = c.output
	}
	out, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot create price snapshot %q: %v\n", path, err)
		return subcommands.ExitFailure
	}
	defer out.Close()
	if err := pnlbook.ExportPrices(out, prices); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
