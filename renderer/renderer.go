// Package renderer turns computed P&L results into human-readable markdown.
// It only reads result values; all calculation stays in the engine.
package renderer

import (
	"fmt"
	"strings"

	"github.com/pnlbook/pnlbook"
)

// PnLMarkdown renders the full result set as a markdown report: one row per
// instrument and method, options summarized on their parent's row.
func PnLMarkdown(results []pnlbook.InstrumentRollup, asOf pnlbook.Date) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# P&L Report as of %s\n\n", asOf)

	fmt.Fprintln(&b, "| Symbol | Method | Realized | Unrealized | Total | Position | Avg Cost | Return |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|---:|---:|")
	for _, r := range results {
		writeMethodRow(&b, r.Symbol, pnlbook.Real, r.Real)
		writeMethodRow(&b, "", pnlbook.AverageCost, r.AverageCost)
		writeMethodRow(&b, "", pnlbook.FIFO, r.FIFO)
		writeMethodRow(&b, "", pnlbook.LIFO, r.LIFO)
	}

	optioned := withOptions(results)
	if len(optioned) > 0 {
		fmt.Fprint(&b, "\n## Options Rollup\n\n")
		fmt.Fprintln(&b, "| Underlying | Contracts | Options P&L |")
		fmt.Fprintln(&b, "|:---|---:|---:|")
		for _, r := range optioned {
			fmt.Fprintf(&b, "| %s | %d | %s |\n", r.Symbol, r.OptionsCount, r.OptionsPnL.SignedString())
		}
	}

	return b.String()
}

// OpenLotsMarkdown renders the cheapest-remaining-lot view of the real method.
func OpenLotsMarkdown(results []pnlbook.InstrumentRollup) string {
	var b strings.Builder

	fmt.Fprint(&b, "## Open Lots\n\n")
	fmt.Fprintln(&b, "| Symbol | Lowest Open Buy | Days Ago |")
	fmt.Fprintln(&b, "|:---|---:|---:|")
	for _, r := range results {
		if !r.Real.Position.IsPositive() {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %d |\n", r.Symbol, r.OpenLots.LowestOpenBuy, r.OpenLots.LowestOpenBuyDaysAgo)
	}
	return b.String()
}

func writeMethodRow(b *strings.Builder, symbol string, method pnlbook.AccountingMethod, r pnlbook.PositionResult) {
	fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
		symbol,
		method,
		r.Realized.SignedString(),
		r.Unrealized.SignedString(),
		r.Total.SignedString(),
		r.Position,
		r.AvgCost,
		r.Return.SignedString(),
	)
}

func withOptions(results []pnlbook.InstrumentRollup) []pnlbook.InstrumentRollup {
	var kept []pnlbook.InstrumentRollup
	for _, r := range results {
		if r.OptionsCount > 0 {
			kept = append(kept, r)
		}
	}
	return kept
}
