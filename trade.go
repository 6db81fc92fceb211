package pnlbook

import (
	"fmt"
	"sort"
)

// Trade is one normalized ledger row. Quantity, price and amount are
// non-negative magnitudes; direction is carried solely by Buy.
// A Trade is immutable once produced; the engine only reads it.
type Trade struct {
	Symbol      string   `json:"symbol"`
	Date        Date     `json:"date"`
	Quantity    Quantity `json:"quantity"`
	Price       Money    `json:"price"`
	Amount      Money    `json:"amount"` // quantity x price, sign-normalized
	Buy         bool     `json:"isBuy"`
	Option      bool     `json:"isOption"`
	Description string   `json:"description"`
}

// check reports why a trade cannot be processed, or nil.
func (t Trade) check() error {
	if t.Symbol == "" {
		return fmt.Errorf("trade has no symbol")
	}
	if t.Date.IsZero() {
		return fmt.Errorf("trade %q has no date", t.Symbol)
	}
	if t.Quantity.IsNegative() {
		return fmt.Errorf("trade %q has negative quantity %s", t.Symbol, t.Quantity)
	}
	if t.Price.IsNegative() {
		return fmt.Errorf("trade %q has negative price %s", t.Symbol, t.Price)
	}
	return nil
}

// IncomeItem is a dividend or interest record. Dividends add to, and interest
// subtracts from, the real method's realized figure.
type IncomeItem struct {
	Symbol   string `json:"symbol"`
	Date     Date   `json:"date"`
	Amount   Money  `json:"amount"`
	Interest bool   `json:"isInterest"`
}

// Anomaly is a data-quality issue found during a calculation. Anomalies never
// abort the batch; the offending record is skipped and the calculation
// continues. Callers decide whether and how to surface them.
type Anomaly struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

func (a Anomaly) String() string { return fmt.Sprintf("%s: %s", a.Symbol, a.Reason) }

// groupBySymbol partitions valid trades by symbol, in tape order, reporting
// invalid ones as anomalies. Symbols with zero valid trades are simply absent.
func groupBySymbol(trades []Trade) (map[string][]Trade, []Anomaly) {
	groups := make(map[string][]Trade)
	var anomalies []Anomaly
	for _, t := range trades {
		if err := t.check(); err != nil {
			anomalies = append(anomalies, Anomaly{Symbol: t.Symbol, Reason: err.Error()})
			continue
		}
		groups[t.Symbol] = append(groups[t.Symbol], t)
	}
	return groups, anomalies
}

// sortByDate orders trades chronologically, preserving tape order within a day.
func sortByDate(trades []Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Date.Before(trades[j].Date)
	})
}
