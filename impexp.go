package pnlbook

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// this file contains the import/export boundary: broker CSV in, result JSONL
// out. It should remain human readable and forgiving: a dirty row is skipped
// with an anomaly, never a failed batch.

// Trade CSV columns, by header name (case-insensitive): symbol, date,
// quantity, price, amount, side (buy/sell), type (stock/option), description.
// amount is optional and defaults to quantity x price.

// ImportTrades reads normalized trades from broker CSV.
func ImportTrades(r io.Reader) ([]Trade, []Anomaly, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	col := indexHeader(header)
	for _, required := range []string{"symbol", "date", "quantity", "price", "side"} {
		if _, ok := col[required]; !ok {
			return nil, nil, fmt.Errorf("trade CSV is missing column %q", required)
		}
	}

	var trades []Trade
	var anomalies []Anomaly
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		trade, err := parseTradeRecord(record, col)
		if err != nil {
			anomalies = append(anomalies, Anomaly{Symbol: field(record, col, "symbol"), Reason: fmt.Sprintf("line %d: %v", line, err)})
			continue
		}
		trades = append(trades, trade)
	}
	return trades, anomalies, nil
}

func parseTradeRecord(record []string, col map[string]int) (Trade, error) {
	symbol := field(record, col, "symbol")
	if symbol == "" {
		return Trade{}, fmt.Errorf("empty symbol")
	}
	on, err := ParseDate(field(record, col, "date"))
	if err != nil {
		return Trade{}, err
	}
	quantity, err := parseNumeric(field(record, col, "quantity"))
	if err != nil {
		return Trade{}, fmt.Errorf("bad quantity: %w", err)
	}
	price, err := parseNumeric(field(record, col, "price"))
	if err != nil {
		return Trade{}, fmt.Errorf("bad price: %w", err)
	}
	amount := quantity.Mul(price)
	if raw := field(record, col, "amount"); raw != "" {
		amount, err = parseNumeric(raw)
		if err != nil {
			return Trade{}, fmt.Errorf("bad amount: %w", err)
		}
	}

	var buy bool
	switch side := strings.ToLower(field(record, col, "side")); side {
	case "buy", "b":
		buy = true
	case "sell", "s":
		buy = false
	default:
		return Trade{}, fmt.Errorf("unknown side %q", side)
	}

	return Trade{
		Symbol:      symbol,
		Date:        on,
		Quantity:    Q(quantity.Abs()),
		Price:       M(price.Abs(), DefaultCurrency),
		Amount:      M(amount.Abs(), DefaultCurrency),
		Buy:         buy,
		Option:      strings.EqualFold(field(record, col, "type"), "option"),
		Description: field(record, col, "description"),
	}, nil
}

// ImportIncome reads dividend and interest records from CSV with columns
// symbol, date, amount, type (dividend/interest).
func ImportIncome(r io.Reader) ([]IncomeItem, []Anomaly, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	col := indexHeader(header)

	var items []IncomeItem
	var anomalies []Anomaly
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		on, err := ParseDate(field(record, col, "date"))
		if err != nil {
			anomalies = append(anomalies, Anomaly{Symbol: field(record, col, "symbol"), Reason: fmt.Sprintf("line %d: %v", line, err)})
			continue
		}
		amount, err := parseNumeric(field(record, col, "amount"))
		if err != nil {
			anomalies = append(anomalies, Anomaly{Symbol: field(record, col, "symbol"), Reason: fmt.Sprintf("line %d: bad amount: %v", line, err)})
			continue
		}
		items = append(items, IncomeItem{
			Symbol:   field(record, col, "symbol"),
			Date:     on,
			Amount:   M(amount.Abs(), DefaultCurrency),
			Interest: strings.EqualFold(field(record, col, "type"), "interest"),
		})
	}
	return items, anomalies, nil
}

// ImportPrices reads a price snapshot: a JSON object of symbol to price.
func ImportPrices(r io.Reader) (PriceMap, error) {
	var raw map[string]float64
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("cannot parse price snapshot: %w", err)
	}
	return PriceMapFromFloats(raw), nil
}

// ExportPrices writes a price snapshot as a JSON object of symbol to price.
func ExportPrices(w io.Writer, prices map[string]float64) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(prices)
}

// ExportResults writes the result set as JSONL, one rollup per line, ready to
// be stored keyed by (as-of date, symbol) or transmitted to a client.
func ExportResults(w io.Writer, results []InstrumentRollup) error {
	enc := json.NewEncoder(w)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("cannot encode result for %q: %w", r.Symbol, err)
		}
	}
	return nil
}

// indexHeader maps lower-cased, trimmed column names to their position.
func indexHeader(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return col
}

func field(record []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// parseNumeric cleans a broker-formatted number: currency signs, thousands
// separators, and parenthesized negatives.
func parseNumeric(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty value")
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("not a number: %q", s)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}
