package pnlbook

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestImportTrades(t *testing.T) {
	csv := `Symbol,Date,Quantity,Price,Amount,Side,Type,Description
AAPL,2024-01-15,10,"$1,234.50","$12,345.00",buy,stock,Apple Inc
AAPL 06/20/2025 Call $150,01/20/2024,2,5.25,,sell,option,AAPL Jun 2025 Call $150
MSFT,2024-02-01,(5),300,($1500.00),s,stock,
`
	trades, anomalies, err := ImportTrades(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportTrades() error = %v", err)
	}
	if len(anomalies) != 0 {
		t.Fatalf("anomalies = %v, want none", anomalies)
	}
	if len(trades) != 3 {
		t.Fatalf("got %d trades, want 3", len(trades))
	}

	apple := trades[0]
	if apple.Symbol != "AAPL" || !apple.Buy || apple.Option {
		t.Errorf("trade 1 = %+v, want AAPL stock buy", apple)
	}
	if !apple.Price.Equal(USD(1234.50)) || !apple.Amount.Equal(USD(12345)) {
		t.Errorf("trade 1 price/amount = %s/%s, dirty dollar fields not cleaned", apple.Price, apple.Amount)
	}

	opt := trades[1]
	if !opt.Option || opt.Buy || opt.Date != NewDate(2024, time.January, 20) {
		t.Errorf("trade 2 = %+v, want option sell on 2024-01-20", opt)
	}
	// amount defaults to quantity x price
	if !opt.Amount.Equal(USD(10.50)) {
		t.Errorf("trade 2 amount = %s, want $10.50", opt.Amount)
	}

	// parenthesized negatives come out as magnitudes
	msft := trades[2]
	if msft.Buy || !msft.Quantity.Equal(Q(5)) || !msft.Amount.Equal(USD(1500)) {
		t.Errorf("trade 3 = %+v, want sell of 5 for $1500.00", msft)
	}
}

func TestImportTrades_BadRowsBecomeAnomalies(t *testing.T) {
	csv := `symbol,date,quantity,price,side
AAPL,not-a-date,10,100,buy
AAPL,2024-01-15,ten,100,buy
AAPL,2024-01-15,10,100,hold
,2024-01-15,10,100,buy
AAPL,2024-01-15,10,100,buy
`
	trades, anomalies, err := ImportTrades(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportTrades() error = %v", err)
	}
	if len(trades) != 1 {
		t.Errorf("got %d trades, want only the clean last row", len(trades))
	}
	if len(anomalies) != 4 {
		t.Fatalf("got %d anomalies, want 4: %v", len(anomalies), anomalies)
	}
	// line numbers point at the file, not the slice
	if !strings.Contains(anomalies[0].Reason, "line 2") {
		t.Errorf("anomaly reason %q does not carry the line number", anomalies[0].Reason)
	}
}

func TestImportTrades_MissingColumn(t *testing.T) {
	csv := "symbol,date,quantity,side\nAAPL,2024-01-15,10,buy\n"
	if _, _, err := ImportTrades(strings.NewReader(csv)); err == nil {
		t.Error("ImportTrades accepted a file without a price column")
	}
}

func TestImportIncome(t *testing.T) {
	csv := `symbol,date,amount,type
AAPL,2024-03-01,$24.00,dividend
CASH,2024-03-15,(3.50),interest
AAPL,bad-date,1,dividend
`
	items, anomalies, err := ImportIncome(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportIncome() error = %v", err)
	}
	if len(items) != 2 || len(anomalies) != 1 {
		t.Fatalf("items/anomalies = %d/%d, want 2/1", len(items), len(anomalies))
	}
	if items[0].Interest || !items[0].Amount.Equal(USD(24)) {
		t.Errorf("item 1 = %+v, want $24.00 dividend", items[0])
	}
	if !items[1].Interest || !items[1].Amount.Equal(USD(3.50)) {
		t.Errorf("item 2 = %+v, want $3.50 interest magnitude", items[1])
	}
}

func TestImportExportPrices(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportPrices(&buf, map[string]float64{"AAPL": 190.5, "MSFT": 410}); err != nil {
		t.Fatalf("ExportPrices() error = %v", err)
	}

	prices, err := ImportPrices(&buf)
	if err != nil {
		t.Fatalf("ImportPrices() error = %v", err)
	}
	if !prices["AAPL"].Equal(USD(190.5)) || !prices["MSFT"].Equal(USD(410)) {
		t.Errorf("round trip = %v", prices)
	}

	if _, err := ImportPrices(strings.NewReader("not json")); err == nil {
		t.Error("ImportPrices accepted garbage")
	}
}

func TestExportResults(t *testing.T) {
	trades := []Trade{
		buy("ACME", day1(), 10, 100),
		sell("ACME", day2(), 5, 120),
	}
	results, _, err := ComputePnL(trades, PriceMap{"ACME": USD(120)}, NewDate(2024, time.April, 1), nil)
	if err != nil {
		t.Fatalf("ComputePnL() error = %v", err)
	}

	var buf bytes.Buffer
	if err := ExportResults(&buf, results); err != nil {
		t.Fatalf("ExportResults() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want one per instrument", len(lines))
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if decoded["symbol"] != "ACME" {
		t.Errorf("symbol = %v, want ACME", decoded["symbol"])
	}
	for _, key := range []string{"realizedPnL", "unrealizedPnL", "totalPnL", "position", "avgCostBasis", "percentageReturn"} {
		if _, ok := decoded["fifo"].(map[string]any)[key]; !ok {
			t.Errorf("fifo result missing %q", key)
		}
	}
	if _, ok := decoded["optionsPnL"]; !ok {
		t.Error("rollup missing optionsPnL")
	}
}
