package pnlbook

import (
	"testing"
	"time"
)

func TestAdjustForSplits(t *testing.T) {
	// 4:1 split: 100 shares at $400 become 400 at $100, same traded value.
	trades := []Trade{buy("AAPL", day1(), 100, 400)}

	adjusted := AdjustForSplits(trades, map[string]Quantity{"AAPL": Q(4)})

	if !adjusted[0].Quantity.Equal(Q(400)) {
		t.Errorf("Quantity = %s, want 400", adjusted[0].Quantity)
	}
	if !adjusted[0].Price.Equal(USD(100)) {
		t.Errorf("Price = %s, want $100.00", adjusted[0].Price)
	}
	if !trades[0].Quantity.Equal(Q(100)) {
		t.Error("input slice was modified")
	}
}

func TestAdjustForSplits_PnLMatchesPostSplitTape(t *testing.T) {
	// pre-split buy adjusted 4:1, then a post-split sell at post-split prices
	trades := AdjustForSplits([]Trade{buy("AAPL", day1(), 100, 400)}, map[string]Quantity{"AAPL": Q(4)})
	trades = append(trades, sell("AAPL", day2(), 200, 110))

	results, _, err := ComputePnL(trades, PriceMap{"AAPL": USD(110)}, NewDate(2024, time.April, 1), nil)
	if err != nil {
		t.Fatalf("ComputePnL() error = %v", err)
	}

	fifo := results[0].FIFO
	// (110 - 100) x 200
	if want := USD(2000); !fifo.Realized.Equal(want) {
		t.Errorf("FIFO Realized = %s, want %s", fifo.Realized, want)
	}
	if !fifo.Position.Equal(Q(200)) {
		t.Errorf("Position = %s, want 200", fifo.Position)
	}
}

func TestAdjustForSplits_SkipsOptionsAndUnknownSymbols(t *testing.T) {
	opt := optionTrade("AAPL 06/20/2025 Call $150", "AAPL Jun 2025 Call", day1(), 2, 5, true)
	trades := []Trade{
		opt,
		buy("MSFT", day1(), 10, 300),
	}

	adjusted := AdjustForSplits(trades, map[string]Quantity{"AAPL 06/20/2025 Call $150": Q(4), "TSLA": Q(3)})

	if !adjusted[0].Quantity.Equal(Q(2)) || !adjusted[0].Price.Equal(USD(5)) {
		t.Errorf("option trade adjusted: %v", adjusted[0])
	}
	if !adjusted[1].Quantity.Equal(Q(10)) {
		t.Errorf("unrelated symbol adjusted: %v", adjusted[1])
	}
}

func TestAdjustForSplits_IgnoresNonPositiveRatio(t *testing.T) {
	trades := []Trade{buy("AAPL", day1(), 100, 400)}

	adjusted := AdjustForSplits(trades, map[string]Quantity{"AAPL": Q(0)})

	if !adjusted[0].Quantity.Equal(Q(100)) || !adjusted[0].Price.Equal(USD(400)) {
		t.Errorf("zero ratio applied: %v", adjusted[0])
	}
}
