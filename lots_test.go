package pnlbook

import (
	"testing"
	"time"
)

func day1() Date { return NewDate(2024, time.January, 2) }
func day2() Date { return NewDate(2024, time.February, 2) }
func day3() Date { return NewDate(2024, time.March, 2) }

func TestLots_ConsumeFirst_Partial(t *testing.T) {
	queue := lots{
		{Date: day1(), Quantity: Q(10), Price: USD(100)},
		{Date: day2(), Quantity: Q(10), Price: USD(110)},
	}

	remaining, consumed := queue.consume(Q(4), pickFirst)

	if len(consumed) != 1 || !consumed[0].Quantity.Equal(Q(4)) || !consumed[0].Price.Equal(USD(100)) {
		t.Fatalf("consume(4) consumed = %v, want 4 @ $100", consumed)
	}
	if len(remaining) != 2 || !remaining[0].Quantity.Equal(Q(6)) {
		t.Errorf("consume(4) remaining = %v, want first lot reduced to 6", remaining)
	}
}

func TestLots_ConsumeFirst_AcrossLots(t *testing.T) {
	queue := lots{
		{Date: day1(), Quantity: Q(10), Price: USD(100)},
		{Date: day2(), Quantity: Q(10), Price: USD(110)},
	}

	remaining, consumed := queue.consume(Q(15), pickFirst)

	if len(consumed) != 2 {
		t.Fatalf("consume(15) consumed %d lots, want 2", len(consumed))
	}
	if !consumed[0].Quantity.Equal(Q(10)) || !consumed[1].Quantity.Equal(Q(5)) {
		t.Errorf("consume(15) consumed = %v, want 10 @ $100 then 5 @ $110", consumed)
	}
	if len(remaining) != 1 || !remaining[0].Quantity.Equal(Q(5)) || !remaining[0].Price.Equal(USD(110)) {
		t.Errorf("consume(15) remaining = %v, want 5 @ $110", remaining)
	}
}

func TestLots_ConsumeLast(t *testing.T) {
	queue := lots{
		{Date: day1(), Quantity: Q(10), Price: USD(100)},
		{Date: day2(), Quantity: Q(10), Price: USD(110)},
	}

	remaining, consumed := queue.consume(Q(5), pickLast)

	if len(consumed) != 1 || !consumed[0].Price.Equal(USD(110)) {
		t.Fatalf("consume(5) newest-first consumed = %v, want 5 @ $110", consumed)
	}
	if !remaining[1].Quantity.Equal(Q(5)) {
		t.Errorf("consume(5) newest-first remaining = %v, want second lot reduced to 5", remaining)
	}
}

func TestLots_ConsumeCheapest(t *testing.T) {
	// cheapest lot is neither first nor last
	queue := lots{
		{Date: day1(), Quantity: Q(10), Price: USD(100)},
		{Date: day2(), Quantity: Q(10), Price: USD(50)},
		{Date: day3(), Quantity: Q(10), Price: USD(75)},
	}

	remaining, consumed := queue.consume(Q(12), pickCheapest)

	if len(consumed) != 2 {
		t.Fatalf("consume(12) cheapest-first consumed %d lots, want 2", len(consumed))
	}
	if !consumed[0].Price.Equal(USD(50)) || !consumed[1].Price.Equal(USD(75)) {
		t.Errorf("consume(12) cheapest-first consumed = %v, want $50 lot then $75 lot", consumed)
	}
	if !consumed[1].Quantity.Equal(Q(2)) {
		t.Errorf("consume(12) second consumption = %s, want 2", consumed[1].Quantity)
	}
	if got := remaining.totalQuantity(); !got.Equal(Q(18)) {
		t.Errorf("remaining quantity = %s, want 18", got)
	}
}

func TestLots_ConsumeOldest_IgnoresPriceOrder(t *testing.T) {
	// queue sorted by price, oldest is the most expensive
	queue := lots{
		{Date: day3(), Quantity: Q(10), Price: USD(50)},
		{Date: day1(), Quantity: Q(10), Price: USD(100)},
	}

	_, consumed := queue.consume(Q(5), pickOldest)

	if len(consumed) != 1 || !consumed[0].Price.Equal(USD(100)) {
		t.Errorf("oldest-first consumed = %v, want the day1 lot at $100", consumed)
	}
}

func TestLots_Oversell(t *testing.T) {
	queue := lots{{Date: day1(), Quantity: Q(10), Price: USD(100)}}

	remaining, consumed := queue.consume(Q(15), pickFirst)

	if len(remaining) != 0 {
		t.Errorf("oversell remaining = %v, want empty", remaining)
	}
	if got := lots(consumed).totalQuantity(); !got.Equal(Q(10)) {
		t.Errorf("oversell consumed quantity = %s, want 10", got)
	}
}

func TestLots_WeightedAvgPrice(t *testing.T) {
	queue := lots{
		{Date: day1(), Quantity: Q(10), Price: USD(100)},
		{Date: day2(), Quantity: Q(30), Price: USD(200)},
	}
	// (10*100 + 30*200) / 40 = 175
	if got := queue.weightedAvgPrice(); !got.Equal(USD(175)) {
		t.Errorf("weightedAvgPrice = %s, want $175.00", got)
	}

	var empty lots
	if got := empty.weightedAvgPrice(); !got.IsZero() {
		t.Errorf("weightedAvgPrice of empty queue = %s, want 0", got)
	}
}

func TestLots_Cheapest(t *testing.T) {
	queue := lots{
		{Date: day1(), Quantity: Q(10), Price: USD(100)},
		{Date: day2(), Quantity: Q(10), Price: USD(50)},
	}
	cheapest, ok := queue.cheapest()
	if !ok || !cheapest.Price.Equal(USD(50)) {
		t.Errorf("cheapest = %v, %v, want the $50 lot", cheapest, ok)
	}

	var empty lots
	if _, ok := empty.cheapest(); ok {
		t.Error("cheapest of empty queue reported ok")
	}
}
