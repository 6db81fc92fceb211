package pnlbook

// realPnL computes the hybrid "real" position for one instrument's tape.
//
// The method keeps two sets of books on purpose. The realized figure is the
// simple total of the tape (sell amounts minus buy amounts, plus income); it is
// never derived from the lot walk. The lot queue exists only to track which
// lots remain open: a sell below the running average buy price consumes the
// cheapest lots first, a sell at or above it consumes oldest-first. That
// consumption policy is a documented convention of this method, not a bug, and
// it is what shapes the open-lot report (lowest remaining buy price and age).
func realPnL(trades []Trade, currentPrice Money, asOf Date, income Money) (PositionResult, OpenLotReport) {
	var queue lots

	// Open exposure, decremented as lots are consumed so the running average
	// reflects only what is still held.
	var openBought Quantity
	var openBuyCost Money

	// Raw tape totals, never decremented.
	var bought, sold Quantity
	var buyAmount, sellAmount Money

	var buys, sells []TradeEvent

	for _, t := range trades {
		event := TradeEvent{Date: t.Date, Quantity: t.Quantity, Price: t.Price, DaysAgo: asOf.DaysSince(t.Date)}
		if t.Buy {
			queue = append(queue, lot{Date: t.Date, Quantity: t.Quantity, Price: t.Price})
			queue.sortByPrice()
			openBought = openBought.Add(t.Quantity)
			openBuyCost = openBuyCost.Add(t.Price.Mul(t.Quantity))
			bought = bought.Add(t.Quantity)
			buyAmount = buyAmount.Add(t.Amount)
			buys = append(buys, event)
			continue
		}

		sold = sold.Add(t.Quantity)
		sellAmount = sellAmount.Add(t.Amount)
		sells = append(sells, event)

		// Selling at a loss relative to the average consumes the cheapest
		// lots first; selling at or above it consumes oldest-first.
		avgBuyPrice := openBuyCost.DivSafe(openBought)
		pick := pickOldest
		if t.Price.LessThan(avgBuyPrice) {
			pick = pickCheapest
		}
		var consumed lots
		queue, consumed = queue.consume(t.Quantity, pick)
		for _, c := range consumed {
			openBought = openBought.Sub(c.Quantity)
			openBuyCost = openBuyCost.Sub(c.Cost())
		}
	}

	position := bought.Sub(sold).Floor()
	realized := sellAmount.Sub(buyAmount).Add(income)
	var unrealized Money
	if position.IsPositive() {
		unrealized = currentPrice.Mul(position)
	}
	total := realized.Add(unrealized)

	result := PositionResult{
		Realized:   realized,
		Unrealized: unrealized,
		Total:      total,
		Position:   position,
		AvgCost:    openBuyCost.DivSafe(openBought),
		Return:     percentReturn(total, buyAmount),
		buyBase:    buyAmount,
	}

	report := OpenLotReport{
		RecentBuys:  lastEvents(buys, maxRecentEvents),
		RecentSells: lastEvents(sells, maxRecentEvents),
	}
	if cheapest, ok := queue.cheapest(); ok {
		report.LowestOpenBuy = cheapest.Price
		report.LowestOpenBuyDaysAgo = asOf.DaysSince(cheapest.Date)
	}
	return result, report
}

// maxRecentEvents caps the buy/sell event history attached to a result.
const maxRecentEvents = 10

// lastEvents keeps the n most recent events, in chronological order.
func lastEvents(events []TradeEvent, n int) []TradeEvent {
	if len(events) <= n {
		return events
	}
	return events[len(events)-n:]
}
