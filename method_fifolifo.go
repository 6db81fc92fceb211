package pnlbook

// queuePnL computes the FIFO or LIFO position for one instrument's tape.
//
// This is the one place where realized P&L genuinely equals the lot-walk
// total: every consumption contributes (sellPrice - lotPrice) x consumedQty.
// Unrealized uses the remaining lots' weighted average price.
func queuePnL(trades []Trade, currentPrice Money, method AccountingMethod) PositionResult {
	pick := pickFirst
	if method == LIFO {
		pick = pickLast
	}

	var queue lots // tape order; pickFirst is oldest, pickLast is newest
	var realized, buyAmount Money
	var bought, sold Quantity

	for _, t := range trades {
		if t.Buy {
			queue = append(queue, lot{Date: t.Date, Quantity: t.Quantity, Price: t.Price})
			bought = bought.Add(t.Quantity)
			buyAmount = buyAmount.Add(t.Amount)
			continue
		}
		sold = sold.Add(t.Quantity)
		var consumed lots
		queue, consumed = queue.consume(t.Quantity, pick)
		for _, c := range consumed {
			realized = realized.Add(t.Price.Sub(c.Price).Mul(c.Quantity))
		}
	}

	position := bought.Sub(sold).Floor()
	avgCost := queue.weightedAvgPrice()
	var unrealized Money
	if position.IsPositive() {
		unrealized = currentPrice.Sub(avgCost).Mul(position)
	}
	total := realized.Add(unrealized)

	return PositionResult{
		Realized:   realized,
		Unrealized: unrealized,
		Total:      total,
		Position:   position,
		AvgCost:    avgCost,
		Return:     percentReturn(total, buyAmount),
		buyBase:    buyAmount,
	}
}
