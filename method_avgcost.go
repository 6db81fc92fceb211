package pnlbook

// averageCostPnL computes the average-cost position for one instrument's tape.
//
// The divisor of the average deliberately includes shares already sold, so the
// blend answers "what would my cost basis look like if no sales had affected
// it". No realized figure is computed for this method.
func averageCostPnL(trades []Trade, currentPrice Money) PositionResult {
	var totalCost, buyAmount Money
	var bought, sold Quantity

	for _, t := range trades {
		if t.Buy {
			bought = bought.Add(t.Quantity)
			totalCost = totalCost.Add(t.Price.Mul(t.Quantity))
			buyAmount = buyAmount.Add(t.Amount)
		} else {
			sold = sold.Add(t.Quantity)
		}
	}

	position := bought.Sub(sold).Floor()
	avgCost := totalCost.DivSafe(position.Add(sold))
	var unrealized Money
	if position.IsPositive() {
		unrealized = currentPrice.Sub(avgCost).Mul(position)
	}

	return PositionResult{
		Unrealized: unrealized,
		Total:      unrealized,
		Position:   position,
		AvgCost:    avgCost,
		Return:     percentReturn(unrealized, buyAmount),
		buyBase:    buyAmount,
	}
}
