package pnlbook

// AdjustForSplits returns a derived copy of the trades with the given
// per-symbol split ratios applied: price divided by the ratio, quantity
// multiplied by it, so the total traded value is preserved.
//
// Option symbols are never adjusted: their contracts are re-struck by the
// exchange, not rescaled. Symbols without a ratio (or with a non-positive one)
// pass through untouched. The input slice is not modified.
func AdjustForSplits(trades []Trade, ratios map[string]Quantity) []Trade {
	if len(ratios) == 0 {
		return trades
	}
	adjusted := make([]Trade, len(trades))
	for i, t := range trades {
		ratio, ok := ratios[t.Symbol]
		if !ok || t.Option || !ratio.IsPositive() {
			adjusted[i] = t
			continue
		}
		t.Price = t.Price.Div(ratio)
		t.Quantity = t.Quantity.Mul(ratio)
		adjusted[i] = t
	}
	return adjusted
}
