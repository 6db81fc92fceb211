package pnlbook

import "sort"

// lot is a discrete quantity of an instrument acquired at a specific price and
// date, consumed (fully or partially) by later disposals. A lot belongs to
// exactly one matching run; each accounting method maintains its own
// independent lot collection even though they process the same trade sequence.
type lot struct {
	Date     Date
	Quantity Quantity
	Price    Money // unit price paid for the lot
}

// Cost is the total acquisition cost of the lot (quantity x price).
func (l lot) Cost() Money { return l.Price.Mul(l.Quantity) }

type lots []lot

// a picker selects the index of the next lot to consume from a non-empty queue.
type picker func(lots) int

func pickFirst(lots) int      { return 0 }
func pickLast(l lots) int     { return len(l) - 1 }
func pickOldest(l lots) int   { return minIndex(l, func(a, b lot) bool { return a.Date.Before(b.Date) }) }
func pickCheapest(l lots) int { return minIndex(l, func(a, b lot) bool { return a.Price.LessThan(b.Price) }) }

func minIndex(l lots, less func(a, b lot) bool) int {
	best := 0
	for i := 1; i < len(l); i++ {
		if less(l[i], l[best]) {
			best = i
		}
	}
	return best
}

// consume removes quantityToSell from the queue, choosing lots with pick.
// It returns the remaining queue and the consumed portions, each carrying the
// quantity actually taken at that lot's price and date. A fully consumed lot
// is removed and never reused. If the queue runs out first the leftover
// quantity is simply not matched (oversell).
func (l lots) consume(quantityToSell Quantity, pick picker) (remaining, consumed lots) {
	remaining = make(lots, len(l))
	copy(remaining, l)
	for quantityToSell.IsPositive() && len(remaining) > 0 {
		i := pick(remaining)
		current := remaining[i]
		if current.Quantity.GreaterThan(quantityToSell) {
			// Partial sale from this lot
			consumed = append(consumed, lot{Date: current.Date, Quantity: quantityToSell, Price: current.Price})
			remaining[i].Quantity = current.Quantity.Sub(quantityToSell)
			return remaining, consumed
		}
		// Full sale of this lot
		consumed = append(consumed, current)
		quantityToSell = quantityToSell.Sub(current.Quantity)
		remaining = append(remaining[:i], remaining[i+1:]...)
	}
	return remaining, consumed
}

// sortByPrice orders the queue by ascending price, keeping tape order for
// equal prices.
func (l lots) sortByPrice() {
	sort.SliceStable(l, func(i, j int) bool { return l[i].Price.LessThan(l[j].Price) })
}

// totalQuantity sums the open quantity across all lots.
func (l lots) totalQuantity() Quantity {
	var total Quantity
	for _, current := range l {
		total = total.Add(current.Quantity)
	}
	return total
}

// weightedAvgPrice is the quantity-weighted average unit price of the open
// lots, zero for an empty queue.
func (l lots) weightedAvgPrice() Money {
	var cost Money
	var quantity Quantity
	for _, current := range l {
		cost = cost.Add(current.Cost())
		quantity = quantity.Add(current.Quantity)
	}
	return cost.DivSafe(quantity)
}

// cheapest returns the open lot with the lowest unit price.
func (l lots) cheapest() (lot, bool) {
	if len(l) == 0 {
		return lot{}, false
	}
	return l[pickCheapest(l)], true
}
