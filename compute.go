package pnlbook

import (
	"fmt"
	"sort"
)

// PositionResult is the per-method outcome for one instrument. It is derived,
// recomputed in full on every call, never incrementally patched.
// Invariant: Total equals Realized plus Unrealized.
type PositionResult struct {
	Realized   Money    `json:"realizedPnL"`
	Unrealized Money    `json:"unrealizedPnL"`
	Total      Money    `json:"totalPnL"`
	Position   Quantity `json:"position"`
	AvgCost    Money    `json:"avgCostBasis"`
	Return     Percent  `json:"percentageReturn"`

	buyBase Money // total buy amount, the denominator of Return
}

// freezeExpired discards any open-position figures: an expired option has no
// position left, only whatever was realized.
func (r PositionResult) freezeExpired() PositionResult {
	r.Position = Quantity{}
	r.Unrealized = Money{cur: r.Unrealized.cur}
	r.Total = r.Realized
	r.Return = percentReturn(r.Total, r.buyBase)
	return r
}

// rounded rounds all currency fields to two decimal places, half away from
// zero. Total is re-derived from the rounded parts so the realized+unrealized
// identity holds exactly on the reported figures.
func (r PositionResult) rounded() PositionResult {
	r.Realized = r.Realized.Round2()
	r.Unrealized = r.Unrealized.Round2()
	r.Total = r.Realized.Add(r.Unrealized)
	r.AvgCost = r.AvgCost.Round2()
	r.Return = percentReturn(r.Total, r.buyBase)
	return r
}

// TradeEvent is one buy or sell with its age relative to the as-of date.
type TradeEvent struct {
	Date     Date     `json:"date"`
	Quantity Quantity `json:"quantity"`
	Price    Money    `json:"price"`
	DaysAgo  int      `json:"daysAgo"`
}

// OpenLotReport describes the remaining open lots under the real method,
// for "what's my cheapest remaining lot" displays.
type OpenLotReport struct {
	LowestOpenBuy        Money        `json:"lowestOpenBuyPrice"`
	LowestOpenBuyDaysAgo int          `json:"lowestOpenBuyDaysAgo"`
	RecentBuys           []TradeEvent `json:"recentBuys,omitempty"`
	RecentSells          []TradeEvent `json:"recentSells,omitempty"`
}

// InstrumentResult is the full per-instrument result: the same tape evaluated
// under all four accounting conventions.
type InstrumentResult struct {
	Symbol       string         `json:"symbol"`
	Label        string         `json:"instrument"`
	Option       bool           `json:"isOption"`
	CurrentPrice Money          `json:"currentPrice"`
	Real         PositionResult `json:"real"`
	AverageCost  PositionResult `json:"avgCost"`
	FIFO         PositionResult `json:"fifo"`
	LIFO         PositionResult `json:"lifo"`
	OpenLots     OpenLotReport  `json:"openLots"`
	Parent       string         `json:"parentInstrument,omitempty"`
	Expired      bool           `json:"expired,omitempty"`
}

// InstrumentRollup is a stock/ETF-level result carrying its options' P&L as a
// side channel. It is the only shape the engine returns: individual options
// appear solely inside their parent's Options slice.
type InstrumentRollup struct {
	InstrumentResult
	OptionsPnL   Money              `json:"optionsPnL"`
	OptionsCount int                `json:"optionsCount"`
	Options      []InstrumentResult `json:"options,omitempty"`
}

// PriceMap is a per-symbol price snapshot. A missing symbol means a current
// price of zero, never an error.
type PriceMap map[string]Money

// PriceMapFromFloats builds a PriceMap in the default currency.
func PriceMapFromFloats(prices map[string]float64) PriceMap {
	pm := make(PriceMap, len(prices))
	for sym, p := range prices {
		pm[sym] = USD(p)
	}
	return pm
}

// ComputePnL evaluates the full trade tape under all four accounting
// conventions and returns one rollup per stock/ETF instrument, sorted by
// symbol, with option results folded into their parents.
//
// The calculation is pure: it reads the given snapshot, carries no state
// between calls, performs no I/O, and never reads the wall clock (a zero asOf
// defaults to today, resolved once up front). Data-quality issues are
// returned as anomalies, never as errors; the only error is the caller
// contract violation of a nil trade list.
func ComputePnL(trades []Trade, prices PriceMap, asOf Date, income []IncomeItem) ([]InstrumentRollup, []Anomaly, error) {
	if trades == nil {
		return nil, nil, fmt.Errorf("nil trade list")
	}
	if asOf.IsZero() {
		asOf = Today()
	}

	groups, anomalies := groupBySymbol(trades)

	// Dividends add to, interest subtracts from, the real method's realized.
	incomeBySymbol := make(map[string]Money)
	for _, item := range income {
		if _, ok := groups[item.Symbol]; !ok {
			anomalies = append(anomalies, Anomaly{Symbol: item.Symbol, Reason: "income for symbol with no trades"})
			continue
		}
		amount := item.Amount
		if item.Interest {
			amount = amount.Neg()
		}
		incomeBySymbol[item.Symbol] = incomeBySymbol[item.Symbol].Add(amount)
	}

	symbols := make([]string, 0, len(groups))
	for sym := range groups {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	results := make([]InstrumentResult, 0, len(symbols))
	for _, sym := range symbols {
		tape := make([]Trade, len(groups[sym]))
		copy(tape, groups[sym])
		sortByDate(tape)

		res := computeInstrument(sym, tape, prices[sym], asOf, incomeBySymbol[sym])
		if res.Option {
			if parent, ok := ParentTicker(res.Label); ok {
				res.Parent = parent
			} else {
				anomalies = append(anomalies, Anomaly{Symbol: sym, Reason: "cannot resolve option parent from description"})
			}
			if optionExpired(sym, asOf) {
				res.Expired = true
				res.Real = res.Real.freezeExpired()
				res.AverageCost = res.AverageCost.freezeExpired()
				res.FIFO = res.FIFO.freezeExpired()
				res.LIFO = res.LIFO.freezeExpired()
			}
		}
		res.Real = res.Real.rounded()
		res.AverageCost = res.AverageCost.rounded()
		res.FIFO = res.FIFO.rounded()
		res.LIFO = res.LIFO.rounded()
		results = append(results, res)
	}

	// Roll option P&L up into parents, then keep only stock/ETF instruments.
	rollups := make([]InstrumentRollup, 0, len(results))
	index := make(map[string]int)
	for _, res := range results {
		if res.Option {
			continue
		}
		index[res.Symbol] = len(rollups)
		rollups = append(rollups, InstrumentRollup{InstrumentResult: res})
	}
	for _, res := range results {
		if !res.Option {
			continue
		}
		if res.Parent == "" {
			continue // anomaly already recorded
		}
		i, ok := index[res.Parent]
		if !ok {
			anomalies = append(anomalies, Anomaly{Symbol: res.Symbol, Reason: fmt.Sprintf("option parent %q has no equity trades", res.Parent)})
			continue
		}
		rollups[i].OptionsPnL = rollups[i].OptionsPnL.Add(res.Real.Total).Round2()
		rollups[i].OptionsCount++
		rollups[i].Options = append(rollups[i].Options, res)
	}

	return rollups, anomalies, nil
}

// computeInstrument runs one symbol's tape through every method. Each method
// walks the tape with its own lot collection; nothing is shared.
func computeInstrument(symbol string, tape []Trade, price Money, asOf Date, income Money) InstrumentResult {
	res := InstrumentResult{
		Symbol:       symbol,
		Label:        tape[0].Description,
		CurrentPrice: price,
	}
	if res.Label == "" {
		res.Label = symbol
	}
	for _, t := range tape {
		if t.Option {
			res.Option = true
			break
		}
	}
	res.Real, res.OpenLots = realPnL(tape, price, asOf, income)
	res.AverageCost = averageCostPnL(tape, price)
	res.FIFO = queuePnL(tape, price, FIFO)
	res.LIFO = queuePnL(tape, price, LIFO)
	return res
}
