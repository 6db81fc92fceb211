package pnlbook

import "github.com/shopspring/decimal"

// positionEpsilon is the floating-point floor below which a remaining position
// is treated as exactly zero, to avoid phantom fractional positions.
var positionEpsilon = decimal.NewFromFloat(0.0001)

// Quantity represents a number of shares or contracts.
type Quantity struct {
	value decimal.Decimal
}

func Q[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Quantity {
	return Quantity{value: newDecimal(value)}
}

func (t Quantity) Equal(p Quantity) bool       { return t.value.Equal(p.value) }
func (t Quantity) LessThan(p Quantity) bool    { return t.value.LessThan(p.value) }
func (t Quantity) Div(p Quantity) Quantity     { return Quantity{value: t.value.Div(p.value)} }
func (t Quantity) Mul(p Quantity) Quantity     { return Quantity{value: t.value.Mul(p.value)} }
func (t Quantity) Add(p Quantity) Quantity     { return Quantity{value: t.value.Add(p.value)} }
func (t Quantity) Sub(p Quantity) Quantity     { return Quantity{value: t.value.Sub(p.value)} }
func (t Quantity) GreaterThan(p Quantity) bool { return t.value.GreaterThan(p.value) }
func (t Quantity) IsNegative() bool            { return t.value.IsNegative() }
func (t Quantity) IsPositive() bool            { return t.value.IsPositive() }
func (t Quantity) IsZero() bool                { return t.value.IsZero() }
func (q Quantity) String() string              { return q.value.String() }

// IsNegligible reports whether the quantity is at or below the position floor.
func (t Quantity) IsNegligible() bool {
	return t.value.Abs().LessThanOrEqual(positionEpsilon)
}

// Floor returns the quantity, snapped to exactly zero when negligible.
func (t Quantity) Floor() Quantity {
	if t.IsNegligible() {
		return Quantity{}
	}
	return t
}

// AsFloat returns the nearest float64; display only.
func (t Quantity) AsFloat() float64 { return t.value.InexactFloat64() }

func (t Quantity) MarshalJSON() ([]byte, error) {
	return t.value.MarshalJSON()
}

func (t *Quantity) UnmarshalJSON(decimalBytes []byte) error {
	return t.value.UnmarshalJSON(decimalBytes)
}
