package pnlbook

import "fmt"

// Percent is a percentage return, e.g. 5.0 for +5%.
type Percent float64

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" {
		return "-"
	}
	return res
}

// percentReturn computes total/base*100, 0 when there is no base.
func percentReturn(total, base Money) Percent {
	if base.IsZero() {
		return 0
	}
	return Percent(total.AsFloat() / base.AsFloat() * 100)
}
