package pnlbook

import "fmt"

// AccountingMethod defines the convention used to match sells against lots.
type AccountingMethod int

const (
	// Real is the hybrid convention: realized P&L is the simple total of the
	// trade tape, while the lot queue tracks the remaining open position with
	// cheapest-first consumption on loss-taking sells.
	Real AccountingMethod = iota
	// AverageCost blends the cost of all shares ever bought, sold ones included.
	AverageCost
	// FIFO assumes the first shares purchased are the first ones sold.
	FIFO
	// LIFO assumes the last shares purchased are the first ones sold.
	LIFO
)

// Methods lists every accounting convention; a calculation always runs all of them.
var Methods = []AccountingMethod{Real, AverageCost, FIFO, LIFO}

func (m AccountingMethod) String() string {
	switch m {
	case Real:
		return "real"
	case AverageCost:
		return "average"
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	default:
		return "unknown"
	}
}

// ParseAccountingMethod parses a string into an AccountingMethod.
func ParseAccountingMethod(s string) (AccountingMethod, error) {
	switch s {
	case "real":
		return Real, nil
	case "average":
		return AverageCost, nil
	case "fifo":
		return FIFO, nil
	case "lifo":
		return LIFO, nil
	default:
		return 0, fmt.Errorf("unknown accounting method: %q", s)
	}
}
