package pnlbook

import (
	"regexp"
	"time"
)

// Option contracts carry their underlying ticker in the description ("AAPL
// Jan 15 2024 Call $150" starts with the underlying) and their expiration
// embedded in the symbol as MM/DD/YYYY ("AAPL 01/15/2024 Call $150").

var (
	parentTickerRE = regexp.MustCompile(`^[A-Z]+`)
	expiryRE       = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
)

// ParentTicker extracts an option's underlying ticker from its description:
// the leading run of uppercase letters. The second return is false when the
// description does not start with one; callers record an anomaly and keep the
// option out of any rollup.
func ParentTicker(description string) (string, bool) {
	ticker := parentTickerRE.FindString(description)
	return ticker, ticker != ""
}

// OptionExpiry parses the MM/DD/YYYY expiration date embedded in an option
// symbol. The second return is false when the symbol carries none.
func OptionExpiry(symbol string) (Date, bool) {
	match := expiryRE.FindString(symbol)
	if match == "" {
		return Date{}, false
	}
	on, err := time.Parse(usDateFormat, match)
	if err != nil {
		return Date{}, false
	}
	return NewDate(on.Date()), true
}

// optionExpired reports whether the option's embedded expiration is strictly
// before the as-of date. Expiration is always evaluated against the explicit
// as-of date, never the wall clock, so historical snapshots replay correctly.
func optionExpired(symbol string, asOf Date) bool {
	expiry, ok := OptionExpiry(symbol)
	return ok && expiry.Before(asOf)
}
