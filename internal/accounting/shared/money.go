package shared

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format used on the wire and in messages.
const DateLayout = "2006-01-02"

// BalanceTolerance is the maximum accepted gap between total debit and credit.
var BalanceTolerance = decimal.RequireFromString("0.01")

// AmountScale is the number of decimal places amounts are persisted with.
const AmountScale = 2

// WithinTolerance reports whether a and b differ by at most BalanceTolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(BalanceTolerance)
}

// RoundAmount rounds to the persisted scale.
func RoundAmount(v decimal.Decimal) decimal.Decimal {
	return v.Round(AmountScale)
}

// DateOnly truncates t to its UTC calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, Validationf("invalid date %q", s)
	}
	return t, nil
}
