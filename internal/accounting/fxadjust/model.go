package fxadjust

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// Adjustment is an external currency revaluation event. OriginalAmount is the
// booked base value of a foreign balance and ConvertedAmount its revalued base
// value. When ConvertedAmount is zero it is derived from ForeignAmount and the rate.
type Adjustment struct {
	ID              uuid.UUID
	CompanyID       int64
	Module          shared.Module
	Date            time.Time
	FromCurrency    string
	ToCurrency      string
	ForeignAmount   decimal.Decimal
	OriginalAmount  decimal.Decimal
	ConvertedAmount decimal.Decimal
	ExchangeRate    decimal.Decimal
	SourceAccountID int64
	Description     string
	ActorID         int64
}

// Difference is ConvertedAmount minus OriginalAmount; negative is a loss.
func (a Adjustment) Difference() decimal.Decimal {
	return shared.RoundAmount(a.ConvertedAmount.Sub(a.OriginalAmount))
}

// Pair returns the currency pair code, e.g. USDIDR.
func (a Adjustment) Pair() string {
	return strings.ToUpper(a.FromCurrency + a.ToCurrency)
}

// Validate checks the record shape before any lookups.
func (a Adjustment) Validate() error {
	if a.CompanyID == 0 {
		return shared.Validationf("company id required")
	}
	if a.Date.IsZero() {
		return shared.Validationf("adjustment date required")
	}
	if len(strings.TrimSpace(a.FromCurrency)) != 3 || len(strings.TrimSpace(a.ToCurrency)) != 3 {
		return shared.Validationf("from and to currency must be ISO codes")
	}
	if strings.EqualFold(a.FromCurrency, a.ToCurrency) {
		return shared.Validationf("from and to currency must differ")
	}
	for name, v := range map[string]decimal.Decimal{
		"original amount":  a.OriginalAmount,
		"converted amount": a.ConvertedAmount,
		"foreign amount":   a.ForeignAmount,
		"exchange rate":    a.ExchangeRate,
	} {
		if v.IsNegative() {
			return shared.Validationf("%s cannot be negative", name)
		}
	}
	if a.ConvertedAmount.IsZero() && a.ForeignAmount.IsZero() {
		return shared.Validationf("converted amount or foreign amount required")
	}
	return nil
}
