package journals

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// ValidateLines checks the structural and balance rules of a proposed entry and
// returns its totals. Apart from account lookups it has no side effects.
func ValidateLines(ctx context.Context, registry accounts.Registry, lines []LineInput) (Totals, error) {
	if len(lines) < 2 {
		return Totals{}, shared.ErrTooFewLines
	}
	debit, credit := decimal.Zero, decimal.Zero
	for idx, line := range lines {
		if line.AccountID == 0 {
			return Totals{}, shared.Validationf("line %d missing account", idx)
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return Totals{}, shared.Validationf("line %d negative amount", idx)
		}
		d, c := shared.RoundAmount(line.Debit), shared.RoundAmount(line.Credit)
		if !d.IsZero() && !c.IsZero() {
			return Totals{}, shared.Validationf("line %d cannot be both debit and credit", idx)
		}
		if d.IsZero() && c.IsZero() {
			return Totals{}, shared.Validationf("line %d has no amount", idx)
		}
		debit = debit.Add(d)
		credit = credit.Add(c)
	}
	if registry != nil {
		for idx, line := range lines {
			account, err := registry.Resolve(ctx, line.AccountID)
			if err != nil {
				if errors.Is(err, shared.ErrAccountNotFound) {
					return Totals{}, shared.Validationf("line %d account %d not found", idx, line.AccountID)
				}
				return Totals{}, err
			}
			if !account.IsActive {
				return Totals{}, shared.Validationf("line %d account %s is inactive", idx, account.Code)
			}
		}
	}
	if !shared.WithinTolerance(debit, credit) {
		return Totals{}, fmt.Errorf("%w: debit %s credit %s", shared.ErrUnbalanced,
			debit.StringFixed(shared.AmountScale), credit.StringFixed(shared.AmountScale))
	}
	return Totals{Debit: debit, Credit: credit}, nil
}
