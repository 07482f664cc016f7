package fxadjust

import (
	"fmt"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/mappings"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// Translate turns an adjustment into two balanced lines of magnitude
// |converted - original|. A loss debits the gain/loss account and credits the
// source account; a gain is the mirror.
func Translate(adj Adjustment, gainLossAccountID int64) ([]journals.LineInput, error) {
	if gainLossAccountID == 0 {
		return nil, fmt.Errorf("%w: exchange gain/loss account", shared.ErrConfiguration)
	}
	if adj.SourceAccountID == 0 {
		return nil, shared.Validationf("source account required: none given and no FX/%s mapping", mappings.KeyRevaluationSource)
	}
	if adj.SourceAccountID == gainLossAccountID {
		return nil, shared.Validationf("source account cannot be the gain/loss account")
	}
	diff := adj.Difference()
	if diff.IsZero() {
		return nil, shared.Validationf("no exchange difference to book")
	}
	amount := diff.Abs()
	desc := fmt.Sprintf("Exchange difference %s", adj.Pair())
	gainLoss := journals.LineInput{AccountID: gainLossAccountID, Currency: adj.ToCurrency, Description: desc}
	source := journals.LineInput{AccountID: adj.SourceAccountID, Currency: adj.ToCurrency, Description: desc}
	if diff.IsNegative() {
		gainLoss.Debit = amount
		source.Credit = amount
		return []journals.LineInput{gainLoss, source}, nil
	}
	source.Debit = amount
	gainLoss.Credit = amount
	return []journals.LineInput{source, gainLoss}, nil
}
