package mappings

import "time"

// Well-known mapping keys consumed by the ledger core.
const (
	ModuleFX             = "FX"
	KeyExchangeGainLoss  = "EXCHANGE_GAIN_LOSS"
	// KeyRevaluationSource is the account revalued when an adjustment names none.
	KeyRevaluationSource = "REVALUATION_SOURCE"
)

// AccountMapping links integration keys to ledger accounts per company.
type AccountMapping struct {
	CompanyID int64
	Module    string
	Key       string
	AccountID int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
