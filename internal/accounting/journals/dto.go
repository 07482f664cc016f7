package journals

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

type lineReq struct {
	AccountID    int64           `json:"account_id" validate:"required,gt=0"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	Currency     string          `json:"currency" validate:"omitempty,len=3"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	Description  string          `json:"description" validate:"max=500"`
}

type entryReq struct {
	Module       string          `json:"module" validate:"omitempty,oneof=sales purchases banking accountant"`
	Date         string          `json:"date" validate:"required,datetime=2006-01-02"`
	Currency     string          `json:"currency" validate:"required,len=3"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	Description  string          `json:"description" validate:"max=1000"`
	Reference    string          `json:"reference" validate:"max=255"`
	Lines        []lineReq       `json:"lines" validate:"required,min=1,dive"`
}

type reverseReq struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type listResp struct {
	Entries    []JournalEntry    `json:"entries"`
	Pagination internalShared.Pagination `json:"pagination"`
}

func (req entryReq) header(companyID, actorID int64) (Header, error) {
	date, err := shared.ParseDate(req.Date)
	if err != nil {
		return Header{}, err
	}
	module, err := shared.ParseModule(req.Module)
	if err != nil {
		return Header{}, err
	}
	return Header{
		CompanyID:    companyID,
		Module:       module,
		Date:         date,
		Currency:     req.Currency,
		ExchangeRate: req.ExchangeRate,
		Description:  req.Description,
		Reference:    req.Reference,
		ActorID:      actorID,
	}, nil
}

func (req entryReq) lines() []LineInput {
	out := make([]LineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		out = append(out, LineInput{
			AccountID:    l.AccountID,
			Debit:        l.Debit,
			Credit:       l.Credit,
			Currency:     l.Currency,
			ExchangeRate: l.ExchangeRate,
			Description:  l.Description,
		})
	}
	return out
}
