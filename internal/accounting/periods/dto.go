package periods

import "github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"

type lockReq struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Reason string `json:"reason" validate:"required,max=500"`
}

type unlockReq struct {
	Reason string `json:"reason" validate:"max=500"`
}

type partialUnlockReq struct {
	FromDate string `json:"from_date" validate:"required,datetime=2006-01-02"`
	ToDate   string `json:"to_date" validate:"required,datetime=2006-01-02"`
	Reason   string `json:"reason" validate:"required,max=500"`
}

type checkResp struct {
	Module shared.Module `json:"module"`
	Date   string        `json:"date"`
	Locked bool          `json:"locked"`
}
