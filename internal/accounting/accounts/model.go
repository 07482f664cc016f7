package accounts

import "time"

// NormalSide is the side on which an account's balance increases.
type NormalSide string

const (
	NormalSideDebit  NormalSide = "DEBIT"
	NormalSideCredit NormalSide = "CREDIT"
)

// Account is the ledger's view of a chart of accounts node.
type Account struct {
	ID         int64      `json:"id"`
	CompanyID  int64      `json:"company_id"`
	Code       string     `json:"code"`
	Name       string     `json:"name"`
	NormalSide NormalSide `json:"normal_side"`
	Currency   string     `json:"currency"`
	IsActive   bool       `json:"is_active"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
