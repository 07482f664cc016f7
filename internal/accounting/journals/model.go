package journals

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// Status enumerates journal lifecycle values.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusPosted   Status = "POSTED"
	StatusReversed Status = "REVERSED"
	StatusDeleted  Status = "DELETED"
)

// transitions lists every legal status change. Reversed and Deleted are terminal.
var transitions = map[Status][]Status{
	StatusDraft:  {StatusPosted, StatusDeleted},
	StatusPosted: {StatusReversed},
}

// CanTransition reports whether an entry in from may move to to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Source identifies how an entry came to exist.
type Source string

const (
	SourceManual             Source = "MANUAL"
	SourceCurrencyAdjustment Source = "CURRENCY_ADJUSTMENT"
	SourceSystem             Source = "SYSTEM"
)

// JournalEntry is one balanced ledger transaction.
type JournalEntry struct {
	ID             int64           `json:"id"`
	Number         string          `json:"number"`
	CompanyID      int64           `json:"company_id"`
	Module         shared.Module   `json:"module"`
	Date           time.Time       `json:"date"`
	Currency       string          `json:"currency"`
	ExchangeRate   decimal.Decimal `json:"exchange_rate"`
	Lines          []LineItem      `json:"lines"`
	TotalDebit     decimal.Decimal `json:"total_debit"`
	TotalCredit    decimal.Decimal `json:"total_credit"`
	Status         Status          `json:"status"`
	Source         Source          `json:"source"`
	SourceRef      *uuid.UUID      `json:"source_ref,omitempty"`
	CreatedBy      int64           `json:"created_by"`
	ApprovedBy     *int64          `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time      `json:"approved_at,omitempty"`
	ReversalOfID   *int64          `json:"reversal_of_id,omitempty"`
	ReversedByID   *int64          `json:"reversed_by_id,omitempty"`
	ReversalReason string          `json:"reversal_reason,omitempty"`
	ReversedAt     *time.Time      `json:"reversed_at,omitempty"`
	Description    string          `json:"description"`
	Reference      string          `json:"reference"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// LineItem is one debit or credit leg of an entry.
type LineItem struct {
	ID           int64           `json:"id"`
	EntryID      int64           `json:"entry_id"`
	AccountID    int64           `json:"account_id"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	Currency     string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	BaseAmount   decimal.Decimal `json:"base_amount"`
	Description  string          `json:"description"`
}

// LineInput is a proposed line before validation.
type LineInput struct {
	AccountID    int64
	Debit        decimal.Decimal
	Credit       decimal.Decimal
	Currency     string
	ExchangeRate decimal.Decimal
	Description  string
}

// Totals are the normalized sums of a validated set of lines.
type Totals struct {
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
}

// Header carries the descriptive fields shared by every entry source.
type Header struct {
	CompanyID    int64
	Module       shared.Module
	Date         time.Time
	Currency     string
	ExchangeRate decimal.Decimal
	Description  string
	Reference    string
	ActorID      int64
}

// NewManualEntry builds a Draft entry keyed in by a user.
func NewManualEntry(h Header, lines []LineInput) JournalEntry {
	if h.Module == "" {
		h.Module = shared.ModuleAccountant
	}
	return newEntry(h, SourceManual, StatusDraft, lines)
}

// NewCurrencyAdjustmentEntry builds a Posted entry booking an exchange difference.
// ref is the adjustment id and makes the posting idempotent.
func NewCurrencyAdjustmentEntry(h Header, ref uuid.UUID, lines []LineInput) JournalEntry {
	if h.Module == "" {
		h.Module = shared.ModuleBanking
	}
	entry := newEntry(h, SourceCurrencyAdjustment, StatusPosted, lines)
	entry.SourceRef = &ref
	return entry
}

// NewSystemEntry builds a Posted entry generated by the ledger itself.
func NewSystemEntry(h Header, lines []LineInput) JournalEntry {
	if h.Module == "" {
		h.Module = shared.ModuleAccountant
	}
	return newEntry(h, SourceSystem, StatusPosted, lines)
}

func newEntry(h Header, source Source, status Status, lines []LineInput) JournalEntry {
	rate := h.ExchangeRate
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}
	entry := JournalEntry{
		CompanyID:    h.CompanyID,
		Module:       h.Module,
		Date:         shared.DateOnly(h.Date),
		Currency:     h.Currency,
		ExchangeRate: rate,
		Status:       status,
		Source:       source,
		CreatedBy:    h.ActorID,
		Description:  h.Description,
		Reference:    h.Reference,
	}
	entry.Lines = toLineItems(lines, entry.Currency, entry.ExchangeRate)
	return entry
}

// Inputs returns the entry's lines in proposal form, for re-validation.
func (e JournalEntry) Inputs() []LineInput {
	out := make([]LineInput, 0, len(e.Lines))
	for _, line := range e.Lines {
		out = append(out, LineInput{
			AccountID:    line.AccountID,
			Debit:        line.Debit,
			Credit:       line.Credit,
			Currency:     line.Currency,
			ExchangeRate: line.ExchangeRate,
			Description:  line.Description,
		})
	}
	return out
}

func toLineItems(lines []LineInput, currency string, rate decimal.Decimal) []LineItem {
	out := make([]LineItem, 0, len(lines))
	for _, line := range lines {
		item := LineItem{
			AccountID:    line.AccountID,
			Debit:        shared.RoundAmount(line.Debit),
			Credit:       shared.RoundAmount(line.Credit),
			Currency:     line.Currency,
			ExchangeRate: line.ExchangeRate,
			Description:  line.Description,
		}
		if item.Currency == "" {
			item.Currency = currency
		}
		if item.ExchangeRate.IsZero() {
			item.ExchangeRate = rate
		}
		item.BaseAmount = shared.RoundAmount(item.Debit.Add(item.Credit).Mul(item.ExchangeRate))
		out = append(out, item)
	}
	return out
}

// CreateInput creates a manual Draft entry.
type CreateInput struct {
	Header
	Lines []LineInput
}

// UpdateInput replaces the contents of a Draft entry.
type UpdateInput struct {
	EntryID int64
	Header
	Lines []LineInput
}

// PostInput approves a Draft entry.
type PostInput struct {
	EntryID   int64
	CompanyID int64
	ActorID   int64
}

// DeleteInput removes a Draft entry.
type DeleteInput struct {
	EntryID   int64
	CompanyID int64
	ActorID   int64
}

// ReverseInput cancels a Posted entry with a mirrored one.
type ReverseInput struct {
	EntryID   int64
	CompanyID int64
	ActorID   int64
	Reason    string
}

// ReverseResult holds both sides of a reversal.
type ReverseResult struct {
	Original JournalEntry `json:"original"`
	Reversal JournalEntry `json:"reversal"`
}

// ListFilter narrows entry listings. Zero values mean no restriction.
type ListFilter struct {
	CompanyID      int64
	Module         shared.Module
	Status         Status
	From           *time.Time
	To             *time.Time
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// Balance is an account balance derived from posted lines.
type Balance struct {
	AccountID int64           `json:"account_id"`
	AsOf      time.Time       `json:"as_of"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	// Net is signed by the account's normal side.
	Net decimal.Decimal `json:"net"`
}
