package journals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/periods"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// Observer receives ledger write outcomes, typically for metrics.
type Observer interface {
	EntryPosted(source string)
	TxConflict(operation string)
}

// Service drives the entry lifecycle: draft, post, delete and reverse.
type Service struct {
	repo     Repository
	registry accounts.Registry
	enforcer *periods.Enforcer
	audit    AuditPort
	observer Observer
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo Repository, registry accounts.Registry, enforcer *periods.Enforcer, audit AuditPort, logger *slog.Logger) *Service {
	if enforcer == nil {
		enforcer = periods.NewEnforcer(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, registry: registry, enforcer: enforcer, audit: audit, logger: logger, now: time.Now}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithObserver attaches an outcome observer.
func (s *Service) WithObserver(o Observer) {
	s.observer = o
}

// CreateManual validates the lines and stores a Draft. Drafts are not binding
// so the period lock is not consulted here.
func (s *Service) CreateManual(ctx context.Context, in CreateInput) (JournalEntry, error) {
	if err := validateHeader(in.Header); err != nil {
		return JournalEntry{}, err
	}
	entry := NewManualEntry(in.Header, in.Lines)
	totals, err := ValidateLines(ctx, s.registry, in.Lines)
	if err != nil {
		return JournalEntry{}, err
	}
	entry.TotalDebit, entry.TotalCredit = totals.Debit, totals.Credit
	var created JournalEntry
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inserted, err := tx.InsertEntry(ctx, entry)
		if err != nil {
			return err
		}
		created = inserted
		return nil
	})
	if err != nil {
		return JournalEntry{}, s.fail("journal.create", 0, err)
	}
	s.record(ctx, in.ActorID, "journal.create", created, nil)
	return created, nil
}

// UpdateDraft replaces header and lines of a Draft entry.
func (s *Service) UpdateDraft(ctx context.Context, in UpdateInput) (JournalEntry, error) {
	if in.EntryID == 0 {
		return JournalEntry{}, shared.Validationf("entry id required")
	}
	if err := validateHeader(in.Header); err != nil {
		return JournalEntry{}, err
	}
	totals, err := ValidateLines(ctx, s.registry, in.Lines)
	if err != nil {
		return JournalEntry{}, err
	}
	var updated JournalEntry
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := s.loadOwned(ctx, tx, in.EntryID, in.CompanyID)
		if err != nil {
			return err
		}
		if current.Status != StatusDraft {
			return shared.InvalidStatef("cannot edit %s entry %s", current.Status, current.Number)
		}
		next := NewManualEntry(in.Header, in.Lines)
		next.ID = current.ID
		next.Number = current.Number
		next.CreatedBy = current.CreatedBy
		next.CreatedAt = current.CreatedAt
		next.TotalDebit, next.TotalCredit = totals.Debit, totals.Credit
		if err := tx.UpdateDraft(ctx, next); err != nil {
			return err
		}
		next.UpdatedAt = s.now()
		for i := range next.Lines {
			next.Lines[i].EntryID = next.ID
		}
		updated = next
		return nil
	})
	if err != nil {
		return JournalEntry{}, s.fail("journal.edit", in.EntryID, err)
	}
	s.record(ctx, in.ActorID, "journal.edit", updated, nil)
	return updated, nil
}

// Post approves a Draft. Validation, the lock gate and the status change
// commit in one transaction.
func (s *Service) Post(ctx context.Context, in PostInput) (JournalEntry, error) {
	if in.EntryID == 0 {
		return JournalEntry{}, shared.Validationf("entry id required")
	}
	var posted JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := s.loadOwned(ctx, tx, in.EntryID, in.CompanyID)
		if err != nil {
			return err
		}
		if !CanTransition(current.Status, StatusPosted) {
			return shared.InvalidStatef("cannot post %s entry %s", current.Status, current.Number)
		}
		totals, err := ValidateLines(ctx, accounts.Fresh(s.registry), current.Inputs())
		if err != nil {
			return err
		}
		if err := s.enforcer.EnsureWritable(ctx, tx, current.CompanyID, current.Module, current.Date); err != nil {
			return err
		}
		now := s.now()
		actor := in.ActorID
		current.Status = StatusPosted
		current.ApprovedBy = &actor
		current.ApprovedAt = &now
		current.TotalDebit, current.TotalCredit = totals.Debit, totals.Credit
		if err := tx.UpdateStatus(ctx, current); err != nil {
			return err
		}
		posted = current
		return nil
	})
	if err != nil {
		return JournalEntry{}, s.fail("journal.post", in.EntryID, err)
	}
	s.posted(posted)
	s.record(ctx, in.ActorID, "journal.post", posted, nil)
	return posted, nil
}

// DeleteDraft soft-deletes a Draft. The row is kept for history and hidden from reads.
func (s *Service) DeleteDraft(ctx context.Context, in DeleteInput) error {
	if in.EntryID == 0 {
		return shared.Validationf("entry id required")
	}
	var deleted JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := s.loadOwned(ctx, tx, in.EntryID, in.CompanyID)
		if err != nil {
			return err
		}
		if !CanTransition(current.Status, StatusDeleted) {
			return shared.InvalidStatef("cannot delete %s entry %s", current.Status, current.Number)
		}
		if err := s.enforcer.EnsureWritable(ctx, tx, current.CompanyID, current.Module, current.Date); err != nil {
			return err
		}
		current.Status = StatusDeleted
		if err := tx.UpdateStatus(ctx, current); err != nil {
			return err
		}
		deleted = current
		return nil
	})
	if err != nil {
		return s.fail("journal.delete", in.EntryID, err)
	}
	s.record(ctx, in.ActorID, "journal.delete", deleted, nil)
	return nil
}

// PostSystem stores a system or currency adjustment entry directly as Posted.
// An entry carrying a SourceRef can be posted once.
func (s *Service) PostSystem(ctx context.Context, entry JournalEntry) (JournalEntry, error) {
	if entry.Source != SourceSystem && entry.Source != SourceCurrencyAdjustment {
		return JournalEntry{}, shared.InvalidStatef("source %s cannot bypass draft", entry.Source)
	}
	if entry.Status != StatusPosted {
		return JournalEntry{}, shared.InvalidStatef("system entry must be %s", StatusPosted)
	}
	if entry.CompanyID == 0 {
		return JournalEntry{}, shared.Validationf("company id required")
	}
	totals, err := ValidateLines(ctx, accounts.Fresh(s.registry), entry.Inputs())
	if err != nil {
		return JournalEntry{}, err
	}
	entry.TotalDebit, entry.TotalCredit = totals.Debit, totals.Credit
	var posted JournalEntry
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := s.enforcer.EnsureWritable(ctx, tx, entry.CompanyID, entry.Module, entry.Date); err != nil {
			return err
		}
		now := s.now()
		candidate := entry
		approver := candidate.CreatedBy
		candidate.ApprovedBy = &approver
		candidate.ApprovedAt = &now
		inserted, err := tx.InsertEntry(ctx, candidate)
		if err != nil {
			return err
		}
		if inserted.SourceRef != nil {
			if err := tx.LinkSource(ctx, inserted.Source, *inserted.SourceRef, inserted.ID); err != nil {
				return err
			}
		}
		posted = inserted
		return nil
	})
	if err != nil {
		return JournalEntry{}, s.fail("journal.post_system", 0, err)
	}
	s.posted(posted)
	meta := map[string]any{"source": string(posted.Source)}
	if posted.SourceRef != nil {
		meta["source_ref"] = posted.SourceRef.String()
	}
	s.record(ctx, posted.CreatedBy, "journal.post_system", posted, meta)
	return posted, nil
}

// Reverse cancels a Posted entry with a mirrored Posted entry dated today.
// The original and the reversal commit together.
func (s *Service) Reverse(ctx context.Context, in ReverseInput) (ReverseResult, error) {
	if in.EntryID == 0 {
		return ReverseResult{}, shared.Validationf("entry id required")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return ReverseResult{}, shared.Validationf("reversal reason required")
	}
	var result ReverseResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		original, err := s.loadOwned(ctx, tx, in.EntryID, in.CompanyID)
		if err != nil {
			return err
		}
		if !CanTransition(original.Status, StatusReversed) {
			return shared.InvalidStatef("cannot reverse %s entry %s", original.Status, original.Number)
		}
		now := s.now()
		reversal := BuildReversal(original, in.ActorID, now)
		// Accounts may have been deactivated since the original posted; only
		// the structure and balance of the mirror are checked.
		totals, err := ValidateLines(ctx, nil, reversal.Inputs())
		if err != nil {
			return err
		}
		if err := s.enforcer.EnsureWritable(ctx, tx, reversal.CompanyID, reversal.Module, reversal.Date); err != nil {
			return err
		}
		actor := in.ActorID
		reversal.TotalDebit, reversal.TotalCredit = totals.Debit, totals.Credit
		reversal.ApprovedBy = &actor
		reversal.ApprovedAt = &now
		inserted, err := tx.InsertEntry(ctx, reversal)
		if err != nil {
			return err
		}
		reversedBy := inserted.ID
		original.Status = StatusReversed
		original.ReversedByID = &reversedBy
		original.ReversalReason = strings.TrimSpace(in.Reason)
		original.ReversedAt = &now
		if err := tx.UpdateStatus(ctx, original); err != nil {
			return err
		}
		result = ReverseResult{Original: original, Reversal: inserted}
		return nil
	})
	if err != nil {
		return ReverseResult{}, s.fail("journal.reverse", in.EntryID, err)
	}
	s.posted(result.Reversal)
	s.record(ctx, in.ActorID, "journal.reverse", result.Original, map[string]any{
		"reversal_id":     result.Reversal.ID,
		"reversal_number": result.Reversal.Number,
		"reason":          result.Original.ReversalReason,
	})
	return result, nil
}

// Get returns a visible entry of the company. Deleted drafts are not visible.
func (s *Service) Get(ctx context.Context, companyID, id int64) (JournalEntry, error) {
	entry, err := s.repo.Get(ctx, id)
	if err != nil {
		return JournalEntry{}, err
	}
	if (companyID != 0 && entry.CompanyID != companyID) || entry.Status == StatusDeleted {
		return JournalEntry{}, shared.ErrJournalNotFound
	}
	return entry, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]JournalEntry, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, shared.Validationf("from date cannot be after to date")
	}
	return s.repo.List(ctx, filter)
}

// AccountBalance derives the balance of an account from posted and reversed
// entries dated on or before asOf.
func (s *Service) AccountBalance(ctx context.Context, companyID, accountID int64, asOf time.Time) (Balance, error) {
	account, err := s.registry.Resolve(ctx, accountID)
	if err != nil {
		return Balance{}, err
	}
	debit, credit, err := s.repo.SumAccount(ctx, companyID, accountID, asOf)
	if err != nil {
		return Balance{}, err
	}
	net := debit.Sub(credit)
	if account.NormalSide == accounts.NormalSideCredit {
		net = net.Neg()
	}
	return Balance{AccountID: accountID, AsOf: shared.DateOnly(asOf), Debit: debit, Credit: credit, Net: net}, nil
}

func (s *Service) loadOwned(ctx context.Context, tx TxRepository, id, companyID int64) (JournalEntry, error) {
	entry, err := tx.GetForUpdate(ctx, id)
	if err != nil {
		return JournalEntry{}, err
	}
	if companyID != 0 && entry.CompanyID != companyID {
		return JournalEntry{}, shared.ErrJournalNotFound
	}
	return entry, nil
}

func validateHeader(h Header) error {
	if h.CompanyID == 0 {
		return shared.Validationf("company id required")
	}
	if h.Date.IsZero() {
		return shared.Validationf("entry date required")
	}
	if strings.TrimSpace(h.Currency) == "" {
		return shared.Validationf("currency required")
	}
	if h.ExchangeRate.IsNegative() {
		return shared.Validationf("exchange rate cannot be negative")
	}
	if h.Module != "" {
		if _, err := shared.ParseModule(string(h.Module)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) fail(op string, entryID int64, err error) error {
	var locked *shared.PeriodLockedError
	switch {
	case errors.Is(err, shared.ErrConflict) && shared.IsRetryable(err):
		if s.observer != nil {
			s.observer.TxConflict(op)
		}
		s.logger.Warn("journal write conflict", slog.String("op", op), slog.Int64("entry_id", entryID), slog.Any("error", err))
	case errors.As(err, &locked), errors.Is(err, shared.ErrInvalidState):
		s.logger.Warn("journal transition rejected", slog.String("op", op), slog.Int64("entry_id", entryID), slog.Any("error", err))
	}
	return err
}

func (s *Service) posted(entry JournalEntry) {
	if s.observer != nil {
		s.observer.EntryPosted(string(entry.Source))
	}
	s.logger.Info("journal posted",
		slog.Int64("entry_id", entry.ID),
		slog.String("number", entry.Number),
		slog.String("source", string(entry.Source)),
		slog.String("module", string(entry.Module)))
}

func (s *Service) record(ctx context.Context, actorID int64, action string, entry JournalEntry, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if meta == nil {
		meta = map[string]any{}
	}
	meta["number"] = entry.Number
	meta["status"] = string(entry.Status)
	meta["company_id"] = entry.CompanyID
	if err := s.audit.Record(ctx, internalShared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "journal_entry",
		EntityID: fmt.Sprintf("%d", entry.ID),
		Meta:     meta,
		At:       s.now(),
	}); err != nil {
		s.logger.Warn("audit journal", slog.String("action", action), slog.Any("error", err))
	}
}
