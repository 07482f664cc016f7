package journals

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/periods"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

type lockKey struct {
	companyID int64
	module    shared.Module
}

type memoryRepo struct {
	entries map[int64]JournalEntry
	links   map[string]int64
	locks   map[lockKey]periods.Lock
	nextID  int64
	failTx  error
	clock   func() time.Time
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		entries: map[int64]JournalEntry{},
		links:   map[string]int64{},
		locks:   map[lockKey]periods.Lock{},
		clock:   func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) },
	}
}

func (r *memoryRepo) lock(companyID int64, module shared.Module, lockDate time.Time, windows ...periods.Exception) {
	kind := periods.LockKindFull
	if len(windows) > 0 {
		kind = periods.LockKindPartiallyUnlocked
	}
	r.locks[lockKey{companyID, module}] = periods.Lock{
		ID: 1, CompanyID: companyID, Module: module, Kind: kind, LockDate: lockDate, Active: true, Exceptions: windows,
	}
}

func cloneEntry(e JournalEntry) JournalEntry {
	e.Lines = append([]LineItem(nil), e.Lines...)
	return e
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r.failTx != nil {
		return r.failTx
	}
	entries := make(map[int64]JournalEntry, len(r.entries))
	for id, e := range r.entries {
		entries[id] = cloneEntry(e)
	}
	links := make(map[string]int64, len(r.links))
	for k, v := range r.links {
		links[k] = v
	}
	nextID := r.nextID
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.entries, r.links, r.nextID = entries, links, nextID
		return err
	}
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (JournalEntry, error) {
	e, ok := r.entries[id]
	if !ok {
		return JournalEntry{}, shared.ErrJournalNotFound
	}
	return cloneEntry(e), nil
}

func (r *memoryRepo) List(ctx context.Context, filter ListFilter) ([]JournalEntry, error) {
	var out []JournalEntry
	for _, e := range r.entries {
		if filter.CompanyID != 0 && e.CompanyID != filter.CompanyID {
			continue
		}
		if filter.Module != "" && e.Module != filter.Module {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.Status == "" && !filter.IncludeDeleted && e.Status == StatusDeleted {
			continue
		}
		if filter.From != nil && e.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.Date.After(*filter.To) {
			continue
		}
		out = append(out, cloneEntry(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memoryRepo) SumAccount(ctx context.Context, companyID, accountID int64, asOf time.Time) (decimal.Decimal, decimal.Decimal, error) {
	debit, credit := decimal.Zero, decimal.Zero
	for _, e := range r.entries {
		if e.CompanyID != companyID || e.Date.After(shared.DateOnly(asOf)) {
			continue
		}
		if e.Status != StatusPosted && e.Status != StatusReversed {
			continue
		}
		for _, l := range e.Lines {
			if l.AccountID == accountID {
				debit = debit.Add(l.Debit)
				credit = credit.Add(l.Credit)
			}
		}
	}
	return debit, credit, nil
}

type memoryTx struct {
	repo *memoryRepo
}

func (tx *memoryTx) ActiveLockForShare(ctx context.Context, companyID int64, module shared.Module) (periods.Lock, bool, error) {
	l, ok := tx.repo.locks[lockKey{companyID, module}]
	return l, ok && l.Active, nil
}

// checkTotals mirrors chk_journal_entries_totals.
func checkTotals(entry JournalEntry) error {
	if entry.Status == StatusDraft || entry.Status == StatusDeleted {
		return nil
	}
	if !shared.WithinTolerance(entry.TotalDebit, entry.TotalCredit) {
		return shared.ErrUnbalanced
	}
	return nil
}

func (tx *memoryTx) InsertEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error) {
	if err := checkTotals(entry); err != nil {
		return JournalEntry{}, err
	}
	tx.repo.nextID++
	entry.ID = tx.repo.nextID
	entry.Number = fmt.Sprintf("JE-%06d", entry.ID)
	entry.CreatedAt = tx.repo.clock()
	entry.UpdatedAt = entry.CreatedAt
	entry = cloneEntry(entry)
	for i := range entry.Lines {
		entry.Lines[i].EntryID = entry.ID
	}
	tx.repo.entries[entry.ID] = entry
	return cloneEntry(entry), nil
}

func (tx *memoryTx) GetForUpdate(ctx context.Context, id int64) (JournalEntry, error) {
	return tx.repo.Get(ctx, id)
}

func (tx *memoryTx) UpdateDraft(ctx context.Context, entry JournalEntry) error {
	current, ok := tx.repo.entries[entry.ID]
	if !ok {
		return shared.ErrJournalNotFound
	}
	if current.Status != StatusDraft {
		return shared.InvalidStatef("entry %d is not a draft", entry.ID)
	}
	entry.Status = StatusDraft
	entry.Source = current.Source
	tx.repo.entries[entry.ID] = cloneEntry(entry)
	return nil
}

func (tx *memoryTx) UpdateStatus(ctx context.Context, entry JournalEntry) error {
	current, ok := tx.repo.entries[entry.ID]
	if !ok {
		return shared.ErrJournalNotFound
	}
	current.Status = entry.Status
	current.ApprovedBy = entry.ApprovedBy
	current.ApprovedAt = entry.ApprovedAt
	current.ReversedByID = entry.ReversedByID
	current.ReversalReason = entry.ReversalReason
	current.ReversedAt = entry.ReversedAt
	current.TotalDebit, current.TotalCredit = entry.TotalDebit, entry.TotalCredit
	if err := checkTotals(current); err != nil {
		return err
	}
	tx.repo.entries[entry.ID] = current
	return nil
}

func (tx *memoryTx) LinkSource(ctx context.Context, source Source, ref uuid.UUID, entryID int64) error {
	key := string(source) + ":" + ref.String()
	if _, ok := tx.repo.links[key]; ok {
		return shared.ErrSourceAlreadyLinked
	}
	tx.repo.links[key] = entryID
	return nil
}
