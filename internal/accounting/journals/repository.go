package journals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/periods"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
)

// Repository encapsulates DB operations for journals.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (JournalEntry, error)
	List(ctx context.Context, filter ListFilter) ([]JournalEntry, error)
	SumAccount(ctx context.Context, companyID, accountID int64, asOf time.Time) (debit, credit decimal.Decimal, err error)
}

// TxRepository exposes methods available within a transaction. It reads period
// locks through the same transaction so the gate and the write commit together.
type TxRepository interface {
	periods.LockReader
	InsertEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error)
	GetForUpdate(ctx context.Context, id int64) (JournalEntry, error)
	UpdateDraft(ctx context.Context, entry JournalEntry) error
	UpdateStatus(ctx context.Context, entry JournalEntry) error
	LinkSource(ctx context.Context, source Source, ref uuid.UUID, entryID int64) error
}

type repository struct {
	db      *pgxpool.Pool
	retries int
}

// NewRepository constructs the pgx-backed entry store. retries bounds automatic
// re-execution of a transaction aborted by a serialization failure.
func NewRepository(pool *pgxpool.Pool, retries int) Repository {
	return &repository{db: pool, retries: retries}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	err := db.RetryConflict(ctx, r.retries, func() error {
		return db.WithSerializableTx(ctx, r.db, func(tx pgx.Tx) error {
			return fn(ctx, &txRepository{tx: tx})
		})
	})
	return shared.FromTxError(err)
}

const entryColumns = `id, number, company_id, module, date, currency, exchange_rate, total_debit, total_credit,
status, source, source_ref, COALESCE(created_by, 0), approved_by, approved_at, reversal_of_id, reversed_by_id,
COALESCE(reversal_reason, ''), reversed_at, description, reference, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (JournalEntry, error) {
	return loadEntry(ctx, r.db, id, "")
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]JournalEntry, error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, val any) {
		args = append(args, val)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if filter.CompanyID != 0 {
		add("company_id=$%d", filter.CompanyID)
	}
	if filter.Module != "" {
		add("module=$%d", filter.Module)
	}
	if filter.Status != "" {
		add("status=$%d", filter.Status)
	} else if !filter.IncludeDeleted {
		add("status<>$%d", StatusDeleted)
	}
	if filter.From != nil {
		add("date>=$%d", shared.DateOnly(*filter.From))
	}
	if filter.To != nil {
		add("date<=$%d", shared.DateOnly(*filter.To))
	}
	query := `SELECT ` + entryColumns + ` FROM journal_entries`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *repository) SumAccount(ctx context.Context, companyID, accountID int64, asOf time.Time) (decimal.Decimal, decimal.Decimal, error) {
	var debit, credit decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
FROM journal_lines l JOIN journal_entries e ON e.id = l.entry_id
WHERE e.company_id=$1 AND l.account_id=$2 AND e.date<=$3 AND e.status IN ('POSTED','REVERSED')`,
		companyID, accountID, shared.DateOnly(asOf)).Scan(&debit, &credit)
	return debit, credit, err
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) ActiveLockForShare(ctx context.Context, companyID int64, module shared.Module) (periods.Lock, bool, error) {
	return periods.LoadActiveLock(ctx, r.tx, companyID, module, "FOR SHARE")
}

func (r *txRepository) InsertEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO journal_entries (number, company_id, module, date, currency, exchange_rate,
total_debit, total_credit, status, source, source_ref, created_by, approved_by, approved_at, reversal_of_id, description, reference)
VALUES ('JE-' || LPAD(nextval('journal_entry_number_seq')::text, 6, '0'), $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
RETURNING id, number, created_at, updated_at`,
		entry.CompanyID, entry.Module, entry.Date, entry.Currency, entry.ExchangeRate,
		entry.TotalDebit, entry.TotalCredit, entry.Status, entry.Source, entry.SourceRef,
		nullInt(entry.CreatedBy), entry.ApprovedBy, entry.ApprovedAt, entry.ReversalOfID,
		entry.Description, entry.Reference)
	if err := row.Scan(&entry.ID, &entry.Number, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		return JournalEntry{}, fromConstraintError(err)
	}
	if err := r.insertLines(ctx, entry.ID, entry.Lines); err != nil {
		return JournalEntry{}, err
	}
	for i := range entry.Lines {
		entry.Lines[i].EntryID = entry.ID
	}
	return entry, nil
}

func (r *txRepository) insertLines(ctx context.Context, entryID int64, lines []LineItem) error {
	for idx, line := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO journal_lines (entry_id, line_no, account_id, debit, credit, currency, exchange_rate, base_amount, description)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`, entryID, idx+1, line.AccountID, line.Debit, line.Credit,
			line.Currency, line.ExchangeRate, line.BaseAmount, line.Description); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) GetForUpdate(ctx context.Context, id int64) (JournalEntry, error) {
	return loadEntry(ctx, r.tx, id, "FOR UPDATE")
}

func (r *txRepository) UpdateDraft(ctx context.Context, entry JournalEntry) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET module=$2, date=$3, currency=$4, exchange_rate=$5,
total_debit=$6, total_credit=$7, description=$8, reference=$9, updated_at=NOW()
WHERE id=$1 AND status='DRAFT'`, entry.ID, entry.Module, entry.Date, entry.Currency, entry.ExchangeRate,
		entry.TotalDebit, entry.TotalCredit, entry.Description, entry.Reference)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.InvalidStatef("entry %d is not a draft", entry.ID)
	}
	if _, err := r.tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id=$1`, entry.ID); err != nil {
		return err
	}
	return r.insertLines(ctx, entry.ID, entry.Lines)
}

func (r *txRepository) UpdateStatus(ctx context.Context, entry JournalEntry) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET status=$2, approved_by=$3, approved_at=$4,
reversed_by_id=$5, reversal_reason=$6, reversed_at=$7, updated_at=NOW() WHERE id=$1`,
		entry.ID, entry.Status, entry.ApprovedBy, entry.ApprovedAt, entry.ReversedByID,
		nullString(entry.ReversalReason), entry.ReversedAt)
	if err != nil {
		return fromConstraintError(err)
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrJournalNotFound
	}
	return nil
}

func (r *txRepository) LinkSource(ctx context.Context, source Source, ref uuid.UUID, entryID int64) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO source_links (source, ref_id, entry_id) VALUES ($1,$2,$3)`, source, ref, entryID)
	if err != nil {
		if db.IsUniqueViolation(err, "uq_source_links") {
			return shared.ErrSourceAlreadyLinked
		}
		return err
	}
	return nil
}

// fromConstraintError surfaces the stored balance check as ErrUnbalanced.
func fromConstraintError(err error) error {
	if db.IsCheckViolation(err, "chk_journal_entries_totals") {
		return fmt.Errorf("%w: %v", shared.ErrUnbalanced, err)
	}
	return err
}

func loadEntry(ctx context.Context, q periods.Querier, id int64, rowLock string) (JournalEntry, error) {
	entry, err := scanEntry(q.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id=$1 `+rowLock, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, shared.ErrJournalNotFound
		}
		return JournalEntry{}, err
	}
	rows, err := q.Query(ctx, `SELECT id, entry_id, account_id, debit, credit, currency, exchange_rate, base_amount, description
FROM journal_lines WHERE entry_id=$1 ORDER BY line_no ASC`, id)
	if err != nil {
		return JournalEntry{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line LineItem
		if err := rows.Scan(&line.ID, &line.EntryID, &line.AccountID, &line.Debit, &line.Credit,
			&line.Currency, &line.ExchangeRate, &line.BaseAmount, &line.Description); err != nil {
			return JournalEntry{}, err
		}
		entry.Lines = append(entry.Lines, line)
	}
	return entry, rows.Err()
}

func scanEntry(row pgx.Row) (JournalEntry, error) {
	var e JournalEntry
	err := row.Scan(&e.ID, &e.Number, &e.CompanyID, &e.Module, &e.Date, &e.Currency, &e.ExchangeRate,
		&e.TotalDebit, &e.TotalCredit, &e.Status, &e.Source, &e.SourceRef, &e.CreatedBy, &e.ApprovedBy,
		&e.ApprovedAt, &e.ReversalOfID, &e.ReversedByID, &e.ReversalReason, &e.ReversedAt,
		&e.Description, &e.Reference, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func nullInt(val int64) any {
	if val == 0 {
		return nil
	}
	return val
}

func nullString(val string) any {
	if val == "" {
		return nil
	}
	return val
}
