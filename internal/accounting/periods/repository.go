package periods

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
)

// Querier is the subset of pgx shared by pools and transactions.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// LockReader reads the active lock inside the caller's transaction. The row is
// share-locked so a concurrent lock change conflicts with the gated write.
type LockReader interface {
	ActiveLockForShare(ctx context.Context, companyID int64, module shared.Module) (Lock, bool, error)
}

// Repository persists period locks.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ActiveLock(ctx context.Context, companyID int64, module shared.Module) (Lock, bool, error)
	History(ctx context.Context, companyID int64, module shared.Module) ([]Lock, error)
}

// TxRepository exposes methods available within a transaction.
type TxRepository interface {
	LockReader
	ActiveLockForUpdate(ctx context.Context, companyID int64, module shared.Module) (Lock, bool, error)
	InsertLock(ctx context.Context, lock Lock) (Lock, error)
	UpdateLock(ctx context.Context, lock Lock) error
	DeactivateLock(ctx context.Context, id, actorID int64, reason string, at time.Time) error
	InsertException(ctx context.Context, ex Exception) (Exception, error)
}

type repository struct {
	db      *pgxpool.Pool
	retries int
}

// NewRepository constructs the pgx-backed lock registry store. retries bounds
// automatic re-execution of a transaction aborted by a serialization failure.
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

func (r *repository) ActiveLock(ctx context.Context, companyID int64, module shared.Module) (Lock, bool, error) {
	return LoadActiveLock(ctx, r.db, companyID, module, "")
}

func (r *repository) History(ctx context.Context, companyID int64, module shared.Module) ([]Lock, error) {
	rows, err := r.db.Query(ctx, `SELECT `+lockColumns+` FROM period_locks
WHERE company_id=$1 AND module=$2 ORDER BY locked_at DESC, id DESC`, companyID, module)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var locks []Lock
	for rows.Next() {
		lock, err := scanLock(rows)
		if err != nil {
			return nil, err
		}
		locks = append(locks, lock)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range locks {
		if locks[i].Exceptions, err = loadExceptions(ctx, r.db, locks[i].ID); err != nil {
			return nil, err
		}
	}
	return locks, nil
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) ActiveLockForShare(ctx context.Context, companyID int64, module shared.Module) (Lock, bool, error) {
	return LoadActiveLock(ctx, r.tx, companyID, module, "FOR SHARE")
}

func (r *txRepository) ActiveLockForUpdate(ctx context.Context, companyID int64, module shared.Module) (Lock, bool, error) {
	return LoadActiveLock(ctx, r.tx, companyID, module, "FOR UPDATE")
}

func (r *txRepository) InsertLock(ctx context.Context, lock Lock) (Lock, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO period_locks (company_id, module, kind, lock_date, reason, locked_by, locked_at, active)
VALUES ($1,$2,$3,$4,$5,$6,$7,TRUE) RETURNING id, updated_at`,
		lock.CompanyID, lock.Module, lock.Kind, lock.LockDate, lock.Reason, nullInt(lock.LockedBy), lock.LockedAt)
	if err := row.Scan(&lock.ID, &lock.UpdatedAt); err != nil {
		if db.IsUniqueViolation(err, "uq_period_locks_active") {
			return Lock{}, shared.ErrAlreadyLocked
		}
		return Lock{}, err
	}
	lock.Active = true
	return lock, nil
}

func (r *txRepository) UpdateLock(ctx context.Context, lock Lock) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE period_locks SET kind=$2, lock_date=$3, reason=$4, updated_at=NOW()
WHERE id=$1 AND active`, lock.ID, lock.Kind, lock.LockDate, lock.Reason)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrLockNotFound
	}
	return nil
}

func (r *txRepository) DeactivateLock(ctx context.Context, id, actorID int64, reason string, at time.Time) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE period_locks SET active=FALSE, unlocked_by=$2, unlocked_at=$3, unlock_reason=$4, updated_at=NOW()
WHERE id=$1 AND active`, id, nullInt(actorID), at, reason)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrLockNotFound
	}
	return nil
}

func (r *txRepository) InsertException(ctx context.Context, ex Exception) (Exception, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO period_lock_exceptions (lock_id, from_date, to_date, reason, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`, ex.LockID, ex.FromDate, ex.ToDate, ex.Reason, nullInt(ex.CreatedBy), ex.CreatedAt)
	if err := row.Scan(&ex.ID); err != nil {
		return Exception{}, err
	}
	return ex, nil
}

const lockColumns = `id, company_id, module, kind, lock_date, reason, COALESCE(locked_by, 0), locked_at, active,
unlocked_by, unlocked_at, COALESCE(unlock_reason, ''), updated_at`

// LoadActiveLock reads the active lock and its exception windows through q.
// rowLock is appended to the lock select ("", "FOR SHARE" or "FOR UPDATE").
func LoadActiveLock(ctx context.Context, q Querier, companyID int64, module shared.Module, rowLock string) (Lock, bool, error) {
	row := q.QueryRow(ctx, `SELECT `+lockColumns+` FROM period_locks
WHERE company_id=$1 AND module=$2 AND active `+rowLock, companyID, module)
	lock, err := scanLock(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lock{}, false, nil
		}
		return Lock{}, false, err
	}
	if lock.Exceptions, err = loadExceptions(ctx, q, lock.ID); err != nil {
		return Lock{}, false, err
	}
	return lock, true, nil
}

func loadExceptions(ctx context.Context, q Querier, lockID int64) ([]Exception, error) {
	rows, err := q.Query(ctx, `SELECT id, lock_id, from_date, to_date, reason, COALESCE(created_by, 0), created_at
FROM period_lock_exceptions WHERE lock_id=$1 ORDER BY from_date, id`, lockID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Exception
	for rows.Next() {
		var ex Exception
		if err := rows.Scan(&ex.ID, &ex.LockID, &ex.FromDate, &ex.ToDate, &ex.Reason, &ex.CreatedBy, &ex.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

func scanLock(row pgx.Row) (Lock, error) {
	var l Lock
	err := row.Scan(&l.ID, &l.CompanyID, &l.Module, &l.Kind, &l.LockDate, &l.Reason, &l.LockedBy, &l.LockedAt, &l.Active,
		&l.UnlockedBy, &l.UnlockedAt, &l.UnlockReason, &l.UpdatedAt)
	return l, err
}

func nullInt(val int64) any {
	if val == 0 {
		return nil
	}
	return val
}
