package periods

import (
	"context"
	"time"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// RejectObserver is notified whenever the gate refuses a write.
type RejectObserver interface {
	LockRejected(module string)
}

// Enforcer is the single gate consulted by every entry-mutating path.
type Enforcer struct {
	observer RejectObserver
}

// NewEnforcer constructs an Enforcer. observer may be nil.
func NewEnforcer(observer RejectObserver) *Enforcer {
	return &Enforcer{observer: observer}
}

// IsWritable reports whether an entry dated date may be written to module.
// The returned lock is the active lock, if any.
func (e *Enforcer) IsWritable(ctx context.Context, r LockReader, companyID int64, module shared.Module, date time.Time) (bool, Lock, error) {
	lock, ok, err := r.ActiveLockForShare(ctx, companyID, module)
	if err != nil {
		return false, Lock{}, err
	}
	if !ok {
		return true, Lock{}, nil
	}
	return !lock.Covers(date), lock, nil
}

// EnsureWritable fails with *shared.PeriodLockedError when the date is locked.
func (e *Enforcer) EnsureWritable(ctx context.Context, r LockReader, companyID int64, module shared.Module, date time.Time) error {
	writable, lock, err := e.IsWritable(ctx, r, companyID, module, date)
	if err != nil {
		return err
	}
	if writable {
		return nil
	}
	if e != nil && e.observer != nil {
		e.observer.LockRejected(string(module))
	}
	return &shared.PeriodLockedError{Module: string(module), LockDate: lock.LockDate, Date: shared.DateOnly(date)}
}
