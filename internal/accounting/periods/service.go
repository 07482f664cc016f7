package periods

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

// AuditPort records lock events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// Service is the period lock registry.
type Service struct {
	repo   Repository
	audit  AuditPort
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the registry.
func NewService(repo Repository, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Lock creates an active full lock for the module.
func (s *Service) Lock(ctx context.Context, in LockInput) (Lock, error) {
	now := s.now()
	if err := in.Validate(now); err != nil {
		return Lock{}, err
	}
	var lock Lock
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		_, exists, err := tx.ActiveLockForUpdate(ctx, in.CompanyID, in.Module)
		if err != nil {
			return err
		}
		if exists {
			return shared.ErrAlreadyLocked
		}
		lock, err = tx.InsertLock(ctx, Lock{
			CompanyID: in.CompanyID,
			Module:    in.Module,
			Kind:      LockKindFull,
			LockDate:  shared.DateOnly(in.Date),
			Reason:    strings.TrimSpace(in.Reason),
			LockedBy:  in.ActorID,
			LockedAt:  now,
		})
		return err
	})
	if err != nil {
		return Lock{}, err
	}
	s.record(ctx, in.ActorID, "period_lock.lock", lock, map[string]any{
		"lock_date": lock.LockDate.Format(shared.DateLayout),
		"reason":    lock.Reason,
	})
	return lock, nil
}

// EditLock moves the lock date of the active lock. Exception windows are kept.
func (s *Service) EditLock(ctx context.Context, in EditLockInput) (Lock, error) {
	now := s.now()
	if err := in.Validate(now); err != nil {
		return Lock{}, err
	}
	var lock Lock
	var previous time.Time
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, exists, err := tx.ActiveLockForUpdate(ctx, in.CompanyID, in.Module)
		if err != nil {
			return err
		}
		if !exists {
			return shared.ErrLockNotFound
		}
		previous = current.LockDate
		current.LockDate = shared.DateOnly(in.Date)
		current.Reason = strings.TrimSpace(in.Reason)
		if err := tx.UpdateLock(ctx, current); err != nil {
			return err
		}
		current.UpdatedAt = now
		lock = current
		return nil
	})
	if err != nil {
		return Lock{}, err
	}
	s.record(ctx, in.ActorID, "period_lock.edit", lock, map[string]any{
		"previous_lock_date": previous.Format(shared.DateLayout),
		"lock_date":          lock.LockDate.Format(shared.DateLayout),
		"reason":             lock.Reason,
	})
	return lock, nil
}

// Unlock deactivates the active lock; the record stays as history.
func (s *Service) Unlock(ctx context.Context, in UnlockInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	now := s.now()
	var lock Lock
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, exists, err := tx.ActiveLockForUpdate(ctx, in.CompanyID, in.Module)
		if err != nil {
			return err
		}
		if !exists {
			return shared.ErrLockNotFound
		}
		lock = current
		return tx.DeactivateLock(ctx, current.ID, in.ActorID, strings.TrimSpace(in.Reason), now)
	})
	if err != nil {
		return err
	}
	s.record(ctx, in.ActorID, "period_lock.unlock", lock, map[string]any{"reason": in.Reason})
	return nil
}

// UnlockPartially records an exception window inside the active lock.
func (s *Service) UnlockPartially(ctx context.Context, in PartialUnlockInput) (Lock, error) {
	if err := in.Validate(); err != nil {
		return Lock{}, err
	}
	now := s.now()
	from, to := shared.DateOnly(in.FromDate), shared.DateOnly(in.ToDate)
	var lock Lock
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, exists, err := tx.ActiveLockForUpdate(ctx, in.CompanyID, in.Module)
		if err != nil {
			return err
		}
		if !exists {
			return shared.ErrLockNotFound
		}
		if to.After(current.LockDate) {
			return shared.Validationf("window must end on or before lock date %s", current.LockDate.Format(shared.DateLayout))
		}
		ex, err := tx.InsertException(ctx, Exception{
			LockID:    current.ID,
			FromDate:  from,
			ToDate:    to,
			Reason:    strings.TrimSpace(in.Reason),
			CreatedBy: in.ActorID,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}
		current.Kind = LockKindPartiallyUnlocked
		if err := tx.UpdateLock(ctx, current); err != nil {
			return err
		}
		current.Exceptions = append(current.Exceptions, ex)
		lock = current
		return nil
	})
	if err != nil {
		return Lock{}, err
	}
	s.record(ctx, in.ActorID, "period_lock.partial_unlock", lock, map[string]any{
		"from_date": from.Format(shared.DateLayout),
		"to_date":   to.Format(shared.DateLayout),
		"reason":    in.Reason,
	})
	return lock, nil
}

// IsDateLocked reports whether writes dated date are rejected for the module.
// It is a display read and is not linearizable with in-flight writes.
func (s *Service) IsDateLocked(ctx context.Context, companyID int64, module shared.Module, date time.Time) (bool, error) {
	lock, ok, err := s.repo.ActiveLock(ctx, companyID, module)
	if err != nil {
		return false, err
	}
	return ok && lock.Covers(date), nil
}

// ActiveLock returns the active lock for the module.
func (s *Service) ActiveLock(ctx context.Context, companyID int64, module shared.Module) (Lock, error) {
	lock, ok, err := s.repo.ActiveLock(ctx, companyID, module)
	if err != nil {
		return Lock{}, err
	}
	if !ok {
		return Lock{}, shared.ErrLockNotFound
	}
	return lock, nil
}

// History lists every lock record for the module, newest first.
func (s *Service) History(ctx context.Context, companyID int64, module shared.Module) ([]Lock, error) {
	return s.repo.History(ctx, companyID, module)
}

func (s *Service) record(ctx context.Context, actorID int64, action string, lock Lock, meta map[string]any) {
	s.logger.Info("period lock changed",
		slog.String("action", action),
		slog.Int64("company_id", lock.CompanyID),
		slog.String("module", string(lock.Module)))
	if s.audit == nil {
		return
	}
	meta["module"] = string(lock.Module)
	meta["company_id"] = lock.CompanyID
	if err := s.audit.Record(ctx, internalShared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "period_lock",
		EntityID: fmt.Sprintf("%d", lock.ID),
		Meta:     meta,
		At:       s.now(),
	}); err != nil {
		s.logger.Warn("audit period lock", slog.String("action", action), slog.Any("error", err))
	}
}
