package shared

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrValidation indicates structural or balance problems in the request.
	ErrValidation = errors.New("accounting: validation failed")
	// ErrInvalidState indicates the requested transition is not allowed.
	ErrInvalidState = errors.New("accounting: invalid status transition")
	// ErrPeriodLocked indicates the write falls inside a locked period.
	ErrPeriodLocked = errors.New("accounting: period locked")
	// ErrNotFound indicates an unknown entry, lock or account.
	ErrNotFound = errors.New("accounting: not found")
	// ErrConfiguration indicates a required collaborator setting is missing.
	ErrConfiguration = errors.New("accounting: configuration missing")
	// ErrConflict indicates concurrent-write contention; callers may retry.
	ErrConflict = errors.New("accounting: concurrent update conflict")
)

var (
	// ErrUnbalanced indicates debit != credit.
	ErrUnbalanced = fmt.Errorf("%w: journal lines must balance", ErrValidation)
	// ErrTooFewLines indicates less than two lines.
	ErrTooFewLines = fmt.Errorf("%w: journal requires at least two lines", ErrValidation)
	// ErrJournalNotFound indicates missing entry.
	ErrJournalNotFound = fmt.Errorf("%w: journal entry", ErrNotFound)
	// ErrAccountNotFound indicates the account id does not resolve.
	ErrAccountNotFound = fmt.Errorf("%w: account", ErrNotFound)
	// ErrLockNotFound indicates no active lock exists for the module.
	ErrLockNotFound = fmt.Errorf("%w: active period lock", ErrNotFound)
	// ErrAlreadyLocked indicates an active lock already exists for the module.
	ErrAlreadyLocked = fmt.Errorf("%w: module already locked", ErrConflict)
	// ErrFutureLockDate indicates a lock date after today.
	ErrFutureLockDate = fmt.Errorf("%w: lock date cannot be in the future", ErrValidation)
	// ErrMappingNotFound indicates account mapping missing.
	ErrMappingNotFound = fmt.Errorf("%w: account mapping", ErrNotFound)
	// ErrSourceAlreadyLinked indicates idempotency conflict.
	ErrSourceAlreadyLinked = fmt.Errorf("%w: source already linked", ErrConflict)
)

// PeriodLockedError carries the boundary of the lock that rejected a write.
type PeriodLockedError struct {
	Module   string
	LockDate time.Time
	Date     time.Time
}

func (e *PeriodLockedError) Error() string {
	return fmt.Sprintf("accounting: period locked for %s through %s (entry date %s)",
		e.Module, e.LockDate.Format(DateLayout), e.Date.Format(DateLayout))
}

// Is lets errors.Is match ErrPeriodLocked.
func (e *PeriodLockedError) Is(target error) bool {
	return target == ErrPeriodLocked
}

// Validationf wraps ErrValidation with detail.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// InvalidStatef wraps ErrInvalidState with detail.
func InvalidStatef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

// IsRetryable reports whether the caller may retry the operation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict) && !errors.Is(err, ErrAlreadyLocked) && !errors.Is(err, ErrSourceAlreadyLinked)
}
