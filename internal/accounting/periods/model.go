package periods

import (
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// LockKind describes the shape of an active lock.
type LockKind string

const (
	LockKindFull              LockKind = "FULL"
	LockKindPartiallyUnlocked LockKind = "PARTIALLY_UNLOCKED"
)

// Lock is one lock record for a (company, module). At most one is active at a time;
// inactive rows are kept as history.
type Lock struct {
	ID           int64         `json:"id"`
	CompanyID    int64         `json:"company_id"`
	Module       shared.Module `json:"module"`
	Kind         LockKind      `json:"kind"`
	LockDate     time.Time     `json:"lock_date"`
	Reason       string        `json:"reason"`
	LockedBy     int64         `json:"locked_by"`
	LockedAt     time.Time     `json:"locked_at"`
	Active       bool          `json:"active"`
	UnlockedBy   *int64        `json:"unlocked_by,omitempty"`
	UnlockedAt   *time.Time    `json:"unlocked_at,omitempty"`
	UnlockReason string        `json:"unlock_reason,omitempty"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Exceptions   []Exception   `json:"exceptions,omitempty"`
}

// Exception is a partial-unlock window carved into a lock.
type Exception struct {
	ID        int64     `json:"id"`
	LockID    int64     `json:"lock_id"`
	FromDate  time.Time `json:"from_date"`
	ToDate    time.Time `json:"to_date"`
	Reason    string    `json:"reason"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Contains reports whether date falls inside the window, inclusive on both ends.
func (e Exception) Contains(date time.Time) bool {
	d := shared.DateOnly(date)
	return !d.Before(e.FromDate) && !d.After(e.ToDate)
}

// Covers reports whether the lock rejects writes dated on date.
func (l Lock) Covers(date time.Time) bool {
	if !l.Active {
		return false
	}
	d := shared.DateOnly(date)
	if d.After(l.LockDate) {
		return false
	}
	for _, ex := range l.Exceptions {
		if ex.Contains(d) {
			return false
		}
	}
	return true
}

// LockInput creates a new full lock.
type LockInput struct {
	CompanyID int64
	Module    shared.Module
	Date      time.Time
	Reason    string
	ActorID   int64
}

// EditLockInput moves the date of the active lock.
type EditLockInput struct {
	CompanyID int64
	Module    shared.Module
	Date      time.Time
	Reason    string
	ActorID   int64
}

// UnlockInput deactivates the active lock.
type UnlockInput struct {
	CompanyID int64
	Module    shared.Module
	Reason    string
	ActorID   int64
}

// PartialUnlockInput opens an exception window inside the active lock.
type PartialUnlockInput struct {
	CompanyID int64
	Module    shared.Module
	FromDate  time.Time
	ToDate    time.Time
	Reason    string
	ActorID   int64
}

func validateScope(companyID int64, module shared.Module) error {
	if companyID == 0 {
		return shared.Validationf("company id required")
	}
	if _, err := shared.ParseModule(string(module)); err != nil || module == "" {
		return shared.Validationf("unknown module %q", module)
	}
	return nil
}

// Validate checks the lock request against today.
func (in LockInput) Validate(today time.Time) error {
	if err := validateScope(in.CompanyID, in.Module); err != nil {
		return err
	}
	if in.Date.IsZero() {
		return shared.Validationf("lock date required")
	}
	if shared.DateOnly(in.Date).After(shared.DateOnly(today)) {
		return shared.ErrFutureLockDate
	}
	if strings.TrimSpace(in.Reason) == "" {
		return shared.Validationf("lock reason required")
	}
	return nil
}

// Validate checks the edit request against today.
func (in EditLockInput) Validate(today time.Time) error {
	return LockInput(in).Validate(today)
}

// Validate checks the unlock request.
func (in UnlockInput) Validate() error {
	return validateScope(in.CompanyID, in.Module)
}

// Validate checks the window shape; range containment is checked against the lock.
func (in PartialUnlockInput) Validate() error {
	if err := validateScope(in.CompanyID, in.Module); err != nil {
		return err
	}
	if in.FromDate.IsZero() || in.ToDate.IsZero() {
		return shared.Validationf("from and to dates required")
	}
	if shared.DateOnly(in.FromDate).After(shared.DateOnly(in.ToDate)) {
		return shared.Validationf("from date cannot be after to date")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return shared.Validationf("unlock reason required")
	}
	return nil
}
