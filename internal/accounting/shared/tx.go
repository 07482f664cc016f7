package shared

import (
	"errors"
	"fmt"

	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
)

// FromTxError maps storage-level contention onto ErrConflict.
func FromTxError(err error) error {
	if err != nil && errors.Is(err, db.ErrTxConflict) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}
