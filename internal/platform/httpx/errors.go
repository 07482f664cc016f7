package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// RespondError maps ledger errors to HTTP responses using RFC7807.
// Unclassified errors are logged and reported without detail.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var locked *shared.PeriodLockedError
	switch {
	case errors.As(err, &locked):
		JSON(w, http.StatusLocked, ProblemDetail{
			Type:     "period-locked",
			Title:    "Period Locked",
			Status:   http.StatusLocked,
			Detail:   err.Error(),
			Module:   locked.Module,
			LockDate: locked.LockDate.Format(shared.DateLayout),
		})
	case errors.Is(err, shared.ErrPeriodLocked):
		Problem(w, http.StatusLocked, "Period Locked", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrInvalidState):
		Problem(w, http.StatusConflict, "Invalid State", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrConflict):
		JSON(w, http.StatusConflict, ProblemDetail{
			Type:      "conflict",
			Title:     "Conflict",
			Status:    http.StatusConflict,
			Detail:    err.Error(),
			Retryable: shared.IsRetryable(err),
		})
	case errors.Is(err, shared.ErrConfiguration):
		if logger != nil {
			logger.Error("ledger misconfigured", slog.Any("error", err))
		}
		Problem(w, http.StatusInternalServerError, "Configuration Error", err.Error())
	default:
		if logger != nil {
			logger.Error("request failed", slog.Any("error", err))
		}
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
