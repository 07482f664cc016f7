package accounting

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/fxadjust"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/periods"
)

// Handler wires the ledger core endpoints.
type Handler struct {
	entries     *journals.Handler
	locks       *periods.Handler
	adjustments *fxadjust.Handler
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, entries *journals.Service, locks *periods.Service, adjustments *fxadjust.Service) *Handler {
	return &Handler{
		entries:     journals.NewHandler(logger, entries),
		locks:       periods.NewHandler(logger, locks),
		adjustments: fxadjust.NewHandler(logger, adjustments),
	}
}

// MountRoutes registers the ledger routes; callers mount it under /api/ledger.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/entries", h.entries.MountRoutes)
	r.Route("/accounts", h.entries.MountBalanceRoutes)
	r.Route("/currency-adjustments", h.adjustments.MountRoutes)
	r.Route("/locks", h.locks.MountRoutes)
}
