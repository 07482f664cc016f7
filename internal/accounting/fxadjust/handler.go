package fxadjust

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/httpx"
)

type adjustmentReq struct {
	ID              string          `json:"id" validate:"omitempty,uuid"`
	Module          string          `json:"module" validate:"omitempty,oneof=sales purchases banking accountant"`
	Date            string          `json:"date" validate:"required,datetime=2006-01-02"`
	FromCurrency    string          `json:"from_currency" validate:"required,len=3"`
	ToCurrency      string          `json:"to_currency" validate:"required,len=3"`
	ForeignAmount   decimal.Decimal `json:"foreign_amount"`
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	SourceAccountID int64           `json:"source_account_id" validate:"omitempty,gt=0"`
	Description     string          `json:"description" validate:"max=1000"`
}

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Apply)
}

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	actor, ok := httpx.RequireActor(w, r)
	if !ok {
		return
	}
	var req adjustmentReq
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	date, err := shared.ParseDate(req.Date)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	var module shared.Module
	if req.Module != "" {
		if module, err = shared.ParseModule(req.Module); err != nil {
			httpx.RespondError(w, h.logger, err)
			return
		}
	}
	adj := Adjustment{
		CompanyID:       actor.CompanyID,
		Module:          module,
		Date:            date,
		FromCurrency:    req.FromCurrency,
		ToCurrency:      req.ToCurrency,
		ForeignAmount:   req.ForeignAmount,
		OriginalAmount:  req.OriginalAmount,
		ConvertedAmount: req.ConvertedAmount,
		ExchangeRate:    req.ExchangeRate,
		SourceAccountID: req.SourceAccountID,
		Description:     req.Description,
		ActorID:         actor.ID,
	}
	if req.ID != "" {
		adj.ID = uuid.MustParse(req.ID)
	}
	entry, err := h.service.Apply(r.Context(), adj)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}
