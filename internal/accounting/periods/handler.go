package periods

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/httpx"
)

// Handler exposes the lock registry over JSON.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func moduleParam(r *http.Request) (shared.Module, error) {
	raw := chi.URLParam(r, "module")
	if raw == "" {
		return "", shared.Validationf("module required")
	}
	return shared.ParseModule(raw)
}

func (h *Handler) Active(w http.ResponseWriter, r *http.Request) {
	actor, ok := httpx.RequireActor(w, r)
	if !ok {
		return
	}
	module, err := moduleParam(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	lock, err := h.service.ActiveLock(r.Context(), actor.CompanyID, module)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lock)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	actor, ok := httpx.RequireActor(w, r)
	if !ok {
		return
	}
	module, err := moduleParam(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	locks, err := h.service.History(r.Context(), actor.CompanyID, module)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if locks == nil {
		locks = []Lock{}
	}
	httpx.JSON(w, http.StatusOK, locks)
}

func (h *Handler) Lock(w http.ResponseWriter, r *http.Request) {
	actor, ok := httpx.RequireActor(w, r)
	if !ok {
		return
	}
	module, err := moduleParam(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	var req lockReq
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	date, err := shared.ParseDate(req.Date)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	lock, err := h.service.Lock(r.Context(), LockInput{
		CompanyID: actor.CompanyID, Module: module, Date: date, Reason: req.Reason, ActorID: actor.ID,
	})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, lock)
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	actor, ok := httpx.RequireActor(w, r)
	if !ok {
		return
	}
	module, err := moduleParam(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	var req lockReq
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	date, err := shared.ParseDate(req.Date)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	lock, err := h.service.EditLock(r.Context(), EditLockInput{
		CompanyID: actor.CompanyID, Module: module, Date: date, Reason: req.Reason, ActorID: actor.ID,
	})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lock)
}

func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
	actor, ok := httpx.RequireActor(w, r)
	if !ok {
		return
	}
	module, err := moduleParam(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	var req unlockReq
	if r.ContentLength != 0 {
		if err := httpx.Bind(r, &req); err != nil {
			httpx.RespondError(w, h.logger, err)
			return
		}
	}
	if err := h.service.Unlock(r.Context(), UnlockInput{
		CompanyID: actor.CompanyID, Module: module, Reason: req.Reason, ActorID: actor.ID,
	}); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UnlockPartially(w http.ResponseWriter, r *http.Request) {
	actor, ok := httpx.RequireActor(w, r)
	if !ok {
		return
	}
	module, err := moduleParam(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	var req partialUnlockReq
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	from, err := shared.ParseDate(req.FromDate)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	to, err := shared.ParseDate(req.ToDate)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	lock, err := h.service.UnlockPartially(r.Context(), PartialUnlockInput{
		CompanyID: actor.CompanyID, Module: module, FromDate: from, ToDate: to, Reason: req.Reason, ActorID: actor.ID,
	})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, lock)
}

func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	actor, ok := httpx.RequireActor(w, r)
	if !ok {
		return
	}
	module, err := moduleParam(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	date, err := shared.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	locked, err := h.service.IsDateLocked(r.Context(), actor.CompanyID, module, date)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, checkResp{Module: module, Date: date.Format(shared.DateLayout), Locked: locked})
}
