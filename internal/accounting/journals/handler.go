package journals

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/httpx"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func entryID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.Validationf("invalid entry id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := httpx.RequireActor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	page := internalShared.PaginationFromQuery(q)
	filter := ListFilter{
		CompanyID:      actor.CompanyID,
		Status:         Status(q.Get("status")),
		IncludeDeleted: q.Get("include_deleted") == "true",
		Limit:          page.Limit(),
		Offset:         page.Offset(),
	}
	if raw := q.Get("module"); raw != "" {
		module, err := shared.ParseModule(raw)
		if err != nil {
			httpx.RespondError(w, h.logger, err)
			return
		}
		filter.Module = module
	}
	for key, target := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		if raw := q.Get(key); raw != "" {
			d, err := shared.ParseDate(raw)
			if err != nil {
				httpx.RespondError(w, h.logger, err)
				return
			}
			*target = &d
		}
	}
	entries, err := h.service.List(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if entries == nil {
		entries = []JournalEntry{}
	}
	httpx.JSON(w, http.StatusOK, listResp{Entries: entries, Pagination: page})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := httpx.RequireActor(w, r)
	if !ok {
		return
	}
	id, err := entryID(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	entry, err := h.service.Get(r.Context(), actor.CompanyID, id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := httpx.RequireActor(w, r)
	if !ok {
		return
	}
	var req entryReq
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	header, err := req.header(actor.CompanyID, actor.ID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	entry, err := h.service.CreateManual(r.Context(), CreateInput{Header: header, Lines: req.lines()})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := httpx.RequireActor(w, r)
	if !ok {
		return
	}
	id, err := entryID(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	var req entryReq
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	header, err := req.header(actor.CompanyID, actor.ID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	entry, err := h.service.UpdateDraft(r.Context(), UpdateInput{EntryID: id, Header: header, Lines: req.lines()})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	actor, ok := httpx.RequireActor(w, r)
	if !ok {
		return
	}
	id, err := entryID(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	entry, err := h.service.Post(r.Context(), PostInput{EntryID: id, CompanyID: actor.CompanyID, ActorID: actor.ID})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := httpx.RequireActor(w, r)
	if !ok {
		return
	}
	id, err := entryID(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := h.service.DeleteDraft(r.Context(), DeleteInput{EntryID: id, CompanyID: actor.CompanyID, ActorID: actor.ID}); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Reverse(w http.ResponseWriter, r *http.Request) {
	actor, ok := httpx.RequireActor(w, r)
	if !ok {
		return
	}
	id, err := entryID(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	var req reverseReq
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	result, err := h.service.Reverse(r.Context(), ReverseInput{
		EntryID: id, CompanyID: actor.CompanyID, ActorID: actor.ID, Reason: req.Reason,
	})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	actor, ok := httpx.RequireActor(w, r)
	if !ok {
		return
	}
	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil || accountID <= 0 {
		httpx.RespondError(w, h.logger, shared.Validationf("invalid account id"))
		return
	}
	asOf := time.Now()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		if asOf, err = shared.ParseDate(raw); err != nil {
			httpx.RespondError(w, h.logger, err)
			return
		}
	}
	balance, err := h.service.AccountBalance(r.Context(), actor.CompanyID, accountID, asOf)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, balance)
}
