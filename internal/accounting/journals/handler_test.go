package journals

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/httpx"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

func newTestRouter(t *testing.T) (http.Handler, fixture) {
	t.Helper()
	f := newFixture(t)
	h := NewHandler(nil, f.svc)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := internalShared.ContextWithActor(req.Context(), internalShared.Actor{ID: 5, CompanyID: 1})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/entries", h.MountRoutes)
	r.Route("/accounts", h.MountBalanceRoutes)
	return r, f
}

func call(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const createBody = `{"module":"sales","date":"%s","currency":"IDR","description":"invoice",
"lines":[{"account_id":1,"debit":"100"},{"account_id":2,"credit":"%s"}]}`

func TestHandlerEntryLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := call(t, router, http.MethodPost, "/entries", fmt.Sprintf(createBody, "2024-02-01", "100"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created JournalEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, StatusDraft, created.Status)

	rec = call(t, router, http.MethodPost, fmt.Sprintf("/entries/%d/post", created.ID), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(t, router, http.MethodPost, fmt.Sprintf("/entries/%d/post", created.ID), "")
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = call(t, router, http.MethodPost, fmt.Sprintf("/entries/%d/reverse", created.ID), `{"reason":"duplicate"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var result ReverseResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, StatusReversed, result.Original.Status)
	require.True(t, result.Reversal.Lines[0].Credit.Equal(dec("100")))

	rec = call(t, router, http.MethodGet, "/entries?module=sales", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed listResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Entries, 2)
	require.Equal(t, 1, listed.Pagination.Page)

	rec = call(t, router, http.MethodGet, "/accounts/1/balance?as_of=2024-03-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var balance Balance
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &balance))
	require.True(t, balance.Net.IsZero())
}

func TestHandlerRejectsUnbalancedEntry(t *testing.T) {
	router, f := newTestRouter(t)
	rec := call(t, router, http.MethodPost, "/entries", fmt.Sprintf(createBody, "2024-02-01", "90"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Empty(t, f.repo.entries)
}

func TestHandlerReportsLockedPeriod(t *testing.T) {
	router, f := newTestRouter(t)
	f.repo.lock(1, shared.ModuleSales, day(2024, 1, 31))

	rec := call(t, router, http.MethodPost, "/entries", fmt.Sprintf(createBody, "2024-01-15", "100"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created JournalEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = call(t, router, http.MethodPost, fmt.Sprintf("/entries/%d/post", created.ID), "")
	require.Equal(t, http.StatusLocked, rec.Code)
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, "2024-01-31", problem.LockDate)
}

func TestHandlerDeleteAndMissingEntry(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := call(t, router, http.MethodPost, "/entries", fmt.Sprintf(createBody, "2024-02-01", "100"))
	var created JournalEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = call(t, router, http.MethodDelete, fmt.Sprintf("/entries/%d", created.ID), "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = call(t, router, http.MethodGet, fmt.Sprintf("/entries/%d", created.ID), "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, router, http.MethodGet, "/entries/abc", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
