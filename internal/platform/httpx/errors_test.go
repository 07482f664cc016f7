package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

func respond(t *testing.T, err error) (int, ProblemDetail) {
	t.Helper()
	rec := httptest.NewRecorder()
	RespondError(rec, nil, err)
	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestRespondErrorMapsTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", shared.ErrUnbalanced, http.StatusUnprocessableEntity},
		{"invalid state", shared.InvalidStatef("cannot post"), http.StatusConflict},
		{"not found", shared.ErrJournalNotFound, http.StatusNotFound},
		{"configuration", shared.ErrConfiguration, http.StatusInternalServerError},
		{"already locked", shared.ErrAlreadyLocked, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := respond(t, tc.err)
			require.Equal(t, tc.status, status)
			require.Equal(t, tc.status, body.Status)
		})
	}
}

func TestRespondErrorPeriodLockedCarriesBoundary(t *testing.T) {
	err := &shared.PeriodLockedError{
		Module:   "sales",
		LockDate: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Date:     time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	status, body := respond(t, err)
	require.Equal(t, http.StatusLocked, status)
	require.Equal(t, "2024-01-31", body.LockDate)
	require.Equal(t, "sales", body.Module)
}

func TestRespondErrorConflictIsRetryable(t *testing.T) {
	status, body := respond(t, fmt.Errorf("%w: serialization failure", shared.ErrConflict))
	require.Equal(t, http.StatusConflict, status)
	require.True(t, body.Retryable)

	_, body = respond(t, shared.ErrAlreadyLocked)
	require.False(t, body.Retryable)
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	_, body := respond(t, errors.New("pg: connection refused"))
	require.Empty(t, body.Detail)
}
