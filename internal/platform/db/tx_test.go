package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestClassifyMapsSerializationFailure(t *testing.T) {
	err := classify(&pgconn.PgError{Code: "40001"})
	require.ErrorIs(t, err, ErrTxConflict)
	require.True(t, IsConflict(err))

	plain := errors.New("boom")
	require.Same(t, plain, classify(plain))
	require.False(t, IsConflict(plain))
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "uq_period_locks_active"})
	require.True(t, IsUniqueViolation(err, "uq_period_locks_active"))
	require.True(t, IsUniqueViolation(err, ""))
	require.False(t, IsUniqueViolation(err, "uq_source_links"))
	require.False(t, IsUniqueViolation(errors.New("other"), ""))
}

func TestIsCheckViolation(t *testing.T) {
	err := fmt.Errorf("update: %w", &pgconn.PgError{Code: "23514", ConstraintName: "chk_journal_entries_totals"})
	require.True(t, IsCheckViolation(err, "chk_journal_entries_totals"))
	require.True(t, IsCheckViolation(err, ""))
	require.False(t, IsCheckViolation(err, "chk_journal_lines_one_side"))
	require.False(t, IsCheckViolation(&pgconn.PgError{Code: "23505"}, ""))
}

func TestRetryConflictStopsOnSuccessOrOtherError(t *testing.T) {
	calls := 0
	err := RetryConflict(context.Background(), 3, func() error {
		calls++
		if calls < 2 {
			return ErrTxConflict
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)

	calls = 0
	other := errors.New("validation")
	err = RetryConflict(context.Background(), 3, func() error {
		calls++
		return other
	})
	require.ErrorIs(t, err, other)
	require.Equal(t, 1, calls)

	calls = 0
	err = RetryConflict(context.Background(), 3, func() error {
		calls++
		return ErrTxConflict
	})
	require.ErrorIs(t, err, ErrTxConflict)
	require.Equal(t, 3, calls)
}
