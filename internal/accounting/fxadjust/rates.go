package fxadjust

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// ErrRateNotFound indicates no rate is recorded for the pair on or before the date.
var ErrRateNotFound = fmt.Errorf("%w: exchange rate", shared.ErrNotFound)

// ExchangeRateProvider supplies the rate for a currency pair on a date.
type ExchangeRateProvider interface {
	Rate(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, error)
}

type rateRepository struct {
	db *pgxpool.Pool
}

// NewRateRepository returns a provider reading the latest closing rate on or
// before the requested date from exchange_rates.
func NewRateRepository(db *pgxpool.Pool) ExchangeRateProvider {
	return &rateRepository{db: db}
}

func (r *rateRepository) Rate(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, error) {
	var rate decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT rate FROM exchange_rates
WHERE from_currency=$1 AND to_currency=$2 AND as_of_date<=$3
ORDER BY as_of_date DESC LIMIT 1`, strings.ToUpper(from), strings.ToUpper(to), shared.DateOnly(date)).Scan(&rate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ErrRateNotFound
		}
		return decimal.Zero, err
	}
	return rate, nil
}
