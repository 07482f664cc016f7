package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// Registry resolves accounts by id. The chart of accounts itself is owned elsewhere.
type Registry interface {
	Resolve(ctx context.Context, id int64) (Account, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns a Registry reading the accounts table.
func NewRepository(db *pgxpool.Pool) Registry {
	return &repository{db: db}
}

func (r *repository) Resolve(ctx context.Context, id int64) (Account, error) {
	var a Account
	err := r.db.QueryRow(ctx, `SELECT id, company_id, code, name, normal_side, currency, is_active, updated_at
FROM accounts WHERE id=$1`, id).
		Scan(&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.NormalSide, &a.Currency, &a.IsActive, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

// MapRegistry is an in-memory Registry, used by tools and tests.
type MapRegistry map[int64]Account

// Resolve implements Registry.
func (m MapRegistry) Resolve(_ context.Context, id int64) (Account, error) {
	a, ok := m[id]
	if !ok {
		return Account{}, shared.ErrAccountNotFound
	}
	return a, nil
}
