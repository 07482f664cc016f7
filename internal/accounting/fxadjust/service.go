package fxadjust

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/mappings"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// Poster stores system-sourced entries directly as Posted.
type Poster interface {
	PostSystem(ctx context.Context, entry journals.JournalEntry) (journals.JournalEntry, error)
}

// Config holds the translator settings.
type Config struct {
	// FallbackGainLossAccountID is used when no FX mapping exists for the company.
	FallbackGainLossAccountID int64
	RateTimeout               time.Duration
}

// Service applies currency adjustments to the ledger.
type Service struct {
	poster   Poster
	mappings mappings.Repository
	registry accounts.Registry
	rates    ExchangeRateProvider
	cfg      Config
	logger   *slog.Logger
}

func NewService(poster Poster, mappingRepo mappings.Repository, registry accounts.Registry, rates ExchangeRateProvider, cfg Config, logger *slog.Logger) *Service {
	if cfg.RateTimeout <= 0 {
		cfg.RateTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{poster: poster, mappings: mappingRepo, registry: registry, rates: rates, cfg: cfg, logger: logger}
}

// Apply resolves the gain/loss account, the source account and the rate, then
// translates the adjustment and posts it. The adjustment id links the entry, so an adjustment posts once.
func (s *Service) Apply(ctx context.Context, adj Adjustment) (journals.JournalEntry, error) {
	if err := adj.Validate(); err != nil {
		return journals.JournalEntry{}, err
	}
	if adj.ID == uuid.Nil {
		adj.ID = uuid.New()
	}
	gainLoss, err := s.gainLossAccount(ctx, adj.CompanyID)
	if err != nil {
		return journals.JournalEntry{}, err
	}
	if adj.SourceAccountID == 0 {
		if adj.SourceAccountID, err = s.mappedAccount(ctx, adj.CompanyID, mappings.KeyRevaluationSource); err != nil {
			return journals.JournalEntry{}, err
		}
	}
	if err := s.resolveRate(ctx, &adj); err != nil {
		return journals.JournalEntry{}, err
	}
	lines, err := Translate(adj, gainLoss)
	if err != nil {
		return journals.JournalEntry{}, err
	}
	desc := adj.Description
	if desc == "" {
		desc = fmt.Sprintf("Currency adjustment %s @ %s", adj.Pair(), adj.ExchangeRate.String())
	}
	entry := journals.NewCurrencyAdjustmentEntry(journals.Header{
		CompanyID:   adj.CompanyID,
		Module:      adj.Module,
		Date:        adj.Date,
		Currency:    adj.ToCurrency,
		Description: desc,
		Reference:   adj.ID.String(),
		ActorID:     adj.ActorID,
	}, adj.ID, lines)
	posted, err := s.poster.PostSystem(ctx, entry)
	if err != nil {
		return journals.JournalEntry{}, err
	}
	s.logger.Info("currency adjustment posted",
		slog.String("adjustment_id", adj.ID.String()),
		slog.Int64("entry_id", posted.ID),
		slog.String("difference", adj.Difference().String()))
	return posted, nil
}

// resolveRate fills a missing rate from the provider under a bounded timeout,
// then derives a missing converted amount. It runs before any transaction.
func (s *Service) resolveRate(ctx context.Context, adj *Adjustment) error {
	if adj.ExchangeRate.IsZero() && adj.ConvertedAmount.IsZero() {
		if s.rates == nil {
			return fmt.Errorf("%w: exchange rate provider", shared.ErrConfiguration)
		}
		rateCtx, cancel := context.WithTimeout(ctx, s.cfg.RateTimeout)
		defer cancel()
		rate, err := s.rates.Rate(rateCtx, adj.FromCurrency, adj.ToCurrency, adj.Date)
		if err != nil {
			return fmt.Errorf("fxadjust: resolve %s rate: %w", adj.Pair(), err)
		}
		if !rate.IsPositive() {
			return shared.Validationf("exchange rate for %s must be positive", adj.Pair())
		}
		adj.ExchangeRate = rate
	}
	if adj.ConvertedAmount.IsZero() {
		adj.ConvertedAmount = shared.RoundAmount(adj.ForeignAmount.Mul(adj.ExchangeRate))
	}
	if adj.ExchangeRate.IsZero() && !adj.ForeignAmount.IsZero() {
		adj.ExchangeRate = adj.ConvertedAmount.Div(adj.ForeignAmount)
	}
	return nil
}

// mappedAccount returns the FX mapping for key, or zero when none is configured.
func (s *Service) mappedAccount(ctx context.Context, companyID int64, key string) (int64, error) {
	if s.mappings == nil {
		return 0, nil
	}
	mapping, err := s.mappings.Get(ctx, companyID, mappings.ModuleFX, key)
	switch {
	case err == nil:
		return mapping.AccountID, nil
	case errors.Is(err, shared.ErrMappingNotFound):
		return 0, nil
	default:
		return 0, err
	}
}

func (s *Service) gainLossAccount(ctx context.Context, companyID int64) (int64, error) {
	accountID, err := s.mappedAccount(ctx, companyID, mappings.KeyExchangeGainLoss)
	if err != nil {
		return 0, err
	}
	if accountID == 0 {
		accountID = s.cfg.FallbackGainLossAccountID
	}
	if accountID == 0 {
		return 0, fmt.Errorf("%w: no exchange gain/loss account for company %d", shared.ErrConfiguration, companyID)
	}
	if s.registry != nil {
		if _, err := s.registry.Resolve(ctx, accountID); err != nil {
			if errors.Is(err, shared.ErrAccountNotFound) {
				return 0, fmt.Errorf("%w: gain/loss account %d does not exist", shared.ErrConfiguration, accountID)
			}
			return 0, err
		}
	}
	return accountID, nil
}
