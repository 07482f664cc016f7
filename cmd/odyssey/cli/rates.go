package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/fxadjust"
)

// RatesCLI offers operational helpers around the exchange rates used by
// currency adjustments.
type RatesCLI struct {
	provider fxadjust.ExchangeRateProvider
}

// NewRatesCLI constructs the helper on top of a rate provider.
func NewRatesCLI(provider fxadjust.ExchangeRateProvider) (*RatesCLI, error) {
	if provider == nil {
		return nil, errors.New("rates cli: provider is required")
	}
	return &RatesCLI{provider: provider}, nil
}

// RatesValidateOptions defines available flags for the rates validate command.
type RatesValidateOptions struct {
	Pairs      []string
	AsOf       string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// RatesValidateSummary describes the JSON response for rates validate.
type RatesValidateSummary struct {
	OK        bool        `json:"ok"`
	AsOf      string      `json:"as_of"`
	Gaps      []string    `json:"gaps"`
	Available []RateQuote `json:"available"`
}

// RateQuote reports a rate that resolved for a pair.
type RateQuote struct {
	Pair string `json:"pair"`
	Rate string `json:"rate"`
}

// ValidateCommand checks that every requested pair resolves to a rate on the
// given date and prints the outcome. It exits 10 when any pair has no rate.
func (c *RatesCLI) ValidateCommand(ctx context.Context, opts RatesValidateOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if len(opts.Pairs) == 0 {
		_, _ = fmt.Fprintln(opts.Stderr, "rates validate: --pairs is required")
		return 1
	}
	asOf, err := time.Parse("2006-01-02", strings.TrimSpace(opts.AsOf))
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "rates validate: invalid date %q (expected YYYY-MM-DD)\n", opts.AsOf)
		return 1
	}

	summary := RatesValidateSummary{AsOf: asOf.Format("2006-01-02"), Gaps: []string{}, Available: []RateQuote{}}
	for _, raw := range opts.Pairs {
		from, to, err := splitPair(raw)
		if err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "rates validate: %v\n", err)
			return 1
		}
		pair := from + "/" + to
		rate, err := c.provider.Rate(ctx, from, to, asOf)
		switch {
		case errors.Is(err, fxadjust.ErrRateNotFound):
			summary.Gaps = append(summary.Gaps, pair)
		case err != nil:
			_, _ = fmt.Fprintf(opts.Stderr, "rates validate: %s: %v\n", pair, err)
			return 1
		default:
			summary.Available = append(summary.Available, RateQuote{Pair: pair, Rate: rate.String()})
		}
	}
	sort.Strings(summary.Gaps)
	sort.Slice(summary.Available, func(i, j int) bool { return summary.Available[i].Pair < summary.Available[j].Pair })
	summary.OK = len(summary.Gaps) == 0

	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "rates validate: encode json: %v\n", err)
			return 1
		}
	} else {
		renderRatesHuman(opts.Stdout, summary)
	}
	if !summary.OK {
		return 10
	}
	return 0
}

func splitPair(raw string) (string, string, error) {
	pair := strings.ToUpper(strings.TrimSpace(raw))
	if from, to, ok := strings.Cut(pair, "/"); ok {
		pair = from + to
	}
	if len(pair) != 6 {
		return "", "", fmt.Errorf("invalid pair %q (expected USD/IDR or USDIDR)", raw)
	}
	return pair[:3], pair[3:], nil
}

func renderRatesHuman(out io.Writer, summary RatesValidateSummary) {
	_, _ = fmt.Fprintf(out, "Exchange rate check as of %s\n", summary.AsOf)
	for _, q := range summary.Available {
		_, _ = fmt.Fprintf(out, " - %s %s\n", q.Pair, q.Rate)
	}
	if summary.OK {
		_, _ = fmt.Fprintln(out, "All requested pairs have a rate.")
		return
	}
	_, _ = fmt.Fprintf(out, "%d pair(s) without a rate: %s\n", len(summary.Gaps), strings.Join(summary.Gaps, ", "))
}
