package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	jobmetrics "github.com/odyssey-erp/odyssey-ledger/internal/jobs"
)

const (
	checkUnbalanced     = "unbalanced_entry"
	checkTotalsMismatch = "totals_mismatch"
	checkOrphanReversal = "orphan_reversal"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Finding is one entry that failed an integrity check.
type Finding struct {
	Check     string
	EntryID   int64
	Number    string
	CompanyID int64
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// IntegritySource lists suspicious entries dated on or after since.
type IntegritySource interface {
	Findings(ctx context.Context, companyID int64, since time.Time) ([]Finding, error)
}

// GLIntegrityJob verifies that every posted entry still satisfies double entry.
type GLIntegrityJob struct {
	Source  IntegritySource
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewGLIntegrityJob initialises the integrity scan handler.
func NewGLIntegrityJob(source IntegritySource, logger *slog.Logger, metrics *jobmetrics.Metrics) *GLIntegrityJob {
	return &GLIntegrityJob{
		Source:  source,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the scan. Findings are logged and counted; they do not fail
// the task, so the scan is not retried for data that will not change.
func (j *GLIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Source == nil {
		return errors.New("gl integrity: handler not configured")
	}
	var payload GLIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.WindowDays <= 0 {
		payload.WindowDays = 90
	}

	start := j.now()
	since := start.AddDate(0, 0, -payload.WindowDays)
	tracker := j.metrics().Track(TaskGLIntegrity)

	logger := j.logger().With(
		slog.Int64("company_id", payload.CompanyID),
		slog.Int("window_days", payload.WindowDays),
	)
	logger.Info("starting gl integrity scan")

	findings, err := j.Source.Findings(ctx, payload.CompanyID, since)
	if err != nil {
		logger.Error("scan failed", slog.Any("error", err))
		return tracker.End(err)
	}
	for _, f := range findings {
		logger.Warn("ledger integrity violation",
			slog.String("check", f.Check),
			slog.Int64("entry_id", f.EntryID),
			slog.String("number", f.Number),
			slog.Int64("company_id", f.CompanyID),
			slog.String("debit", f.Debit.String()),
			slog.String("credit", f.Credit.String()),
		)
		j.metrics().AddAnomalies(f.Check, f.CompanyID, 1)
	}
	logger.Info("completed gl integrity scan",
		slog.Int("findings", len(findings)),
		slog.Duration("duration", time.Since(start)),
	)
	return tracker.End(nil)
}

func (j *GLIntegrityJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskGLIntegrity))
	}
	return slog.Default().With(slog.String("job", TaskGLIntegrity))
}

func (j *GLIntegrityJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *GLIntegrityJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

type pgIntegritySource struct {
	pool *pgxpool.Pool
}

// NewPostgresIntegritySource reads findings straight from the journal tables.
func NewPostgresIntegritySource(pool *pgxpool.Pool) IntegritySource {
	return &pgIntegritySource{pool: pool}
}

const integrityQuery = `SELECT e.id, e.number, e.company_id, e.total_debit, e.total_credit,
	COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0),
	e.status = 'REVERSED' AND e.reversed_by_id IS NULL
FROM journal_entries e
LEFT JOIN journal_lines l ON l.entry_id = e.id
WHERE e.status IN ('POSTED','REVERSED') AND e.date >= $1 AND ($2 = 0 OR e.company_id = $2)
GROUP BY e.id
HAVING ABS(COALESCE(SUM(l.debit), 0) - COALESCE(SUM(l.credit), 0)) > 0.01
	OR COALESCE(SUM(l.debit), 0) <> e.total_debit
	OR COALESCE(SUM(l.credit), 0) <> e.total_credit
	OR (e.status = 'REVERSED' AND e.reversed_by_id IS NULL)
ORDER BY e.id`

func (s *pgIntegritySource) Findings(ctx context.Context, companyID int64, since time.Time) ([]Finding, error) {
	rows, err := s.pool.Query(ctx, integrityQuery, since, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var findings []Finding
	for rows.Next() {
		var (
			id, company           int64
			number                string
			headDebit, headCredit decimal.Decimal
			lineDebit, lineCredit decimal.Decimal
			orphan                bool
		)
		if err := rows.Scan(&id, &number, &company, &headDebit, &headCredit, &lineDebit, &lineCredit, &orphan); err != nil {
			return nil, err
		}
		findings = append(findings, classify(Finding{EntryID: id, Number: number, CompanyID: company},
			headDebit, headCredit, lineDebit, lineCredit, orphan)...)
	}
	return findings, rows.Err()
}

func classify(base Finding, headDebit, headCredit, lineDebit, lineCredit decimal.Decimal, orphan bool) []Finding {
	var out []Finding
	base.Debit, base.Credit = lineDebit, lineCredit
	if !shared.WithinTolerance(lineDebit, lineCredit) {
		f := base
		f.Check = checkUnbalanced
		out = append(out, f)
	}
	if !lineDebit.Equal(headDebit) || !lineCredit.Equal(headCredit) {
		f := base
		f.Check = checkTotalsMismatch
		out = append(out, f)
	}
	if orphan {
		f := base
		f.Check = checkOrphanReversal
		out = append(out, f)
	}
	return out
}
