package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-ledger/cmd/odyssey/cli"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/fxadjust"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/mappings"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/periods"
	"github.com/odyssey-erp/odyssey-ledger/internal/app"
	"github.com/odyssey-erp/odyssey-ledger/internal/observability"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
	"github.com/odyssey-erp/odyssey-ledger/internal/shared"
	"github.com/odyssey-erp/odyssey-ledger/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if len(os.Args) > 1 {
		os.Exit(runCommand(ctx, cfg, logger, os.Args[1:]))
	}

	if err := db.Migrate(cfg.PGDSN, cfg.MigrationsPath, logger); err != nil {
		logger.Error("migrate database", slog.Any("error", err))
		os.Exit(1)
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, account cache degrades to postgres", slog.Any("error", err))
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	ledgerMetrics := observability.NewLedgerMetrics(metrics.Registerer())
	auditLogger := shared.NewAuditLogger(dbpool)

	registry := accounts.NewCachedRegistry(accounts.NewRepository(dbpool), redisClient, cfg.AccountCacheTTL, logger)
	enforcer := periods.NewEnforcer(ledgerMetrics)

	lockService := periods.NewService(periods.NewRepository(dbpool, cfg.LedgerTxRetries), auditLogger, logger)

	entryService := journals.NewService(journals.NewRepository(dbpool, cfg.LedgerTxRetries), registry, enforcer, auditLogger, logger)
	entryService.WithObserver(ledgerMetrics)

	adjustmentService := fxadjust.NewService(
		entryService,
		mappings.NewRepository(dbpool),
		registry,
		fxadjust.NewRateRepository(dbpool),
		fxadjust.Config{
			FallbackGainLossAccountID: cfg.LedgerFXGainLossAccount,
			RateTimeout:               cfg.LedgerRateTimeout,
		},
		logger,
	)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		LedgerHandler: accounting.NewHandler(logger, entryService, lockService, adjustmentService),
		JobHandler:    jobs.NewHandler(inspector, jobClient, logger),
		Metrics:       metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

// runCommand handles the operational subcommands:
//
//	odyssey migrate
//	odyssey rates validate --pairs USD/IDR,EUR/IDR --as-of 2024-01-31 [--json]
//	odyssey jobs trigger gl_integrity [--company 1]
//	odyssey jobs stats
func runCommand(ctx context.Context, cfg *app.Config, logger *slog.Logger, args []string) int {
	switch {
	case args[0] == "migrate":
		if err := db.Migrate(cfg.PGDSN, cfg.MigrationsPath, logger); err != nil {
			logger.Error("migrate database", slog.Any("error", err))
			return 1
		}
		return 0
	case len(args) >= 2 && args[0] == "rates" && args[1] == "validate":
		fs := flag.NewFlagSet("rates validate", flag.ContinueOnError)
		pairs := fs.String("pairs", "", "comma separated currency pairs")
		asOf := fs.String("as-of", time.Now().UTC().Format("2006-01-02"), "rate date (YYYY-MM-DD)")
		jsonOut := fs.Bool("json", false, "print JSON")
		if err := fs.Parse(args[2:]); err != nil {
			return 1
		}
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			return 1
		}
		defer pool.Close()
		ratesCLI, err := cli.NewRatesCLI(fxadjust.NewRateRepository(pool))
		if err != nil {
			logger.Error("init rates cli", slog.Any("error", err))
			return 1
		}
		var list []string
		if *pairs != "" {
			list = strings.Split(*pairs, ",")
		}
		return ratesCLI.ValidateCommand(ctx, cli.RatesValidateOptions{Pairs: list, AsOf: *asOf, JSONOutput: *jsonOut})
	case args[0] == "jobs" && len(args) >= 2:
		jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr)
		if err != nil {
			logger.Error("init jobs cli", slog.Any("error", err))
			return 1
		}
		defer jobsCLI.Close()
		switch args[1] {
		case "trigger":
			fs := flag.NewFlagSet("jobs trigger", flag.ContinueOnError)
			company := fs.Int64("company", cfg.LedgerCompanyID, "company scope, 0 for all")
			if len(args) < 3 {
				fmt.Fprintln(os.Stderr, "jobs trigger: job name is required")
				return 1
			}
			if err := fs.Parse(args[3:]); err != nil {
				return 1
			}
			info, err := jobsCLI.Trigger(ctx, args[2], *company)
			if err != nil {
				logger.Error("trigger job", slog.Any("error", err))
				return 1
			}
			fmt.Printf("enqueued %s (%s)\n", info.ID, info.Queue)
			return 0
		case "stats":
			stats, err := jobsCLI.InspectQueue(ctx)
			if err != nil {
				logger.Error("inspect queue", slog.Any("error", err))
				return 1
			}
			fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
				stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
			return 0
		}
	}
	fmt.Fprintf(os.Stderr, "unknown command: %s\n", strings.Join(args, " "))
	return 2
}
