package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/franchise/internal/authz"
	"github.com/mamadbah2/franchise/internal/cache"
	"github.com/mamadbah2/franchise/internal/config"
	"github.com/mamadbah2/franchise/internal/repository/mongodb"
	"github.com/mamadbah2/franchise/internal/repository/postgres"
	"github.com/mamadbah2/franchise/internal/repository/sheets"
	"github.com/mamadbah2/franchise/internal/scheduler"
	"github.com/mamadbah2/franchise/internal/server/handlers"
	"github.com/mamadbah2/franchise/internal/server/router"
	"github.com/mamadbah2/franchise/internal/service/export"
	financesvc "github.com/mamadbah2/franchise/internal/service/finance"
	"github.com/mamadbah2/franchise/internal/service/payoutrun"
	reportingsvc "github.com/mamadbah2/franchise/internal/service/reporting"
	rostersvc "github.com/mamadbah2/franchise/internal/service/roster"
	whatsappsvc "github.com/mamadbah2/franchise/internal/service/whatsapp"
	"github.com/mamadbah2/franchise/pkg/clients/backend"
	whatsappclient "github.com/mamadbah2/franchise/pkg/clients/whatsapp"
	"github.com/mamadbah2/franchise/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.Env))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)
	decimal.MarshalJSONWithoutQuotes = true

	ctx := context.Background()

	pool, err := postgres.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		baseLogger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	pgRepo := postgres.New(pool, logger.Named(baseLogger, "repo.postgres"))
	defer pgRepo.Close()

	var store cache.Store
	if cfg.Redis.Addr != "" {
		client, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			baseLogger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = client.Close() }()
		store = cache.NewRedisStore(client)
		baseLogger.Info("redis cache enabled", zap.Duration("ttl", cfg.Redis.TTL))
	} else {
		baseLogger.Warn("redis address missing, caching disabled")
	}
	sharedCache := cache.New(store, cfg.Redis.TTL, logger.Named(baseLogger, "cache"))

	var journal mongodb.Journal = mongodb.NopJournal{}
	if cfg.MongoDB.URI != "" {
		mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		journal = mongoRepo
	} else {
		baseLogger.Warn("mongodb uri missing, payout runs will not be journaled")
	}

	var syncer payoutrun.Syncer
	if cfg.Sheets.SpreadsheetID != "" {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		syncer = export.NewSheetSync(sheetsRepo, logger.Named(baseLogger, "export.sheets"))
	}

	backendClient := backend.NewClient(cfg.Backend)

	var sender whatsappclient.Sender
	if cfg.WhatsApp.Provider == config.ProviderMeta {
		sender = whatsappclient.NewClient(cfg.WhatsApp)
		baseLogger.Info("whatsapp cloud api enabled")
	}

	rosterSvc := rostersvc.NewService(backendClient, sharedCache, logger.Named(baseLogger, "svc.roster"))
	financeSvc := financesvc.NewService(pgRepo, backendClient, sharedCache, logger.Named(baseLogger, "svc.finance"))
	reportingSvc := reportingsvc.NewService(backendClient, pgRepo, sharedCache, logger.Named(baseLogger, "svc.reporting"))
	messagingSvc := whatsappsvc.NewService(cfg.WhatsApp, pgRepo, sender, sharedCache, logger.Named(baseLogger, "svc.whatsapp"))
	if cfg.WhatsApp.Provider == config.ProviderBackend {
		messagingSvc.WithBackendDelivery(backendClient)
	}
	payoutSvc := payoutrun.NewService(pgRepo, payoutrun.NewStore(time.Hour), journal, syncer, sharedCache, baseLogger)

	mode, err := authz.ParseMode(cfg.Authz.Mode)
	if err != nil {
		baseLogger.Fatal("invalid authz mode", zap.Error(err))
	}
	authorizer, err := authz.NewAuthorizer(cfg.Authz.PolicyPath, mode)
	if err != nil {
		baseLogger.Fatal("failed to init authorizer", zap.Error(err))
	}

	engine := router.New(router.Handlers{
		Roster:    handlers.NewRosterHandler(rosterSvc, cfg.Billing.PageSize, logger.Named(baseLogger, "handlers.roster")),
		Finance:   handlers.NewFinanceHandler(financeSvc, cfg.Billing.PageSize, cfg.Billing.DueDay, time.Now, logger.Named(baseLogger, "handlers.finance")),
		PayoutRun: handlers.NewPayoutRunHandler(payoutSvc, journal, logger.Named(baseLogger, "handlers.payoutrun")),
		Messaging: handlers.NewMessagingHandler(messagingSvc, logger.Named(baseLogger, "handlers.whatsapp")),
		Reports:   handlers.NewReportHandler(reportingSvc, time.Now, logger.Named(baseLogger, "handlers.reports")),
	}, authorizer, logger.Named(baseLogger, "router"))

	sched, err := scheduler.NewScheduler(*cfg, financeSvc, reportingSvc, messagingSvc, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-sigCtx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
