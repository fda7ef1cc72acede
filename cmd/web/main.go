package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/meister-web/internal/audit"
	"github.com/BruksfildServices01/meister-web/internal/backend"
	"github.com/BruksfildServices01/meister-web/internal/config"
	dbpkg "github.com/BruksfildServices01/meister-web/internal/db"
	"github.com/BruksfildServices01/meister-web/internal/domain/availability"
	"github.com/BruksfildServices01/meister-web/internal/domain/booking"
	"github.com/BruksfildServices01/meister-web/internal/i18n"
	"github.com/BruksfildServices01/meister-web/internal/logging"
	"github.com/BruksfildServices01/meister-web/internal/observability/metrics"
	"github.com/BruksfildServices01/meister-web/internal/reviews"
	"github.com/BruksfildServices01/meister-web/internal/routes"
	"github.com/BruksfildServices01/meister-web/internal/session"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	bundle, err := i18n.Load()
	if err != nil {
		logger.Fatal("failed to load locales", zap.Error(err))
	}

	// ======================================================
	// METRICS
	// ======================================================
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	webMetrics := metrics.NewWebMetrics(registry)

	// ======================================================
	// INFRA
	// ======================================================
	client := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, logger, backend.WithRecorder(webMetrics))

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, reviews served without cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		cancel()
		defer redisClient.Close()
	}
	reviewService := reviews.NewService(redisClient, client, cfg.ReviewsTTL, logger, reviews.WithLookupHook(webMetrics.ObserveReviewsCache))

	var dispatcher *audit.Dispatcher
	if db := dbpkg.NewDB(cfg, logger); db != nil {
		dispatcher = audit.NewDispatcher(audit.New(db), logger)
		defer dispatcher.Close()
	}

	// ======================================================
	// SESSIONS
	// ======================================================
	newWizard := func() *booking.Wizard {
		return booking.NewWizard(client,
			booking.WithLogger(logger),
			booking.WithObserver(func(_ availability.Key, status availability.Status) {
				webMetrics.ObserveMonthFetch(status.String())
			}),
		)
	}
	store := session.NewStore(cfg.SessionTTL, newWizard, session.WithGauge(webMetrics.SetSessions))

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go store.Run(sweepCtx, time.Minute)

	// ======================================================
	// HTTP
	// ======================================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	err = routes.RegisterRoutes(r, routes.Deps{
		Config:   cfg,
		Log:      logger,
		Bundle:   bundle,
		Backend:  client,
		Sessions: store,
		Reviews:  reviewService,
		Audit:    dispatcher,
		Redis:    redisClient,
		Metrics:  webMetrics,
		Gatherer: registry,
	})
	if err != nil {
		logger.Fatal("failed to register routes", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("server running", zap.String("addr", cfg.Addr()), zap.String("backend", cfg.BackendBaseURL))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}
