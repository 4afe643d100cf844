package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/babblebey/events-ting-sub003/internal/app"
	"github.com/babblebey/events-ting-sub003/internal/clock"
	"github.com/babblebey/events-ting-sub003/internal/config"
	"github.com/babblebey/events-ting-sub003/internal/notification"
	"github.com/babblebey/events-ting-sub003/internal/storage/postgres"
	transporthttp "github.com/babblebey/events-ting-sub003/internal/transport/http"
	"github.com/babblebey/events-ting-sub003/migrations"
)

func main() {
	cfg := config.MustLoad()

	logger, err := newLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.Postgres.URL)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	var notifier app.Notifier
	if brokers := cfg.Kafka.BrokerList(); len(brokers) > 0 {
		kafkaNotifier := notification.NewKafkaNotifier(brokers, cfg.Kafka.Topic, logger)
		defer func() { _ = kafkaNotifier.Close() }()
		notifier = kafkaNotifier
	} else {
		logger.Warn("KAFKA_BROKERS not set, confirmation sends disabled")
		notifier = notification.NewNopNotifier(logger)
	}

	clk := clock.NewSystem()
	regRepo := postgres.NewRegistrationRepository(pool)
	adminRepo := postgres.NewAdminRepository(pool)

	ledger := app.NewInventoryLedger(regRepo, clk)
	reservations := app.NewReservationService(regRepo, notifier, clk, logger)
	adminSvc := app.NewAdminService(adminRepo, ledger, clk)
	validator := app.NewImportValidationEngine(regRepo, ledger, logger)
	executor := app.NewImportExecutionEngine(regRepo, reservations, logger)

	handler := transporthttp.NewRouter(transporthttp.RouterDeps{
		Reservations: reservations,
		Ledger:       ledger,
		Admin:        adminSvc,
		Validator:    validator,
		Executor:     executor,
		CORSOrigins:  cfg.CORS.OriginList(),
		Logger:       logger,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	logger.Info("api listening", zap.String("addr", cfg.Server.Addr))

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
