package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"remitledger/internal/adapters/cache"
	"remitledger/internal/adapters/postgres"
	"remitledger/internal/api"
	"remitledger/internal/config"
	"remitledger/internal/engine"
	"remitledger/internal/engine/handler"
	"remitledger/internal/platform/db"
	httpserver "remitledger/internal/platform/http"

	"github.com/sirupsen/logrus"
)

// Run wires the application components, starts HTTP server and scheduler
func Run() error {
	appCfg, err := config.Init()
	if err != nil {
		return err
	}
	// Logger
	logrus.SetOutput(os.Stdout)
	cfgLevel := appCfg.Logging.Level
	if parsedLvl, parseErr := logrus.ParseLevel(cfgLevel); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
	logrus.Info("✅ Config initialization successful")

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bounded context for startup operations (DB connect, migrations, seeding)
	startupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Schema first, then the pool
	if err = db.MigrateUp(startupCtx, appCfg.DbServer.GetConnectionStr()); err != nil {
		logrus.WithError(err).Error("Failed to apply migrations")
		return err
	}
	logrus.Info("✅ Migrations applied")

	pool, err := db.CreatePoolAndPing(startupCtx, appCfg.DbServer)
	if err != nil {
		logrus.WithError(err).Error("Error connecting to db")
		return err
	}
	defer pool.Close()
	logrus.Info("✅ Postgres connection successful")

	// Rate cache
	rateCache, err := cache.NewRateCache(appCfg.Engine.RateCacheSize)
	if err != nil {
		logrus.WithError(err).Error("Failed to create rate cache")
		return err
	}
	defer rateCache.Close()

	// Ledger and settlement engine
	ledger := postgres.NewLedger(pool)
	settlement := engine.NewService(ledger, rateCache)

	if err = settlement.Bootstrap(startupCtx, appCfg.Engine.OwnerAccount, appCfg.Engine.FeeBasisPoints); err != nil {
		logrus.WithError(err).Error("Failed to seed engine parameters")
		return err
	}
	logrus.Info("✅ Engine parameters seeded")

	// Solvency sweep scheduler
	scheduler := engine.NewScheduler(ledger, time.Duration(appCfg.Scheduler.SolvencyIntervalSec)*time.Second)
	// Ensure scheduler stops before DB pool closes
	defer func() {
		if shutDownErr := scheduler.Shutdown(); shutDownErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", shutDownErr)
		}
	}()
	// Start scheduler tied to root context
	if startErr := scheduler.Start(ctx); startErr != nil {
		logrus.WithError(startErr).Error("Failed to start scheduler")
		return startErr
	}
	logrus.Info("✅ Scheduler activation successful")

	// Handlers and router
	router := api.NewRouter(handler.NewHandler(settlement))

	logrus.Info("Starting http server")
	// Block until context is canceled, then perform graceful shutdown.
	if serverErr := httpserver.Start(ctx, appCfg.HTTPServer, router); serverErr != nil {
		// Cancel the root context to stop scheduler and other in-flight work
		stop()
		logrus.Errorf("HTTP server error: %v", serverErr)
		return serverErr
	}
	return nil
}
