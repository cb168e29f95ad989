package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"chart-coach-be/internal/bootstrap"
	"chart-coach-be/internal/config"
	"chart-coach-be/internal/model"
	"chart-coach-be/internal/pkg/logger"
	"chart-coach-be/internal/server"
	"chart-coach-be/internal/tracer"
	"chart-coach-be/pkg/database"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Tracer (no-op unless OTEL_ENABLED)
	shutdownTracer := tracer.InitTracer(cfg.App.OtelEnabled, cfg.App.OtelEndpoint)
	defer func() { _ = shutdownTracer(context.Background()) }()

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer func() { _ = sysLogger.Sync() }()

	// 3. Initialize Database (only for the gorm store)
	var gormDB *gorm.DB
	if cfg.Store.Backend == config.StoreBackendGorm {
		db, err := database.NewGormDB(cfg.Database.Driver, cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		if cfg.Database.AutoMigrate {
			if err := model.AutoMigrate(db); err != nil {
				log.Panicf("Auto migration failed: %v", err)
			}
		}
		gormDB = db
	}

	// 4. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, gormDB, cfg, sysLogger)
	if err != nil {
		log.Panicf("Unable to bootstrap: %v", err)
	}
	defer container.Close()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	g, gctx := errgroup.WithContext(ctx)

	// 6. Background consumer; returns once the pubsub is closed
	g.Go(func() error {
		sysLogger.Info("MAIN", "Starting consumer service", nil)
		return container.ConsumerService.Consume(gctx)
	})

	g.Go(func() error {
		return srv.Run()
	})

	g.Go(func() error {
		<-gctx.Done()
		sysLogger.Info("MAIN", "Shutting down", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		container.Close()
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Server stopped: %v", err)
	}
}
