package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/core/cache"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/core/config"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/core/daemon"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/core/logger"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/core/proxychain"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/core/server"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/core/store"
	trackingadapter "github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/features/tracking/adapters"
	trackinghandler "github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/features/tracking/handler"
	trackingservice "github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/features/tracking/service"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/features/tracking/session"
	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/features/tracking/tables"

	"go.uber.org/zap"
)

// @title Package Tracker API
// @version 1.0
// @description Batch package tracking aggregation backed by a browser-captured session.
// @contact.name API Support
// @contact.email support@packagetracker.dev
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	// Overlay that absorbs repeated reads of the cache document.
	var overlay cache.Cache
	if cfg.Cache.RedisURL != "" {
		redisOverlay, err := cache.NewRedisAdapter(cfg.Cache.RedisURL)
		if err != nil {
			l.Fatal("Redis overlay unavailable", zap.Error(err))
		}
		overlay = redisOverlay
		l.Info("Cache overlay backed by Redis")
	} else {
		overlay = cache.NewMemoryAdapter()
	}

	docStore := store.New(
		cfg.Cache.FilePath,
		overlay,
		time.Duration(cfg.Cache.OverlayTTLSeconds)*time.Second,
	)

	tbl, err := tables.Load(cfg.Tracking.TablesPath)
	if err != nil {
		l.Fatal("Reference tables failed to load", zap.Error(err))
	}

	transports := proxychain.NewManager()

	capturer := session.NewBrowserCapturer(
		cfg.Session.CaptureURL,
		cfg.Tracking.APIURL,
		cfg.Session.BrowserProxyURL,
	)
	sessions := session.NewManager(docStore, capturer, cfg.Session.MaxCaptureAttempts)

	backend := trackingadapter.NewTrack17Adapter(
		cfg.Tracking.APIURL,
		cfg.Tracking.Referer,
		time.Duration(cfg.Tracking.ProxyTimeoutSeconds)*time.Second,
		docStore,
		sessions,
		transports,
		tbl,
	)

	trackingSvc := trackingservice.NewTrackingService(backend, docStore, tbl)
	trackingHdl := trackinghandler.NewTrackingHandler(trackingSvc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background session refresher.
	sup := daemon.NewSupervisor()
	go sup.Start(ctx, daemon.TypeTrackingRefresh,
		time.Duration(cfg.Daemon.TrackIntervalSeconds)*time.Second,
		func(ctx context.Context) error {
			_, err := sessions.Ensure(ctx)
			return err
		},
	)

	srv := server.New(cfg)

	// Register Routes
	srv.App.Get("/v1/package/information", trackingHdl.GetPackageInformation)

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			l.Error("Shutdown failed", zap.Error(err))
		}
	}()

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
