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
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/maplemetrics/housing-dashboard/internal/business/dashboard"
	"github.com/maplemetrics/housing-dashboard/internal/dataset"
	"github.com/maplemetrics/housing-dashboard/internal/platform/config"
	apirouter "github.com/maplemetrics/housing-dashboard/internal/platform/http"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.GinMode)

	// The dataset load is the one step touching the source file. A failure
	// here is fatal; there is no session without a working dataset.
	ds, err := dataset.Load(cfg.DataFile, dataset.Options{
		Encoding: cfg.DataEncoding,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("dataset load failed", zap.String("file", cfg.DataFile), zap.Error(err))
	}
	if ds.Len() == 0 {
		logger.Fatal("dataset is empty after cleaning", zap.String("file", cfg.DataFile))
	}
	logger.Info("working dataset ready",
		zap.Int("listings", ds.Len()),
		zap.Int("provinces", len(ds.Provinces())),
	)

	sessions := dashboard.NewManager(ds, cfg.HistogramBinWidth, logger)
	router := apirouter.NewRouter(ds, sessions, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()
	logger.Info("server listening", zap.String("port", cfg.Port))

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown error", zap.Error(err))
	}
	logger.Info("server exited")
}
