//	@title			Medias API
//	@version		1.0
//	@description	Upload service: stores files on disk or in object storage and records them in the medias table.
//
//	@host		localhost:8080
//	@BasePath	/api/v1

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

	"go.uber.org/zap"

	"github.com/radif/medias/internal/config"
	"github.com/radif/medias/internal/db"
	"github.com/radif/medias/internal/logger"
	"github.com/radif/medias/internal/media"
	"github.com/radif/medias/internal/server"
	"github.com/radif/medias/internal/storage"

	_ "github.com/radif/medias/docs/swagger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.Connect(ctx, cfg.DatabaseURL, zl)
	cancel()
	if err != nil {
		zl.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL, zl); err != nil {
		zl.Fatal("database migration failed", zap.Error(err))
	}

	store, err := storage.New(cfg, zl)
	if err != nil {
		zl.Fatal("object storage init failed", zap.Error(err))
	}

	// Wire dependencies: repository → service → handler
	resolver := media.NewResolver(cfg.ProjectRef, zl)
	mediaRepo := media.NewRepository(pool)
	mediaSvc := media.NewService(store, mediaRepo, resolver,
		media.WithLogger(zl),
		media.WithCleanupOnFailure(cfg.CleanupOnFailure),
	)
	mediaHandler := media.NewHandler(mediaSvc, zl, cfg.MaxUploadMemory)

	deps := server.Deps{Log: zl, Media: mediaHandler}
	if cfg.IsDevelopment() {
		deps.UploadsDir = cfg.UploadsDir
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.NewRouter(deps),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zl.Info("server listening",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.AppEnv),
			zap.String("site_url", cfg.PublicSiteURL()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zl.Info("shutting down gracefully...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Fatal("forced shutdown", zap.Error(err))
	}

	zl.Info("server stopped")
}
