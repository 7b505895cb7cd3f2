package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"photogallery/internal/config"
	"photogallery/internal/flash"
	"photogallery/internal/logger"
	"photogallery/internal/photo"
	"photogallery/internal/server"
	"photogallery/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logg, err := logger.Init()
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer logg.Sync()

	cfg, err := config.Load()
	if err != nil {
		logg.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logg.Fatal("connect postgres", zap.Error(err))
	}
	defer dbPool.Close()

	if err := storage.Migrate(dbPool); err != nil {
		logg.Fatal("migrate database", zap.Error(err))
	}

	files, err := storage.NewDiskStore(cfg.Upload.Dir)
	if err != nil {
		logg.Fatal("prepare upload dir", zap.Error(err))
	}

	photoRepo := photo.NewRepository(dbPool)
	photoService := photo.NewService(photoRepo, files, cfg.Upload, logg)

	router, err := server.NewRouter(server.Dependencies{
		Config:       cfg,
		DB:           dbPool,
		Files:        files,
		PhotoService: photoService,
		Flashes:      flash.NewStore(cfg.SecretKey),
	})
	if err != nil {
		logg.Fatal("build router", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logg.Info("photo gallery API listening", zap.String("address", cfg.Server.Address()))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logg.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Error("shutdown error", zap.Error(err))
	}
}
