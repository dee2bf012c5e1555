package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"realones/config"
	"realones/internal/database"
	"realones/internal/router"
	"realones/internal/service"
	"realones/internal/ws"
	"realones/pkg/cloudinary"
	"realones/pkg/facebook"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	var log *zap.Logger
	if cfg.IsProduction() {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	deps := router.Deps{
		Graph: facebook.NewClient(cfg.Facebook.GraphBaseURL),
		Hub:   ws.NewHub(),
		Log:   log,
	}

	if cfg.HasCloudinary() {
		cloud, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			log.Fatal("cloudinary", zap.Error(err))
		}
		deps.Cloud = cloud
	} else {
		log.Info("avatar uploads disabled: set CLOUDINARY_* to enable")
	}

	if fcm := service.NewFCMService(cfg.Firebase.ServiceAccountPath, log); fcm != nil {
		log.Info("push notifications enabled")
		deps.Push = fcm
	} else {
		log.Info("push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}

	engine := router.Setup(cfg, db, deps)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}
