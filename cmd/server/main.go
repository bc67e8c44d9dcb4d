package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/slicehouse/catalog-service/app"
	"github.com/slicehouse/catalog-service/config"
	"github.com/slicehouse/catalog-service/logger"
	"github.com/slicehouse/catalog-service/models"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	log, err := logger.New(cfg.Server.AppEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.IsProduction() && cfg.Auth.JWTSecret == "change-me" {
		log.Fatal("JWT_SECRET must be set in production")
	}

	db, err := models.Open(cfg.Database)
	if err != nil {
		log.Fatal("could not open database", "driver", cfg.Database.Driver, "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := models.Migrate(db); err != nil {
		log.Fatal("could not migrate database", "error", err)
	}
	log.Info("database ready", "driver", cfg.Database.Driver)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPPort,
		Handler: app.NewRouter(cfg, models.NewStore(db), log),
	}

	// Graceful shutdown
	go func() {
		log.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to serve", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "error", err)
	}
	log.Info("server stopped")
}
