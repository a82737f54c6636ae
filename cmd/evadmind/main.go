package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"ev-admin-backend/config"
	"ev-admin-backend/internal/api"
	"ev-admin-backend/internal/booking"
	"ev-admin-backend/internal/db"
	"ev-admin-backend/internal/notification"
	"ev-admin-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "ev-admin ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded from %s", configPath)

	loc, err := time.LoadLocation(cfg.Admin.Timezone)
	if err != nil {
		logger.Fatalf("invalid admin timezone %q: %v", cfg.Admin.Timezone, err)
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.New(gormDB)

	mailer := &notification.LogMailer{From: cfg.Mail.From, Logger: logger}
	push := &notification.WebPushSender{Options: &webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}}

	pool := notification.NewWorkerPool(cfg.Outbox, gormDB, mailer, push, logger)
	pool.Start(ctx)
	logger.Printf("outbox worker pool started (%d workers)", cfg.Outbox.Workers)

	orch := booking.NewOrchestrator(gormDB, cfg.Mail.OpsMailbox, pool, logger)

	handler := api.NewHandler(appStore, orch, loc, logger)
	router := api.NewRouter(handler, &cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
