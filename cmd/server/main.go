package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"hookreg/internal/api"
	"hookreg/internal/api/handlers"
	"hookreg/internal/api/middleware"
	"hookreg/internal/engine/actions"
	"hookreg/internal/engine/subscriptions"
	"hookreg/internal/pkg/logger"
	"hookreg/internal/platform/audit"
	"hookreg/internal/platform/auth"
	"hookreg/internal/platform/config"
	"hookreg/internal/platform/database"
	"hookreg/internal/platform/repositories"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	// Repositories
	orgRepo := repositories.NewOrganizationRepository(db)
	webhookRepo := repositories.NewWebhookRepository(db)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	auditLogger := audit.NewLogger(db)
	subscriptionSvc := subscriptions.NewService(webhookRepo, subscriptions.NewValidator(actions.Default), auditLogger)

	deps := &api.Dependencies{
		WebhookHandler:     handlers.NewWebhookHandler(subscriptionSvc),
		WebhookInfoHandler: handlers.NewWebhookInfoHandler(actions.Default),
		AuditHandler:       handlers.NewAuditHandler(auditLogger),
		HealthHandler:      handlers.NewHealthHandler(db),
		AuthMiddleware:     middleware.NewAuthMiddleware(tokenSvc),
		TenantMiddleware:   middleware.NewTenantMiddleware(orgRepo),
		Logger:             log.Logger,
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
