package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/welldanyogia/postoffice/internal/api"
	"github.com/welldanyogia/postoffice/internal/api/middleware"
	"github.com/welldanyogia/postoffice/internal/logger"
	"github.com/welldanyogia/postoffice/internal/services"
	"github.com/welldanyogia/postoffice/internal/smtp"
	"github.com/welldanyogia/postoffice/internal/websocket"
	"golang.org/x/time/rate"
)

const (
	shutdownTimeout   = 10 * time.Second
	limiterSweepEvery = time.Minute
	limiterMaxIdle    = 10 * time.Minute
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP front end and, when enabled, the SMTP ingress",
		Action: func(c *cli.Context) error {
			e, err := openEngine(c)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, e)
		},
	}
}

func serve(ctx context.Context, e *engine) error {
	cfg, log := e.cfg, e.logger
	security := logger.NewSecurityLogger(log)

	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	messenger := services.NewPostoffice(e.messages, e.folders, hub, log)
	folders := services.NewFolderService(e.folders, e.messages, log)

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitRequests), cfg.RateLimitBurst)
	go limiter.RunCleanup(ctx, limiterSweepEvery, limiterMaxIdle)

	router := api.NewRouter(&api.RouterConfig{
		Store:          e.store,
		Messenger:      messenger,
		Folders:        folders,
		Hub:            hub,
		Logger:         log,
		Security:       security,
		Limiter:        limiter,
		AllowedOrigins: cfg.Origins(),
		AppEnv:         cfg.AppEnv,
	})

	errs := make(chan error, 2)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.APIPort)
		log.Info("HTTP server listening", slog.String("addr", addr))
		if err := router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("http server: %w", err)
		}
	}()

	var mailServer interface{ Close() error }
	if cfg.SMTPEnabled {
		backend := smtp.NewBackend(&smtp.BackendConfig{
			Messenger: messenger,
			Domain:    cfg.SMTPDomain,
			Logger:    log,
			Security:  security,
		})
		server := smtp.NewSecureServer(backend, &smtp.ServerConfig{
			Addr:   fmt.Sprintf(":%d", cfg.SMTPPort),
			Domain: cfg.SMTPDomain,
		})
		mailServer = server
		go func() {
			log.Info("SMTP server listening", slog.String("addr", server.Addr))
			if err := server.ListenAndServe(); err != nil && ctx.Err() == nil {
				errs <- fmt.Errorf("smtp server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case runErr = <-errs:
		log.Error("server failed", slog.Any("error", runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := router.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shut down HTTP server", slog.Any("error", err))
	}
	if mailServer != nil {
		if err := mailServer.Close(); err != nil {
			log.Error("failed to shut down SMTP server", slog.Any("error", err))
		}
	}

	log.Info("Server stopped")
	return runErr
}
