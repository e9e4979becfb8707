// NeuroLens - caregiver and child web dashboard
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/ashureev/neurolens/internal/client"
	"github.com/ashureev/neurolens/internal/config"
	"github.com/ashureev/neurolens/internal/dashboard"
	"github.com/ashureev/neurolens/internal/identity"
	"github.com/ashureev/neurolens/internal/store"
	"github.com/ashureev/neurolens/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.LoadDashboard()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting dashboard", "port", cfg.Port, "api_url", cfg.APIURL)

	// Initialize dependencies.
	repo, err := store.NewSQLite(store.MemoryDSN)
	if err != nil {
		slog.Error("Failed to initialize session store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Session store health check failed", "error", err)
		os.Exit(1)
	}

	backend := client.New(cfg.APIURL)
	if err := backend.Health(context.Background()); err != nil {
		slog.Warn("NeuroLens service not reachable yet, pages will show it as unavailable", "error", err)
	}

	hub := dashboard.NewLiveHub()
	handler := dashboard.NewHandler(repo, backend, web.MustTemplates(), hub, cfg.LiveInterval)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	// Public routes.
	r.Handle("/static/*", web.StaticHandler())

	// Pages, form actions and the live channel need a session.
	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(repo, identity.Options{MaxAge: cfg.SessionTTL, Secure: cfg.SecureCookie}))
		handler.RegisterRoutes(r)
	})

	// Note: the live channel is a long-lived websocket, so there is no WriteTimeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	// Start session sweeper.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dashboard.StartSweeper(ctx, repo, cfg.SessionTTL, dashboard.SweepInterval(cfg.SessionTTL), hub.CloseSession)

	// Start server.
	go func() {
		slog.Info("Dashboard listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Dashboard stopped successfully")
}
