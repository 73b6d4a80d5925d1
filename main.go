package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/blog-desk/internal/api"
	"github.com/msomdec/blog-desk/internal/apiclient"
	"github.com/msomdec/blog-desk/internal/config"
	"github.com/msomdec/blog-desk/internal/handler"
	"github.com/msomdec/blog-desk/internal/notify"
	"github.com/msomdec/blog-desk/internal/repository/sqlite"
	"github.com/msomdec/blog-desk/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logOpts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	db, err := sqlite.New(cfg.Storage.TokenDB)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.Storage.TokenDB, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	client, err := apiclient.New(cfg.API.BaseURL,
		apiclient.WithTimeout(cfg.API.RequestTimeout),
		apiclient.WithLogger(logger),
	)
	if err != nil {
		slog.Error("invalid API base URL", "error", err)
		os.Exit(1)
	}
	blog := api.New(client)

	notes := notify.New(cfg.UI.NotificationTTL)
	defer notes.Close()

	sess := session.New(blog, db.Tokens(), session.WithLogger(logger))
	sess.Subscribe(func(s session.Snapshot) {
		slog.Debug("session changed", "state", s.State.String())
	})

	restoreCtx, cancelRestore := context.WithTimeout(context.Background(), cfg.API.RequestTimeout)
	if err := sess.Restore(restoreCtx); err != nil {
		// The session still settles as anonymous; the user can log in again.
		slog.Error("failed to restore session", "error", err)
	}
	cancelRestore()
	if user := sess.User(); user != nil {
		notes.Info("Signed in as " + user.Username + ".")
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, sess, blog, notes, logger)

	srv := &http.Server{
		Addr:              cfg.UI.ListenAddr,
		Handler:           handler.SecurityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "api", cfg.API.BaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
