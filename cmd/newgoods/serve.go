package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/newgoods/api"
	"github.com/use-agent/newgoods/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve products, latest info and save-text over HTTP.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// ── 1. Configuration and logging ────────────────────────────────
	cfg := config.Load()
	initLogger(cfg.Log)
	slog.Info("newgoods server starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"engine", cfg.Engine.Name,
	)

	// ── 2. Scraper ──────────────────────────────────────────────────
	sc, err := newScraper(cfg)
	if err != nil {
		slog.Error("failed to initialise scraper", "error", err)
		return err
	}
	defer sc.Close()

	// ── 3. Router and caches ────────────────────────────────────────
	caches := api.NewCaches(cfg.Cache)
	defer caches.Stop()
	router := api.NewRouter(sc, cfg, caches, time.Now())

	// ── 4. HTTP server ──────────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// ── 5. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		slog.Error("HTTP server error", "error", err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("newgoods server stopped")
	return nil
}
