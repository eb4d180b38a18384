package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/newgoods/config"
	"github.com/use-agent/newgoods/webhook"
)

// runPipeline fetches, extracts and writes once. Any fetch, parse or
// write failure is returned unlogged; main prints it and exits 1.
func runPipeline(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	initLogger(cfg.Log)

	sc, err := newScraper(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := sc.Close(); err != nil {
			slog.Warn("failed to release engine", "error", err)
		}
	}()

	res, err := sc.Run(cmd.Context(), cfg.Output.Path)
	if err != nil {
		return err
	}

	if cfg.Webhook.URL != "" {
		notify(cmd.Context(), cfg.Webhook, res.FinalURL, res.Products)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s を生成しました！\n", res.Path)
	return nil
}

// notify pushes the products to the webhook. Failure is logged only.
func notify(ctx context.Context, hook config.WebhookConfig, source string, data any) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	ev := webhook.NewEvent(webhook.EventProductsGenerated, source, data)
	if err := webhook.Deliver(ctx, hook.URL, hook.Secret, ev); err != nil {
		slog.Warn("webhook delivery failed", "url", hook.URL, "error", err)
		return
	}
	slog.Info("webhook delivered", "url", hook.URL)
}
