package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/use-agent/newgoods/config"
	"github.com/use-agent/newgoods/engine"
	"github.com/use-agent/newgoods/extractor"
	"github.com/use-agent/newgoods/scraper"
)

var rootCmd = &cobra.Command{
	Use:   "newgoods",
	Short: "Fetch the FamilyMart new-products page and write its listings as JSON.",
	Long: `With no subcommand, newgoods fetches the new-products page once,
extracts every listing (name, price, region) and overwrites the output
file (family_products.json by default).`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPipeline,
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newScraper wires the configured engine and selectors into a Scraper.
func newScraper(cfg *config.Config) (*scraper.Scraper, error) {
	eng, err := engine.New(cfg.Engine, cfg.Browser)
	if err != nil {
		return nil, err
	}
	return scraper.New(eng, cfg.Source.ProductsURL, extractor.FromConfig(cfg.Selectors),
		scraper.WithCampaignURL(cfg.Source.CampaignURL),
		scraper.WithFetchTimeout(cfg.Engine.FetchTimeout),
	)
}

// initLogger configures slog based on the LogConfig. Logs go to stderr;
// stdout is reserved for command output.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
