package scraper

import (
	"time"

	"github.com/use-agent/newgoods/models"
)

// ScrapeResult is the outcome of one fetch-and-extract pass.
type ScrapeResult struct {
	// Products are in page order.
	Products []models.Product

	// Title is the fetched page's <title>.
	Title string

	FinalURL string

	// EngineUsed is the engine that fetched the page ("http" or "rod").
	EngineUsed string

	FetchDuration   time.Duration
	ExtractDuration time.Duration
}

// RunResult extends ScrapeResult with the written output file.
type RunResult struct {
	ScrapeResult

	Path          string
	WriteDuration time.Duration
}
