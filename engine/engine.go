package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/use-agent/newgoods/config"
)

// Engine is the interface that all fetch engines must implement.
type Engine interface {
	// Name returns the engine identifier ("http" or "rod").
	Name() string

	// Fetch retrieves the page content for the given request.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a page.
type FetchRequest struct {
	URL string

	// Timeout bounds the fetch. Zero means no deadline beyond ctx.
	Timeout time.Duration
}

// FetchResult is the output of a successful engine fetch.
type FetchResult struct {
	HTML       string
	Title      string
	StatusCode int
	FinalURL   string
	EngineName string
}

// New returns the engine selected by cfg.Name.
func New(cfg config.EngineConfig, browserCfg config.BrowserConfig) (Engine, error) {
	switch cfg.Name {
	case "", "http":
		return NewHTTPEngine(cfg.TLSFingerprint), nil
	case "rod":
		return NewRodEngine(browserCfg), nil
	default:
		return nil, fmt.Errorf("engine: unknown engine %q (want \"http\" or \"rod\")", cfg.Name)
	}
}
