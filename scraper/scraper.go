package scraper

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/use-agent/newgoods/engine"
	"github.com/use-agent/newgoods/extractor"
	"github.com/use-agent/newgoods/models"
	"github.com/use-agent/newgoods/store"
)

// Scraper runs the fetch → extract → write pipeline against one products
// page. It holds no mutable state and is safe for concurrent use as long
// as the engine is.
type Scraper struct {
	engine       engine.Engine
	selectors    extractor.Selectors
	productsURL  string
	campaignURL  string
	fetchTimeout time.Duration
	logger       *slog.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithCampaignURL sets the campaign page used by LatestInfo.
func WithCampaignURL(u string) Option {
	return func(s *Scraper) { s.campaignURL = u }
}

// WithFetchTimeout bounds each fetch. Zero (the default) means no deadline.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Scraper) { s.fetchTimeout = d }
}

// WithLogger overrides slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Scraper) { s.logger = l }
}

// New validates the selectors and returns a Scraper for productsURL.
func New(eng engine.Engine, productsURL string, sel extractor.Selectors, opts ...Option) (*Scraper, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	s := &Scraper{
		engine:      eng,
		selectors:   sel,
		productsURL: productsURL,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// EngineName reports the configured fetch engine.
func (s *Scraper) EngineName() string { return s.engine.Name() }

// Scrape fetches the products page once and extracts its listings.
func (s *Scraper) Scrape(ctx context.Context) (*ScrapeResult, error) {
	fetchStart := time.Now()
	page, err := s.engine.Fetch(ctx, &engine.FetchRequest{
		URL:     s.productsURL,
		Timeout: s.fetchTimeout,
	})
	if err != nil {
		return nil, err
	}
	fetchDuration := time.Since(fetchStart)
	s.logger.Info("fetched page",
		"url", page.FinalURL,
		"title", page.Title,
		"status", page.StatusCode,
		"engine", page.EngineName,
		"bytes", len(page.HTML),
		"duration", fetchDuration,
	)

	extractStart := time.Now()
	products, err := extractor.ExtractProducts(page.HTML, s.selectors)
	if err != nil {
		return nil, err
	}
	extractDuration := time.Since(extractStart)
	if len(products) == 0 {
		s.logger.Warn("no product containers matched", "selector", s.selectors.Container)
	}

	return &ScrapeResult{
		Products:        products,
		Title:           page.Title,
		FinalURL:        page.FinalURL,
		EngineUsed:      page.EngineName,
		FetchDuration:   fetchDuration,
		ExtractDuration: extractDuration,
	}, nil
}

// Run scrapes the page and writes the products to outPath, replacing any
// previous file.
func (s *Scraper) Run(ctx context.Context, outPath string) (*RunResult, error) {
	res, err := s.Scrape(ctx)
	if err != nil {
		return nil, err
	}

	writeStart := time.Now()
	if err := store.SaveJSON(outPath, res.Products); err != nil {
		return nil, err
	}
	writeDuration := time.Since(writeStart)
	s.logger.Info("wrote products", "path", outPath, "count", len(res.Products), "duration", writeDuration)

	return &RunResult{
		ScrapeResult:  *res,
		Path:          outPath,
		WriteDuration: writeDuration,
	}, nil
}

// LatestInfo scrapes the products page and the campaign page. Listings
// missing a name or a price are left out.
func (s *Scraper) LatestInfo(ctx context.Context) (*models.LatestInfo, error) {
	res, err := s.Scrape(ctx)
	if err != nil {
		return nil, err
	}

	info := &models.LatestInfo{
		Products:  completeProducts(res.Products),
		Campaigns: []models.Campaign{},
	}
	if s.campaignURL == "" {
		return info, nil
	}

	page, err := s.engine.Fetch(ctx, &engine.FetchRequest{
		URL:     s.campaignURL,
		Timeout: s.fetchTimeout,
	})
	if err != nil {
		return nil, err
	}
	campaigns, err := extractor.ExtractCampaigns(page.HTML, page.FinalURL)
	if err != nil {
		return nil, err
	}
	info.Campaigns = campaigns
	s.logger.Info("fetched campaigns", "url", page.FinalURL, "count", len(campaigns))

	return info, nil
}

func completeProducts(products []models.Product) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.Name != "" && p.Price != "" {
			out = append(out, p)
		}
	}
	return out
}

// Close releases engine resources (e.g. the browser behind the rod engine).
func (s *Scraper) Close() error {
	if c, ok := s.engine.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
