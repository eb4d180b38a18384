package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/newgoods/config"
	"github.com/use-agent/newgoods/models"
	"github.com/use-agent/newgoods/scraper"
)

type stubSource struct{}

func (stubSource) EngineName() string { return "http" }

func (stubSource) Scrape(ctx context.Context) (*scraper.ScrapeResult, error) {
	return &scraper.ScrapeResult{
		Products:   []models.Product{{Name: "からあげクン", Price: "238円", Region: "全国"}},
		EngineUsed: "http",
	}, nil
}

func (stubSource) LatestInfo(ctx context.Context) (*models.LatestInfo, error) {
	return &models.LatestInfo{Products: []models.Product{}, Campaigns: []models.Campaign{}}, nil
}

func newTestRouter(t *testing.T, mutate func(*config.Config)) http.Handler {
	t.Helper()
	cfg := config.Load()
	cfg.Server.Mode = "test"
	cfg.Output.SaveTextPath = t.TempDir() + "/latest-info.txt"
	if mutate != nil {
		mutate(cfg)
	}
	cc := NewCaches(cfg.Cache)
	t.Cleanup(cc.Stop)
	return NewRouter(stubSource{}, cfg, cc, time.Now())
}

func do(h http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_Routes(t *testing.T) {
	r := newTestRouter(t, nil)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/health", nil).Code)

	w := do(r, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "からあげクン")

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/latest-info", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/v1/save-text", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/missing", nil).Code)
}

func TestRouter_AuthProtectsAPIButNotHealth(t *testing.T) {
	r := newTestRouter(t, func(cfg *config.Config) {
		cfg.Auth.Enabled = true
		cfg.Auth.APIKeys = []string{"secret"}
	})

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/health", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/v1/products", nil).Code)
	assert.Equal(t, http.StatusOK,
		do(r, http.MethodGet, "/api/v1/products", map[string]string{"X-API-Key": "secret"}).Code)
}
