package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/newgoods/api/handler"
	"github.com/use-agent/newgoods/api/middleware"
	"github.com/use-agent/newgoods/cache"
	"github.com/use-agent/newgoods/config"
	"github.com/use-agent/newgoods/models"
)

// Caches holds the response caches shared by the handlers.
type Caches struct {
	Products   *cache.Cache[*models.ProductsResponse]
	LatestInfo *cache.Cache[*models.LatestInfo]
}

// NewCaches builds both caches from cfg.
func NewCaches(cfg config.CacheConfig) *Caches {
	return &Caches{
		Products:   cache.New[*models.ProductsResponse](cfg.MaxEntries, cfg.TTL),
		LatestInfo: cache.New[*models.LatestInfo](cfg.MaxEntries, cfg.TTL),
	}
}

// Stop ends the caches' cleanup goroutines.
func (c *Caches) Stop() {
	c.Products.Stop()
	c.LatestInfo.Stop()
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health stays outside auth so monitoring probes always work.
func NewRouter(src handler.ProductSource, cfg *config.Config, cc *Caches, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(src, startTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.GET("/products", handler.Products(src, cc.Products, cfg.Webhook))
	protected.GET("/latest-info", handler.LatestInfo(src, cc.LatestInfo))
	protected.POST("/save-text", handler.SaveText(cfg.Output.SaveTextPath))

	return r
}
