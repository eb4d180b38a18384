package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/newgoods/cache"
	"github.com/use-agent/newgoods/config"
	"github.com/use-agent/newgoods/models"
	"github.com/use-agent/newgoods/webhook"
)

// Products returns a handler for GET /api/v1/products.
//
// A cached response is served while fresh; otherwise the page is fetched
// once, cached, and (when configured) pushed to the webhook.
func Products(src ProductSource, cc *cache.Cache[*models.ProductsResponse], hook config.WebhookConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := cache.Key("products", src.EngineName())
		if cc != nil {
			if cached, hit := cc.Get(key); hit {
				resp := *cached
				resp.CacheStatus = "hit"
				c.JSON(http.StatusOK, resp)
				return
			}
		}

		res, err := src.Scrape(c.Request.Context())
		if err != nil {
			slog.Error("products scrape failed", "error", err)
			respondProductsError(c, err)
			return
		}

		resp := &models.ProductsResponse{
			Success:    true,
			Products:   res.Products,
			EngineUsed: res.EngineUsed,
		}
		if cc != nil {
			cc.Set(key, resp)
		}
		if hook.URL != "" {
			webhook.DeliverAsync(hook.URL, hook.Secret,
				webhook.NewEvent(webhook.EventProductsGenerated, res.FinalURL, res.Products))
		}

		out := *resp
		out.CacheStatus = "miss"
		c.JSON(http.StatusOK, out)
	}
}

// LatestInfo returns a handler for GET /api/v1/latest-info: new products
// plus running campaigns. Any failure yields 500 with empty lists.
func LatestInfo(src ProductSource, cc *cache.Cache[*models.LatestInfo]) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := cache.Key("latest-info", src.EngineName())
		if cc != nil {
			if cached, hit := cc.Get(key); hit {
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		info, err := src.LatestInfo(c.Request.Context())
		if err != nil {
			slog.Error("latest-info scrape failed", "error", err)
			c.JSON(http.StatusInternalServerError, models.LatestInfo{
				Products:  []models.Product{},
				Campaigns: []models.Campaign{},
				Error:     toPipelineError(err).ToDetail(),
			})
			return
		}

		if cc != nil {
			cc.Set(key, info)
		}
		c.JSON(http.StatusOK, info)
	}
}
