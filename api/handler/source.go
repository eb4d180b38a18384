package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/newgoods/models"
	"github.com/use-agent/newgoods/scraper"
)

// ProductSource is the part of *scraper.Scraper the handlers need.
type ProductSource interface {
	EngineName() string
	Scrape(ctx context.Context) (*scraper.ScrapeResult, error)
	LatestInfo(ctx context.Context) (*models.LatestInfo, error)
}

// toPipelineError coerces any error into a *models.PipelineError.
func toPipelineError(err error) *models.PipelineError {
	var pe *models.PipelineError
	if errors.As(err, &pe) {
		return pe
	}
	return models.NewPipelineError(models.ErrCodeInternal, err.Error(), err)
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.PipelineError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeFetch, models.ErrCodeHTTPStatus, models.ErrCodeBrowserCrash:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}

// respondProductsError writes a failed ProductsResponse.
func respondProductsError(c *gin.Context, err error) {
	pe := toPipelineError(err)
	c.JSON(mapErrorToStatus(pe), models.ProductsResponse{
		Success:  false,
		Products: []models.Product{},
		Error:    pe.ToDetail(),
	})
}
