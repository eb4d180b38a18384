package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/newgoods/models"
	"github.com/use-agent/newgoods/store"
)

// SaveText returns a handler for POST /api/v1/save-text. The text field
// replaces the contents of path.
func SaveText(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SaveTextRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
			c.JSON(http.StatusBadRequest, models.SaveTextResponse{Error: "no text"})
			return
		}

		if err := store.SaveText(path, req.Text); err != nil {
			slog.Error("save-text failed", "path", path, "error", err)
			c.JSON(http.StatusInternalServerError, models.SaveTextResponse{Error: "write failed"})
			return
		}
		slog.Info("saved text", "path", path, "bytes", len(req.Text))

		c.JSON(http.StatusOK, models.SaveTextResponse{OK: true})
	}
}
