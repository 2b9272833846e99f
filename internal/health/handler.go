// Package health provides health check endpoint handler.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/jira_digest/internal/database"
	"github.com/festy23/jira_digest/internal/issue/model"
)

// checkTimeout bounds a single dependency check.
const checkTimeout = 5 * time.Second

// CheckFunc reports whether a dependency is reachable.
type CheckFunc func(ctx context.Context) error

// Database checks the issue mirror connection.
func Database(db *gorm.DB) CheckFunc {
	return func(ctx context.Context) error {
		return database.HealthCheck(ctx, db)
	}
}

// Source checks the issue source by listing its projects.
func Source(src model.Source) CheckFunc {
	return func(ctx context.Context) error {
		_, err := src.ListProjects(ctx)
		return err
	}
}

// Handler handles health check requests.
type Handler struct {
	source string
	check  CheckFunc
	logger *zap.SugaredLogger
}

// New creates a new health handler instance. source names the checked
// dependency in the response.
func New(source string, check CheckFunc, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		source: source,
		check:  check,
		logger: logger,
	}
}

// Response represents health check response.
type Response struct {
	Status string `json:"status"`
	Source string `json:"source,omitempty"`
}

// Check handles GET /health request.
func (h *Handler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	if h.check != nil {
		if err := h.check(ctx); err != nil {
			h.logger.Warnw("health check failed", "source", h.source, "error", err)
			c.JSON(http.StatusServiceUnavailable, Response{
				Status: "unhealthy",
				Source: h.source,
			})
			return
		}
	}

	c.JSON(http.StatusOK, Response{
		Status: "ok",
		Source: h.source,
	})
}
