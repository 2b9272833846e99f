// Package handler provides the HTTP digest preview endpoint.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/jira_digest/internal/digest/model"
	issuemodel "github.com/festy23/jira_digest/internal/issue/model"
	"github.com/festy23/jira_digest/internal/middleware"
	"github.com/festy23/jira_digest/internal/render"
)

// Preview formats accepted by GET /digest.
const (
	FormatText = "text"
	FormatHTML = "html"
	FormatChat = "chat"
	FormatJSON = "json"
)

// Generator builds and renders a digest without delivering it.
type Generator interface {
	Generate(ctx context.Context, keys []string) (*model.Digest, render.Bundle, error)
}

// Handler handles HTTP requests for the digest preview.
type Handler struct {
	generator Generator
	logger    *zap.SugaredLogger
}

// New creates a new digest handler instance.
func New(generator Generator, logger *zap.SugaredLogger) *Handler {
	return &Handler{generator: generator, logger: logger}
}

// RegisterRoutes registers the digest preview route.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/digest", h.GetDigest)
}

// GetDigest handles GET /digest?format=text|html|chat|json&projects=A,B.
// @Summary Build and render a digest without delivering it
// @Tags Digest
// @Produce plain,html,json
// @Param format query string false "text (default), html, chat or json"
// @Param projects query string false "comma separated project keys"
// @Success 200
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /digest [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GetDigest(c *gin.Context) {
	format := c.DefaultQuery("format", FormatText)
	switch format {
	case FormatText, FormatHTML, FormatChat, FormatJSON:
	default:
		errorResponse(c, "INVALID_FORMAT", "format must be one of text, html, chat, json", http.StatusBadRequest)
		return
	}

	keys := parseProjects(c.Query("projects"))
	digest, bundle, err := h.generator.Generate(c.Request.Context(), keys)
	if err != nil {
		h.logger.Errorw("error building digest preview",
			"projects", keys,
			"request_id", middleware.GetRequestID(c),
			"error", err,
		)
		switch {
		case errors.Is(err, issuemodel.ErrConnectivity):
			errorResponse(c, "TRACKER_UNAVAILABLE", "issue tracker unavailable", http.StatusServiceUnavailable)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			errorResponse(c, "TIMEOUT", "digest generation did not finish", http.StatusServiceUnavailable)
		default:
			errorResponse(c, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		}
		return
	}

	switch format {
	case FormatHTML:
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(bundle.HTML))
	case FormatChat:
		c.JSON(http.StatusOK, bundle.Chat)
	case FormatJSON:
		c.JSON(http.StatusOK, digest)
	default:
		c.String(http.StatusOK, bundle.Text)
	}
}

// parseProjects splits a comma separated key list, dropping blanks.
func parseProjects(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func errorResponse(c *gin.Context, code, message string, status int) {
	c.JSON(status, middleware.ErrorResponse{
		Error: middleware.ErrorBody{Code: code, Message: message},
	})
}
