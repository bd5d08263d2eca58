package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/recipematch/backend/internal/domain"
	"github.com/recipematch/backend/internal/usecase"
	"go.uber.org/zap"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog     *usecase.CatalogService
	recommender *usecase.RecommendationService
	matcher     *usecase.DirectMatcher
	logger      *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalog *usecase.CatalogService,
	recommender *usecase.RecommendationService,
	matcher *usecase.DirectMatcher,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		catalog:     catalog,
		recommender: recommender,
		matcher:     matcher,
		logger:      logger,
	}
}

// groupSummary is the listing form of a product group
type groupSummary struct {
	Key            string   `json:"key"`
	DisplayName    string   `json:"display_name"`
	PrimaryID      string   `json:"primary_id"`
	AlternativeIDs []string `json:"alternative_ids"`
	Count          int      `json:"count"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "recipematch-backend",
		"version": "1.0.0",
	})
}

// SmartMatches recommends at most max_products catalog products for a recipe,
// one per matched product group.
func (h *Handler) SmartMatches(c *gin.Context) {
	req, ok := h.bindMatchRequest(c)
	if !ok {
		return
	}

	ctx := h.runContext(c)
	products, err := h.catalog.Products(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result := h.recommender.GetSmartMatches(ctx, req.Ingredients, products, req.DietIDs, req.MaxProducts)
	c.JSON(http.StatusOK, result)
}

// ProductMatches assigns catalog products to recipe ingredients by title word
// matching. Used when recipes are authored in bulk.
func (h *Handler) ProductMatches(c *gin.Context) {
	req, ok := h.bindMatchRequest(c)
	if !ok {
		return
	}

	products, err := h.catalog.Products(h.runContext(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	result := h.matcher.Match(req.Ingredients, products, req.DietIDs)
	c.JSON(http.StatusOK, result)
}

// CatalogGroups lists the product groups built from the current catalog
func (h *Handler) CatalogGroups(c *gin.Context) {
	ctx := h.runContext(c)
	products, err := h.catalog.Products(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}

	groups, stats := h.recommender.BuildGroups(ctx, products)

	summaries := make([]groupSummary, 0, len(groups))
	for _, g := range groups {
		altIDs := make([]string, 0, len(g.Alternatives))
		for _, alt := range g.Alternatives {
			altIDs = append(altIDs, alt.ID)
		}
		summaries = append(summaries, groupSummary{
			Key:            g.Key,
			DisplayName:    g.DisplayName,
			PrimaryID:      g.Primary.ID,
			AlternativeIDs: altIDs,
			Count:          g.Count,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"groups": summaries,
		"stats":  stats,
	})
}

// InvalidateCatalog drops the cached catalog snapshot
func (h *Handler) InvalidateCatalog(c *gin.Context) {
	if err := h.catalog.Invalidate(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) bindMatchRequest(c *gin.Context) (domain.SmartMatchRequest, bool) {
	var req domain.SmartMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return req, false
	}

	ingredients := make([]string, 0, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		if ing = strings.TrimSpace(ing); ing != "" {
			ingredients = append(ingredients, ing)
		}
	}
	if len(ingredients) == 0 {
		h.respondError(c, fmt.Errorf("%w: ingredients must not be empty", domain.ErrInvalidRequest))
		return req, false
	}
	if req.MaxProducts < 0 {
		h.respondError(c, fmt.Errorf("%w: max_products must not be negative", domain.ErrInvalidRequest))
		return req, false
	}

	req.Ingredients = ingredients
	return req, true
}

// runContext ties the pipeline run id to the request id
func (h *Handler) runContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if id := requestid.Get(c); id != "" {
		ctx = usecase.WithRunID(ctx, id)
	}
	return ctx
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrCatalogUnavailable):
		status = http.StatusBadGateway
	}

	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err), zap.String("request_id", requestid.Get(c)))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
