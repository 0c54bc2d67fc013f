package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dkoval/milesworth/internal/domain"
)

// PopularSource reads the aggregated route-popularity counters. Nil when
// Redis is disabled.
type PopularSource interface {
	TopRoutes(ctx context.Context, limit int) ([]domain.PopularRoute, error)
}

type PopularHandler struct {
	source       PopularSource
	defaultLimit int
}

func NewPopularHandler(source PopularSource, defaultLimit int) *PopularHandler {
	return &PopularHandler{source: source, defaultLimit: defaultLimit}
}

func (h *PopularHandler) Register(router *gin.RouterGroup) {
	router.GET("/popular", h.top)
}

func (h *PopularHandler) top(c *gin.Context) {
	if h.source == nil {
		c.JSON(http.StatusOK, gin.H{"routes": []domain.PopularRoute{}})
		return
	}

	limit := h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	routes, err := h.source.TopRoutes(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes})
}
