package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkoval/milesworth/internal/domain"
	"github.com/dkoval/milesworth/internal/repository"
	"github.com/dkoval/milesworth/internal/service/recommend"
)

type AirportsHandler struct {
	service  recommend.RecommendUseCase
	airports repository.AirportRepository
	defaults QueryDefaults
}

func NewAirportsHandler(service recommend.RecommendUseCase, airports repository.AirportRepository, defaults QueryDefaults) *AirportsHandler {
	return &AirportsHandler{service: service, airports: airports, defaults: defaults}
}

func (h *AirportsHandler) Register(router *gin.RouterGroup) {
	router.GET("/airports", h.pins)
}

// pins resolves every airport touched by the current result set to map
// coordinates. Codes missing from the airports CSV are silently skipped.
func (h *AirportsHandler) pins(c *gin.Context) {
	q, err := BindQuery(c, h.defaults)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	routes, err := h.service.Search(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	pins := h.airports.Lookup(RouteAirportCodes(routes))
	c.JSON(http.StatusOK, gin.H{"airports": pins})
}

// RouteAirportCodes collects the IATA codes of every leg endpoint, in
// first-seen order.
func RouteAirportCodes(routes []domain.Route) []string {
	seen := make(map[string]struct{})
	codes := make([]string, 0)
	add := func(code string) {
		if _, ok := seen[code]; ok {
			return
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}

	for _, r := range routes {
		for _, leg := range r.Legs {
			add(leg.Origin)
			add(leg.Destination)
		}
	}
	return codes
}
