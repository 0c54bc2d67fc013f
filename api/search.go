package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dkoval/milesworth/internal/domain"
	"github.com/dkoval/milesworth/internal/metrics"
	"github.com/dkoval/milesworth/internal/service/recommend"
)

// QueryDefaults fills in the optional search parameters a client left out.
type QueryDefaults struct {
	MinLayoverMinutes int
	MaxResults        int
}

type searchRequest struct {
	Origin            string  `form:"origin"`
	Destination       string  `form:"destination"`
	StartDate         string  `form:"start_date"`
	EndDate           string  `form:"end_date"`
	IncludeSynthetic  *bool   `form:"include_synthetic"`
	MinLayoverMinutes *int    `form:"min_layover_minutes"`
	Objective         string  `form:"objective"`
	MinVPMCents       float64 `form:"min_vpm_cents"`
	MaxPrice          float64 `form:"max_price"`
	Airlines          string  `form:"airlines"`
	MilesBalance      int64   `form:"miles_balance"`
	MaxResults        int     `form:"max_results"`
}

// toQuery maps the request onto a domain query, applying defaults:
// synthetic routes on, objective vpm, configured layover and result cap.
func (r searchRequest) toQuery(d QueryDefaults) domain.Query {
	q := domain.Query{
		Origin:            strings.ToUpper(strings.TrimSpace(r.Origin)),
		Destination:       strings.ToUpper(strings.TrimSpace(r.Destination)),
		StartDate:         strings.TrimSpace(r.StartDate),
		EndDate:           strings.TrimSpace(r.EndDate),
		IncludeSynthetic:  true,
		MinLayoverMinutes: d.MinLayoverMinutes,
		Objective:         domain.ObjectiveVPM,
		MinVPMCents:       r.MinVPMCents,
		MaxPrice:          r.MaxPrice,
		MilesBalance:      r.MilesBalance,
		MaxResults:        d.MaxResults,
	}
	if r.IncludeSynthetic != nil {
		q.IncludeSynthetic = *r.IncludeSynthetic
	}
	if r.MinLayoverMinutes != nil {
		q.MinLayoverMinutes = *r.MinLayoverMinutes
	}
	if r.Objective != "" {
		q.Objective = domain.Objective(r.Objective)
	}
	if r.MaxResults > 0 {
		q.MaxResults = r.MaxResults
	}
	for _, a := range strings.Split(r.Airlines, ",") {
		if a = strings.TrimSpace(a); a != "" {
			q.AirlineAllowlist = append(q.AirlineAllowlist, a)
		}
	}
	return q
}

func BindQuery(c *gin.Context, d QueryDefaults) (domain.Query, error) {
	var req searchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		return domain.Query{}, fmt.Errorf("bad search parameters: %w", err)
	}

	q := req.toQuery(d)
	if err := q.Validate(); err != nil {
		return domain.Query{}, err
	}
	return q, nil
}

type SearchHandler struct {
	service  recommend.RecommendUseCase
	defaults QueryDefaults
}

func NewSearchHandler(service recommend.RecommendUseCase, defaults QueryDefaults) *SearchHandler {
	return &SearchHandler{service: service, defaults: defaults}
}

func (h *SearchHandler) Register(router *gin.RouterGroup) {
	router.GET("/search", h.search)
}

func (h *SearchHandler) search(c *gin.Context) {
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

	metrics.ObserveSearch(len(routes))
	c.JSON(http.StatusOK, gin.H{"count": len(routes), "routes": routes})
}
