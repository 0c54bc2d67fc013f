package web

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dkoval/milesworth/api"
	"github.com/dkoval/milesworth/internal/domain"
	"github.com/dkoval/milesworth/internal/service/recommend"
)

// Handler serves the server-rendered search page.
type Handler struct {
	service  recommend.RecommendUseCase
	popular  api.PopularSource
	defaults api.QueryDefaults
}

func NewHandler(service recommend.RecommendUseCase, popular api.PopularSource, defaults api.QueryDefaults) *Handler {
	return &Handler{service: service, popular: popular, defaults: defaults}
}

func (h *Handler) Register(router *gin.Engine) {
	router.GET("/", h.index)
}

type chartBar struct {
	Label    string
	VPMCents float64
	// WidthPct is precomputed so the template stays arithmetic-free.
	WidthPct float64
}

type pageData struct {
	Searched bool
	Query    domain.Query
	QueryRaw string
	// AirlinesRaw echoes the airlines filter back into the form input.
	AirlinesRaw string
	Error       string
	Routes      []domain.Route
	Count       int
	BestVPM     float64
	Bars        []chartBar
	Scatter     []scatterPoint
	Popular     []domain.PopularRoute
}

func (h *Handler) index(c *gin.Context) {
	data := pageData{
		QueryRaw:    c.Request.URL.RawQuery,
		AirlinesRaw: c.Query("airlines"),
	}

	if h.popular != nil {
		popular, err := h.popular.TopRoutes(c.Request.Context(), 5)
		if err != nil {
			log.Printf("popular routes: %v", err)
		} else {
			data.Popular = popular
		}
	}

	// A bare page load shows just the form.
	if c.Query("origin") == "" && c.Query("destination") == "" {
		c.HTML(http.StatusOK, "index.tmpl", data)
		return
	}

	data.Searched = true
	q, err := api.BindQuery(c, h.defaults)
	if err != nil {
		data.Error = err.Error()
		c.HTML(http.StatusBadRequest, "index.tmpl", data)
		return
	}
	data.Query = q

	routes, err := h.service.Search(c.Request.Context(), q)
	if err != nil {
		data.Error = err.Error()
		c.HTML(http.StatusInternalServerError, "index.tmpl", data)
		return
	}

	data.Routes = routes
	data.Count = len(routes)
	data.Bars = topBars(routes, 10)
	data.Scatter = scatterPoints(routes)
	if len(data.Bars) > 0 {
		data.BestVPM = data.Bars[0].VPMCents
	}

	c.HTML(http.StatusOK, "index.tmpl", data)
}

type scatterPoint struct {
	// XPct and YPct position the dot inside the chart viewport, in
	// percent. YPct grows downward, so the cheapest route sits lowest.
	XPct  float64
	YPct  float64
	Label string
}

// scatterPoints maps routes onto a price vs miles plane. A single route
// gives the chart nothing to compare, so fewer than two yields nil.
func scatterPoints(routes []domain.Route) []scatterPoint {
	if len(routes) < 2 {
		return nil
	}

	minMiles, maxMiles := routes[0].Miles, routes[0].Miles
	minPrice, maxPrice := routes[0].Price, routes[0].Price
	for _, r := range routes[1:] {
		if r.Miles < minMiles {
			minMiles = r.Miles
		}
		if r.Miles > maxMiles {
			maxMiles = r.Miles
		}
		if r.Price < minPrice {
			minPrice = r.Price
		}
		if r.Price > maxPrice {
			maxPrice = r.Price
		}
	}

	points := make([]scatterPoint, 0, len(routes))
	for _, r := range routes {
		x := 50.0
		if maxMiles > minMiles {
			x = float64(r.Miles-minMiles) / float64(maxMiles-minMiles) * 100
		}
		y := 50.0
		if maxPrice > minPrice {
			y = 100 - (r.Price-minPrice)/(maxPrice-minPrice)*100
		}
		points = append(points, scatterPoint{
			XPct:  x,
			YPct:  y,
			Label: r.Airlines() + " • $" + formatUSD(r.Price) + " • " + formatMiles(r.Miles) + " mi",
		})
	}
	return points
}

func formatUSD(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatMiles(v int64) string {
	return strconv.FormatInt(v, 10)
}

// topBars picks the n best routes by value per mile and scales bar widths
// against the leader.
func topBars(routes []domain.Route, n int) []chartBar {
	best := make([]domain.Route, len(routes))
	copy(best, routes)
	for i := 0; i < len(best); i++ {
		top := i
		for j := i + 1; j < len(best); j++ {
			if best[j].VPMCents > best[top].VPMCents {
				top = j
			}
		}
		best[i], best[top] = best[top], best[i]
	}
	if len(best) > n {
		best = best[:n]
	}
	if len(best) == 0 {
		return nil
	}

	max := best[0].VPMCents
	bars := make([]chartBar, 0, len(best))
	for _, r := range best {
		width := 100.0
		if max > 0 {
			width = r.VPMCents / max * 100
		}
		bars = append(bars, chartBar{
			Label:    r.Airlines() + " • " + r.Date + " • " + string(r.Kind),
			VPMCents: r.VPMCents,
			WidthPct: width,
		})
	}
	return bars
}
