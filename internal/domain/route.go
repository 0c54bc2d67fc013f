package domain

import (
	"fmt"
	"strings"
)

type RouteKind string

const (
	RouteKindDirect    RouteKind = "direct"
	RouteKindSynthetic RouteKind = "synthetic"
)

type Recommendation string

const (
	RecommendationUseMiles Recommendation = "use miles"
	RecommendationPayCash  Recommendation = "pay cash"
)

// Route is a candidate itinerary, either a single direct flight or a
// two-leg combination joined at a connecting airport. Routes are derived
// per search and never persisted.
type Route struct {
	Kind           RouteKind      `json:"type"`
	Date           string         `json:"date"`
	Origin         string         `json:"origin"`
	Destination    string         `json:"destination"`
	Path           string         `json:"route"`
	Legs           []Flight       `json:"legs"`
	Price          float64        `json:"price"`
	Taxes          float64        `json:"taxes"`
	Miles          int64          `json:"miles"`
	VPMCents       float64        `json:"value_per_mile_cents"`
	SavingsUSD     float64        `json:"estimated_savings_usd"`
	LayoverMinutes int            `json:"layover_minutes,omitempty"`
	Recommendation Recommendation `json:"recommendation"`
	WithinBalance  bool           `json:"within_balance"`
}

// BuildRoute derives a route from its legs: totals by addition, value per
// mile, estimated savings, layover for two-leg itineraries, and the
// "LAX → DFW → JFK" path string. Legs must already be ordered.
func BuildRoute(kind RouteKind, legs ...Flight) (Route, error) {
	if len(legs) == 0 {
		return Route{}, fmt.Errorf("route needs at least one leg")
	}

	r := Route{
		Kind:        kind,
		Date:        legs[0].Date,
		Origin:      legs[0].Origin,
		Destination: legs[len(legs)-1].Destination,
		Legs:        legs,
	}

	parts := []string{legs[0].Origin}
	for _, leg := range legs {
		r.Price += leg.Price
		r.Taxes += leg.Taxes
		r.Miles += leg.Miles
		parts = append(parts, leg.Destination)
	}
	r.Path = strings.Join(parts, " → ")

	vpm, err := ValuePerMileCents(r.Price, r.Miles)
	if err != nil {
		return Route{}, err
	}
	r.VPMCents = vpm
	r.SavingsUSD = EstimatedSavings(r.Price, r.Taxes)

	if len(legs) == 2 {
		layover := legs[1].DepartureTime.Sub(legs[0].ArrivalTime)
		r.LayoverMinutes = int(layover.Minutes())
	}
	return r, nil
}

// Airlines lists the operating airlines in leg order, deduplicated.
func (r Route) Airlines() string {
	seen := make(map[string]struct{}, len(r.Legs))
	parts := make([]string, 0, len(r.Legs))
	for _, leg := range r.Legs {
		if _, ok := seen[leg.Airline]; ok {
			continue
		}
		seen[leg.Airline] = struct{}{}
		parts = append(parts, leg.Airline)
	}
	return strings.Join(parts, " + ")
}

// ValuePerMileCents computes the redemption value in cents per mile.
// Returns an error for non-positive miles, which would make the ratio
// meaningless.
func ValuePerMileCents(priceUSD float64, miles int64) (float64, error) {
	if miles <= 0 {
		return 0, fmt.Errorf("miles must be positive, got %d", miles)
	}
	if priceUSD < 0 {
		return 0, fmt.Errorf("price must be non-negative, got %.2f", priceUSD)
	}
	return priceUSD / float64(miles) * 100, nil
}

// EstimatedSavings is the cash avoided by redeeming: price minus the taxes
// still due, floored at zero.
func EstimatedSavings(priceUSD, taxesUSD float64) float64 {
	s := priceUSD - taxesUSD
	if s < 0 {
		return 0
	}
	return s
}
