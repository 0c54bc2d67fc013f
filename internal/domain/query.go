package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

type Objective string

const (
	ObjectiveVPM   Objective = "vpm"
	ObjectivePrice Objective = "price"
)

const dateLayout = "2006-01-02"

// Query holds the search parameters for one recommendation run.
// Zero values for MinVPMCents, MaxPrice, MilesBalance and an empty
// AirlineAllowlist mean "no constraint".
type Query struct {
	Origin            string    `json:"origin"`
	Destination       string    `json:"destination"`
	StartDate         string    `json:"start_date"`
	EndDate           string    `json:"end_date"`
	IncludeSynthetic  bool      `json:"include_synthetic"`
	MinLayoverMinutes int       `json:"min_layover_minutes"`
	Objective         Objective `json:"objective"`
	MinVPMCents       float64   `json:"min_vpm_cents"`
	MaxPrice          float64   `json:"max_price"`
	AirlineAllowlist  []string  `json:"airline_allowlist"`
	MilesBalance      int64     `json:"miles_balance"`
	MaxResults        int       `json:"max_results"`
}

func (q Query) Validate() error {
	if q.Origin == "" || q.Destination == "" {
		return fmt.Errorf("origin and destination are required")
	}
	if q.Origin == q.Destination {
		return fmt.Errorf("origin and destination must differ")
	}
	start, err := time.Parse(dateLayout, q.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start_date %q: %w", q.StartDate, err)
	}
	end, err := time.Parse(dateLayout, q.EndDate)
	if err != nil {
		return fmt.Errorf("invalid end_date %q: %w", q.EndDate, err)
	}
	if end.Before(start) {
		return fmt.Errorf("end_date is before start_date")
	}
	if q.MinLayoverMinutes < 0 {
		return fmt.Errorf("min_layover_minutes must be non-negative")
	}
	switch q.Objective {
	case ObjectiveVPM, ObjectivePrice:
	default:
		return fmt.Errorf("unknown objective %q", q.Objective)
	}
	if q.MaxResults <= 0 {
		return fmt.Errorf("max_results must be positive")
	}
	return nil
}

// CacheKey is a stable digest of every parameter that affects the result
// set, used as the Redis cache key suffix.
func (q Query) CacheKey() string {
	allow := append([]string(nil), q.AirlineAllowlist...)
	for i := range allow {
		allow[i] = strings.ToUpper(strings.TrimSpace(allow[i]))
	}
	raw := fmt.Sprintf("%s|%s|%s|%s|%t|%d|%s|%.4f|%.4f|%s|%d|%d",
		q.Origin, q.Destination, q.StartDate, q.EndDate,
		q.IncludeSynthetic, q.MinLayoverMinutes, q.Objective,
		q.MinVPMCents, q.MaxPrice, strings.Join(allow, ","),
		q.MilesBalance, q.MaxResults)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:16])
}
