package domain

import (
	"fmt"
	"strings"
)

// PopularRoute is an origin-destination pair with its search count,
// aggregated by the worker from search events.
type PopularRoute struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Searches    int64  `json:"searches"`
}

// ParsePopularRoute decodes the "ORG-DST" counter member format.
func ParsePopularRoute(member string, searches int64) (PopularRoute, error) {
	parts := strings.SplitN(member, "-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return PopularRoute{}, fmt.Errorf("malformed route member %q", member)
	}
	return PopularRoute{Origin: parts[0], Destination: parts[1], Searches: searches}, nil
}
