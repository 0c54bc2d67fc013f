package recommend

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dkoval/milesworth/internal/domain"
	"github.com/dkoval/milesworth/internal/kafka"
	"github.com/dkoval/milesworth/internal/repository"
)

type RecommendUseCase interface {
	Search(ctx context.Context, q domain.Query) ([]domain.Route, error)
}

// ResultsCache holds computed result sets keyed by the query digest.
type ResultsCache interface {
	GetResults(ctx context.Context, queryKey string) ([]domain.Route, error)
	SetResults(ctx context.Context, queryKey string, routes []domain.Route) error
}

// EventPublisher emits search events for downstream aggregation.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

type RecommendService struct {
	repo           repository.FlightRepository
	cache          ResultsCache
	producer       EventPublisher
	eventsTopic    string
	thresholdCents float64
}

type Option func(*RecommendService)

// WithCache enables the Redis-backed result cache.
func WithCache(cache ResultsCache) Option {
	return func(s *RecommendService) { s.cache = cache }
}

// WithPublisher enables search event publication to the given topic.
func WithPublisher(producer EventPublisher, topic string) Option {
	return func(s *RecommendService) {
		s.producer = producer
		s.eventsTopic = topic
	}
}

func NewRecommendService(repo repository.FlightRepository, thresholdCents float64, opts ...Option) *RecommendService {
	s := &RecommendService{repo: repo, thresholdCents: thresholdCents}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search runs the full recommendation pipeline: load candidate routes,
// score, filter, sort, truncate. Cache and event emission both degrade
// silently so a search never fails on infrastructure problems.
func (s *RecommendService) Search(ctx context.Context, q domain.Query) ([]domain.Route, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	queryKey := q.CacheKey()
	if s.cache != nil {
		cached, err := s.cache.GetResults(ctx, queryKey)
		if err != nil {
			log.Printf("results cache get: %v", err)
		} else if cached != nil {
			s.publishEvent(ctx, q, len(cached), true)
			return cached, nil
		}
	}

	routes, err := s.buildRoutes(ctx, q)
	if err != nil {
		return nil, err
	}

	routes = s.applyFilters(routes, q)
	sortRoutes(routes, q.Objective)
	if len(routes) > q.MaxResults {
		routes = routes[:q.MaxResults]
	}

	if s.cache != nil {
		if err := s.cache.SetResults(ctx, queryKey, routes); err != nil {
			log.Printf("results cache set: %v", err)
		}
	}
	s.publishEvent(ctx, q, len(routes), false)

	return routes, nil
}

func (s *RecommendService) buildRoutes(ctx context.Context, q domain.Query) ([]domain.Route, error) {
	routes := make([]domain.Route, 0)

	direct, err := s.repo.ListDirect(ctx, q.Origin, q.Destination, q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}
	for _, f := range direct {
		r, err := domain.BuildRoute(domain.RouteKindDirect, f)
		if err != nil {
			continue
		}
		routes = append(routes, s.score(r))
	}

	if q.IncludeSynthetic {
		synthetic, err := s.synthesize(ctx, q)
		if err != nil {
			return nil, err
		}
		routes = append(routes, synthetic...)
	}
	return routes, nil
}

// synthesize joins direct legs on a shared connecting airport: every pair
// where leg1.Destination == leg2.Origin, same travel date, connection at
// neither endpoint, and a layover of at least the requested minimum.
func (s *RecommendService) synthesize(ctx context.Context, q domain.Query) ([]domain.Route, error) {
	departing, err := s.repo.ListDeparting(ctx, q.Origin, q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}
	arriving, err := s.repo.ListArriving(ctx, q.Destination, q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}

	type hop struct {
		via  string
		date string
	}
	secondLegs := make(map[hop][]domain.Flight)
	for _, leg := range arriving {
		if leg.Origin == q.Origin {
			continue
		}
		key := hop{via: leg.Origin, date: leg.Date}
		secondLegs[key] = append(secondLegs[key], leg)
	}

	minLayover := time.Duration(q.MinLayoverMinutes) * time.Minute

	routes := make([]domain.Route, 0)
	for _, leg1 := range departing {
		if leg1.Destination == q.Destination || leg1.Destination == q.Origin {
			continue
		}
		for _, leg2 := range secondLegs[hop{via: leg1.Destination, date: leg1.Date}] {
			layover := leg2.DepartureTime.Sub(leg1.ArrivalTime)
			if layover <= 0 || layover < minLayover {
				continue
			}
			r, err := domain.BuildRoute(domain.RouteKindSynthetic, leg1, leg2)
			if err != nil {
				continue
			}
			routes = append(routes, s.score(r))
		}
	}
	return routes, nil
}

func (s *RecommendService) score(r domain.Route) domain.Route {
	if r.VPMCents >= s.thresholdCents {
		r.Recommendation = domain.RecommendationUseMiles
	} else {
		r.Recommendation = domain.RecommendationPayCash
	}
	return r
}

func (s *RecommendService) applyFilters(routes []domain.Route, q domain.Query) []domain.Route {
	allowed := make(map[string]struct{}, len(q.AirlineAllowlist))
	for _, a := range q.AirlineAllowlist {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			allowed[a] = struct{}{}
		}
	}

	kept := routes[:0]
	for _, r := range routes {
		if r.Price <= 0 {
			continue
		}
		if q.MaxPrice > 0 && r.Price > q.MaxPrice {
			continue
		}
		if q.MinVPMCents > 0 && r.VPMCents < q.MinVPMCents {
			continue
		}
		if len(allowed) > 0 && !routeAllowed(r, allowed) {
			continue
		}
		if q.MilesBalance > 0 {
			r.WithinBalance = r.Miles <= q.MilesBalance
		}
		kept = append(kept, r)
	}
	return kept
}

// routeAllowed requires every leg's airline to be on the allowlist, so a
// synthetic route with one disallowed carrier is excluded.
func routeAllowed(r domain.Route, allowed map[string]struct{}) bool {
	for _, leg := range r.Legs {
		if _, ok := allowed[strings.ToLower(leg.Airline)]; !ok {
			return false
		}
	}
	return true
}

// sortRoutes orders stably so ties keep their direct-before-synthetic
// build order.
func sortRoutes(routes []domain.Route, objective domain.Objective) {
	switch objective {
	case domain.ObjectivePrice:
		sort.SliceStable(routes, func(i, j int) bool {
			if routes[i].Price != routes[j].Price {
				return routes[i].Price < routes[j].Price
			}
			if routes[i].Taxes != routes[j].Taxes {
				return routes[i].Taxes < routes[j].Taxes
			}
			return routes[i].VPMCents > routes[j].VPMCents
		})
	default:
		sort.SliceStable(routes, func(i, j int) bool {
			if routes[i].VPMCents != routes[j].VPMCents {
				return routes[i].VPMCents > routes[j].VPMCents
			}
			return routes[i].Price < routes[j].Price
		})
	}
}

func (s *RecommendService) publishEvent(ctx context.Context, q domain.Query, resultCount int, cacheHit bool) {
	if s.producer == nil {
		return
	}

	event := kafka.SearchEvent{
		ID:          uuid.NewString(),
		Query:       q,
		ResultCount: resultCount,
		CacheHit:    cacheHit,
		SearchedAt:  time.Now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, q.Origin+"-"+q.Destination, event); err != nil {
		log.Printf("publish search event: %v", err)
	}
}

var _ RecommendUseCase = (*RecommendService)(nil)
