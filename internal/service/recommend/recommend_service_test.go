package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dkoval/milesworth/internal/domain"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) ListDirect(ctx context.Context, origin, destination, startDate, endDate string) ([]domain.Flight, error) {
	args := m.Called(ctx, origin, destination, startDate, endDate)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) ListDeparting(ctx context.Context, origin, startDate, endDate string) ([]domain.Flight, error) {
	args := m.Called(ctx, origin, startDate, endDate)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) ListArriving(ctx context.Context, destination, startDate, endDate string) ([]domain.Flight, error) {
	args := m.Called(ctx, destination, startDate, endDate)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) CountFlights(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockResultsCache struct {
	mock.Mock
}

func (m *MockResultsCache) GetResults(ctx context.Context, queryKey string) ([]domain.Route, error) {
	args := m.Called(ctx, queryKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Route), args.Error(1)
}

func (m *MockResultsCache) SetResults(ctx context.Context, queryKey string, routes []domain.Route) error {
	args := m.Called(ctx, queryKey, routes)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	args := m.Called(ctx, topic, key, payload)
	return args.Error(0)
}

func ts(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02T15:04:05", value)
	require.NoError(t, err)
	return parsed
}

func baseQuery() domain.Query {
	return domain.Query{
		Origin:            "LAX",
		Destination:       "JFK",
		StartDate:         "2025-08-15",
		EndDate:           "2025-08-15",
		IncludeSynthetic:  false,
		MinLayoverMinutes: 45,
		Objective:         domain.ObjectiveVPM,
		MaxResults:        100,
	}
}

func directFlights(t *testing.T) []domain.Flight {
	return []domain.Flight{
		{
			ID: 1, Airline: "Delta", FlightNumber: "DL100",
			Origin: "LAX", Destination: "JFK", Date: "2025-08-15",
			DepartureTime: ts(t, "2025-08-15T08:00:00"), ArrivalTime: ts(t, "2025-08-15T16:30:00"),
			Price: 450, Taxes: 30, Miles: 30000, // 1.5 cents/mile
		},
		{
			ID: 2, Airline: "JetBlue", FlightNumber: "B6200",
			Origin: "LAX", Destination: "JFK", Date: "2025-08-15",
			DepartureTime: ts(t, "2025-08-15T09:00:00"), ArrivalTime: ts(t, "2025-08-15T17:30:00"),
			Price: 300, Taxes: 20, Miles: 25000, // 1.2 cents/mile
		},
	}
}

func TestSearch_DirectRoutes(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewRecommendService(mockRepo, 1.3)

	ctx := context.Background()
	q := baseQuery()

	mockRepo.On("ListDirect", ctx, "LAX", "JFK", "2025-08-15", "2025-08-15").
		Return(directFlights(t), nil).Once()

	routes, err := service.Search(ctx, q)

	require.NoError(t, err)
	require.Len(t, routes, 2)

	// vpm objective: 1.5 before 1.2
	assert.InDelta(t, 1.5, routes[0].VPMCents, 0.0001)
	assert.InDelta(t, 1.2, routes[1].VPMCents, 0.0001)
	assert.Equal(t, domain.RecommendationUseMiles, routes[0].Recommendation)
	assert.Equal(t, domain.RecommendationPayCash, routes[1].Recommendation)
	assert.Equal(t, "LAX → JFK", routes[0].Path)

	mockRepo.AssertExpectations(t)
}

func TestSearch_SyntheticJoin(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewRecommendService(mockRepo, 1.2)

	ctx := context.Background()
	q := baseQuery()
	q.IncludeSynthetic = true

	departing := []domain.Flight{
		{
			ID: 10, Airline: "Delta", FlightNumber: "DL310",
			Origin: "LAX", Destination: "DFW", Date: "2025-08-15",
			DepartureTime: ts(t, "2025-08-15T08:00:00"), ArrivalTime: ts(t, "2025-08-15T11:00:00"),
			Price: 200, Taxes: 15, Miles: 12500,
		},
		{
			ID: 11, Airline: "United", FlightNumber: "UA55",
			Origin: "LAX", Destination: "ORD", Date: "2025-08-15",
			DepartureTime: ts(t, "2025-08-15T07:00:00"), ArrivalTime: ts(t, "2025-08-15T13:00:00"),
			Price: 220, Taxes: 18, Miles: 14000,
		},
	}
	arriving := []domain.Flight{
		{
			// layover 90 min behind leg 10, kept
			ID: 20, Airline: "American Airlines", FlightNumber: "AA77",
			Origin: "DFW", Destination: "JFK", Date: "2025-08-15",
			DepartureTime: ts(t, "2025-08-15T12:30:00"), ArrivalTime: ts(t, "2025-08-15T17:00:00"),
			Price: 250, Taxes: 20, Miles: 15000,
		},
		{
			// layover 20 min, below the 45 minimum
			ID: 21, Airline: "American Airlines", FlightNumber: "AA78",
			Origin: "DFW", Destination: "JFK", Date: "2025-08-15",
			DepartureTime: ts(t, "2025-08-15T11:20:00"), ArrivalTime: ts(t, "2025-08-15T15:40:00"),
			Price: 240, Taxes: 20, Miles: 15000,
		},
		{
			// departs before leg 11 lands, negative layover
			ID: 22, Airline: "United", FlightNumber: "UA90",
			Origin: "ORD", Destination: "JFK", Date: "2025-08-15",
			DepartureTime: ts(t, "2025-08-15T12:00:00"), ArrivalTime: ts(t, "2025-08-15T15:00:00"),
			Price: 180, Taxes: 12, Miles: 11000,
		},
	}

	mockRepo.On("ListDirect", ctx, "LAX", "JFK", "2025-08-15", "2025-08-15").
		Return([]domain.Flight{}, nil).Once()
	mockRepo.On("ListDeparting", ctx, "LAX", "2025-08-15", "2025-08-15").
		Return(departing, nil).Once()
	mockRepo.On("ListArriving", ctx, "JFK", "2025-08-15", "2025-08-15").
		Return(arriving, nil).Once()

	routes, err := service.Search(ctx, q)

	require.NoError(t, err)
	require.Len(t, routes, 1)

	r := routes[0]
	assert.Equal(t, domain.RouteKindSynthetic, r.Kind)
	require.Len(t, r.Legs, 2)
	assert.Equal(t, r.Legs[0].Destination, r.Legs[1].Origin)
	assert.Equal(t, 90, r.LayoverMinutes)
	assert.Equal(t, "LAX → DFW → JFK", r.Path)
	assert.Equal(t, 450.0, r.Price)
	assert.Equal(t, int64(27500), r.Miles)

	mockRepo.AssertExpectations(t)
}

func TestSearch_MaxPriceFilter(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewRecommendService(mockRepo, 1.2)

	ctx := context.Background()
	q := baseQuery()
	q.MaxPrice = 400

	mockRepo.On("ListDirect", ctx, "LAX", "JFK", "2025-08-15", "2025-08-15").
		Return(directFlights(t), nil).Once()

	routes, err := service.Search(ctx, q)

	require.NoError(t, err)
	require.Len(t, routes, 1)
	for _, r := range routes {
		assert.LessOrEqual(t, r.Price, 400.0)
	}
}

func TestSearch_MinVPMFilter(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewRecommendService(mockRepo, 1.2)

	ctx := context.Background()
	q := baseQuery()
	q.MinVPMCents = 1.4

	mockRepo.On("ListDirect", ctx, "LAX", "JFK", "2025-08-15", "2025-08-15").
		Return(directFlights(t), nil).Once()

	routes, err := service.Search(ctx, q)

	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.InDelta(t, 1.5, routes[0].VPMCents, 0.0001)
}

func TestSearch_AirlineAllowlist(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewRecommendService(mockRepo, 1.2)

	ctx := context.Background()
	q := baseQuery()
	q.AirlineAllowlist = []string{"delta"}

	mockRepo.On("ListDirect", ctx, "LAX", "JFK", "2025-08-15", "2025-08-15").
		Return(directFlights(t), nil).Once()

	routes, err := service.Search(ctx, q)

	require.NoError(t, err)
	require.Len(t, routes, 1, "allowlist match must be case-insensitive")
	assert.Equal(t, "Delta", routes[0].Legs[0].Airline)
}

func TestSearch_ObjectivePrice(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewRecommendService(mockRepo, 1.2)

	ctx := context.Background()
	q := baseQuery()
	q.Objective = domain.ObjectivePrice

	mockRepo.On("ListDirect", ctx, "LAX", "JFK", "2025-08-15", "2025-08-15").
		Return(directFlights(t), nil).Once()

	routes, err := service.Search(ctx, q)

	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, 300.0, routes[0].Price)
	assert.Equal(t, 450.0, routes[1].Price)
}

func TestSearch_ObjectivePrice_TieBreakers(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewRecommendService(mockRepo, 1.2)

	ctx := context.Background()
	q := baseQuery()
	q.Objective = domain.ObjectivePrice

	// all the same price: taxes ascending decides, then value per mile
	// descending
	flights := []domain.Flight{
		{
			ID: 1, Airline: "Delta", FlightNumber: "DL1",
			Origin: "LAX", Destination: "JFK", Date: "2025-08-15",
			DepartureTime: ts(t, "2025-08-15T08:00:00"), ArrivalTime: ts(t, "2025-08-15T16:30:00"),
			Price: 300, Taxes: 30, Miles: 25000, // 1.2 cents/mile
		},
		{
			ID: 2, Airline: "JetBlue", FlightNumber: "B62",
			Origin: "LAX", Destination: "JFK", Date: "2025-08-15",
			DepartureTime: ts(t, "2025-08-15T09:00:00"), ArrivalTime: ts(t, "2025-08-15T17:30:00"),
			Price: 300, Taxes: 20, Miles: 25000, // 1.2 cents/mile
		},
		{
			ID: 3, Airline: "United", FlightNumber: "UA3",
			Origin: "LAX", Destination: "JFK", Date: "2025-08-15",
			DepartureTime: ts(t, "2025-08-15T10:00:00"), ArrivalTime: ts(t, "2025-08-15T18:30:00"),
			Price: 300, Taxes: 20, Miles: 20000, // 1.5 cents/mile
		},
	}

	mockRepo.On("ListDirect", ctx, "LAX", "JFK", "2025-08-15", "2025-08-15").
		Return(flights, nil).Once()

	routes, err := service.Search(ctx, q)

	require.NoError(t, err)
	require.Len(t, routes, 3)
	assert.Equal(t, "UA3", routes[0].Legs[0].FlightNumber) // taxes 20, vpm 1.5
	assert.Equal(t, "B62", routes[1].Legs[0].FlightNumber) // taxes 20, vpm 1.2
	assert.Equal(t, "DL1", routes[2].Legs[0].FlightNumber) // taxes 30
}

func TestSearch_ObjectiveVPM_TieBreakers(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewRecommendService(mockRepo, 1.2)

	ctx := context.Background()
	q := baseQuery()

	// identical value per mile: price ascending decides, full ties keep
	// repository order
	flights := []domain.Flight{
		{
			ID: 1, Airline: "Delta", FlightNumber: "DL1",
			Origin: "LAX", Destination: "JFK", Date: "2025-08-15",
			DepartureTime: ts(t, "2025-08-15T08:00:00"), ArrivalTime: ts(t, "2025-08-15T16:30:00"),
			Price: 450, Taxes: 30, Miles: 30000, // 1.5 cents/mile
		},
		{
			ID: 2, Airline: "JetBlue", FlightNumber: "B62",
			Origin: "LAX", Destination: "JFK", Date: "2025-08-15",
			DepartureTime: ts(t, "2025-08-15T09:00:00"), ArrivalTime: ts(t, "2025-08-15T17:30:00"),
			Price: 300, Taxes: 20, Miles: 20000, // 1.5 cents/mile
		},
		{
			ID: 3, Airline: "United", FlightNumber: "UA3",
			Origin: "LAX", Destination: "JFK", Date: "2025-08-15",
			DepartureTime: ts(t, "2025-08-15T10:00:00"), ArrivalTime: ts(t, "2025-08-15T18:30:00"),
			Price: 300, Taxes: 20, Miles: 20000, // 1.5 cents/mile, ties with B62
		},
	}

	mockRepo.On("ListDirect", ctx, "LAX", "JFK", "2025-08-15", "2025-08-15").
		Return(flights, nil).Once()

	routes, err := service.Search(ctx, q)

	require.NoError(t, err)
	require.Len(t, routes, 3)
	assert.Equal(t, "B62", routes[0].Legs[0].FlightNumber) // price 300, first in
	assert.Equal(t, "UA3", routes[1].Legs[0].FlightNumber) // price 300, stable behind B62
	assert.Equal(t, "DL1", routes[2].Legs[0].FlightNumber) // price 450
}

func TestSearch_MaxResultsTruncation(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewRecommendService(mockRepo, 1.2)

	ctx := context.Background()
	q := baseQuery()
	q.MaxResults = 1

	mockRepo.On("ListDirect", ctx, "LAX", "JFK", "2025-08-15", "2025-08-15").
		Return(directFlights(t), nil).Once()

	routes, err := service.Search(ctx, q)

	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.InDelta(t, 1.5, routes[0].VPMCents, 0.0001, "the best route survives truncation")
}

func TestSearch_MilesBalanceAnnotation(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewRecommendService(mockRepo, 1.2)

	ctx := context.Background()
	q := baseQuery()
	q.MilesBalance = 26000

	mockRepo.On("ListDirect", ctx, "LAX", "JFK", "2025-08-15", "2025-08-15").
		Return(directFlights(t), nil).Once()

	routes, err := service.Search(ctx, q)

	require.NoError(t, err)
	require.Len(t, routes, 2, "the balance annotates, never filters")
	assert.False(t, routes[0].WithinBalance) // 30000 miles
	assert.True(t, routes[1].WithinBalance)  // 25000 miles
}

func TestSearch_DiscardsZeroMiles(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewRecommendService(mockRepo, 1.2)

	ctx := context.Background()
	q := baseQuery()

	flights := directFlights(t)
	flights[0].Miles = 0

	mockRepo.On("ListDirect", ctx, "LAX", "JFK", "2025-08-15", "2025-08-15").
		Return(flights, nil).Once()

	routes, err := service.Search(ctx, q)

	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, int64(25000), routes[0].Miles)
}

func TestSearch_CacheHit(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockResultsCache{}
	service := NewRecommendService(mockRepo, 1.2, WithCache(mockCache))

	ctx := context.Background()
	q := baseQuery()

	cached := []domain.Route{{Kind: domain.RouteKindDirect, Origin: "LAX", Destination: "JFK"}}
	mockCache.On("GetResults", ctx, q.CacheKey()).Return(cached, nil).Once()

	routes, err := service.Search(ctx, q)

	require.NoError(t, err)
	assert.Equal(t, cached, routes)

	mockCache.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "ListDirect", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearch_CacheErrorFallsBack(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockResultsCache{}
	service := NewRecommendService(mockRepo, 1.2, WithCache(mockCache))

	ctx := context.Background()
	q := baseQuery()

	mockCache.On("GetResults", ctx, q.CacheKey()).Return(nil, errors.New("redis down")).Once()
	mockRepo.On("ListDirect", ctx, "LAX", "JFK", "2025-08-15", "2025-08-15").
		Return(directFlights(t), nil).Once()
	mockCache.On("SetResults", ctx, q.CacheKey(), mock.Anything).Return(errors.New("redis down")).Once()

	routes, err := service.Search(ctx, q)

	require.NoError(t, err, "cache failures must not fail the search")
	assert.Len(t, routes, 2)

	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestSearch_PublishesEvent(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockProducer := &MockPublisher{}
	service := NewRecommendService(mockRepo, 1.2, WithPublisher(mockProducer, "search_events"))

	ctx := context.Background()
	q := baseQuery()

	mockRepo.On("ListDirect", ctx, "LAX", "JFK", "2025-08-15", "2025-08-15").
		Return(directFlights(t), nil).Once()
	mockProducer.On("Publish", ctx, "search_events", "LAX-JFK", mock.Anything).
		Return(errors.New("broker down")).Once()

	routes, err := service.Search(ctx, q)

	require.NoError(t, err, "publish failures must not fail the search")
	assert.Len(t, routes, 2)

	mockProducer.AssertExpectations(t)
}

func TestSearch_InvalidQuery(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewRecommendService(mockRepo, 1.2)

	q := baseQuery()
	q.EndDate = "2025-07-01"

	_, err := service.Search(context.Background(), q)
	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "ListDirect", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
