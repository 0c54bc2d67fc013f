package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dkoval/milesworth/config"
	"github.com/dkoval/milesworth/internal/domain"
)

type RedisCache struct {
	client     *redis.Client
	resultsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, resultsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		resultsTTL: resultsTTL,
	}
}

// GetResults returns the cached result set for the query key, or nil on a
// miss.
func (c *RedisCache) GetResults(ctx context.Context, queryKey string) ([]domain.Route, error) {
	data, err := c.client.Get(ctx, resultsKey(queryKey)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var routes []domain.Route
	if err := json.Unmarshal(data, &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

func (c *RedisCache) SetResults(ctx context.Context, queryKey string, routes []domain.Route) error {
	payload, err := json.Marshal(routes)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, resultsKey(queryKey), payload, c.resultsTTL).Err()
}

// IncrementRoute bumps the popularity counter for an origin-destination
// pair. Used by the worker when it consumes search events.
func (c *RedisCache) IncrementRoute(ctx context.Context, origin, destination string) error {
	return c.client.ZIncrBy(ctx, popularRoutesKey(), 1, routeMember(origin, destination)).Err()
}

// TopRoutes returns the most searched origin-destination pairs with their
// search counts, highest first.
func (c *RedisCache) TopRoutes(ctx context.Context, limit int) ([]domain.PopularRoute, error) {
	entries, err := c.client.ZRevRangeWithScores(ctx, popularRoutesKey(), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}

	routes := make([]domain.PopularRoute, 0, len(entries))
	for _, e := range entries {
		member, ok := e.Member.(string)
		if !ok {
			continue
		}
		pr, err := domain.ParsePopularRoute(member, int64(e.Score))
		if err != nil {
			continue
		}
		routes = append(routes, pr)
	}
	return routes, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func resultsKey(queryKey string) string {
	return "cache:results:" + queryKey
}

func popularRoutesKey() string {
	return "popular:routes"
}

func routeMember(origin, destination string) string {
	return fmt.Sprintf("%s-%s", origin, destination)
}
