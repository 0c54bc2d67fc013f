package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dkoval/milesworth/api"
	"github.com/dkoval/milesworth/config"
	"github.com/dkoval/milesworth/internal/bootstrap"
	"github.com/dkoval/milesworth/internal/cache"
	"github.com/dkoval/milesworth/internal/kafka"
	"github.com/dkoval/milesworth/internal/metrics"
	"github.com/dkoval/milesworth/internal/repository"
	"github.com/dkoval/milesworth/internal/service/recommend"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, cfg.Database.Path)
	if err != nil {
		log.Fatalf("open fares database: %v", err)
	}
	defer db.Close()

	airports, err := repository.NewAirportRepository(cfg.Database.AirportsCSV)
	if err != nil {
		log.Fatalf("load airports: %v", err)
	}

	flightRepo := repository.NewFlightRepository(db)
	metrics.StartDBCollector(ctx, flightRepo, time.Minute)

	opts := make([]recommend.Option, 0, 2)

	var popular api.PopularSource
	if cfg.Redis.Enabled {
		redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Recommend.ResultsCacheTTLSeconds)*time.Second)
		defer redisCache.Close()
		opts = append(opts, recommend.WithCache(redisCache))
		popular = redisCache
	}

	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		opts = append(opts, recommend.WithPublisher(producer, cfg.Kafka.SearchEventsTopic))
	}

	recommendService := recommend.NewRecommendService(flightRepo, cfg.Recommend.UseMilesThresholdCents, opts...)

	deps := bootstrap.Deps{
		Recommend: recommendService,
		Airports:  airports,
		Popular:   popular,
	}

	if err := bootstrap.Run(ctx, cfg, deps); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
