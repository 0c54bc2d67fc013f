package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dkoval/milesworth/config"
	"github.com/dkoval/milesworth/internal/cache"
	"github.com/dkoval/milesworth/internal/kafka"
	"github.com/dkoval/milesworth/internal/popularity"
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
	if !cfg.Redis.Enabled || !cfg.Kafka.Enabled {
		log.Fatal("worker needs both redis and kafka enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Recommend.ResultsCacheTTLSeconds)*time.Second)
	defer redisCache.Close()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.SearchEventsTopic)
	defer consumer.Close()

	recorder := popularity.NewRecorder(redisCache)

	log.Printf("worker consuming %s", cfg.Kafka.SearchEventsTopic)
	err = consumer.Consume(ctx, func(ctx context.Context, event kafka.SearchEvent) error {
		if err := recorder.Record(ctx, event); err != nil {
			log.Printf("record search event %s: %v", event.ID, err)
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		log.Fatalf("consumer stopped: %v", err)
	}
	log.Print("worker shut down")
}
