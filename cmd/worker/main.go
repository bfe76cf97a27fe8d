package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/velren/railbook/config"
	"github.com/velren/railbook/internal/cache"
	"github.com/velren/railbook/internal/email"
	"github.com/velren/railbook/internal/kafka"
	"github.com/velren/railbook/internal/repository"
)

func main() {
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

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	ttl := time.Duration(cfg.Catalog.TrainsCacheTTLSeconds) * time.Second
	redisCache := cache.NewRedisCache(cfg.Redis, ttl)
	trainRepo := repository.NewTrainRepository(pool)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.BookingEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("decode event error: %v", err)
				return nil
			}
			return emailSender.Send(ctx, event)
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	refreshTicker := time.NewTicker(time.Duration(cfg.Worker.CacheRefreshMinutes) * time.Minute)
	defer refreshTicker.Stop()

	for {
		select {
		case <-refreshTicker.C:
			trains, err := trainRepo.List(ctx)
			if err != nil {
				log.Printf("refresh trains cache: %v", err)
				continue
			}
			if err := redisCache.SetTrains(ctx, trains); err != nil {
				log.Printf("set trains cache: %v", err)
				continue
			}
			log.Printf("refreshed trains cache, %d trains", len(trains))
		case <-ctx.Done():
			log.Printf("shutting down")
			return
		}
	}
}
