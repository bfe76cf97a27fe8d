package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/velren/railbook/config"
	"github.com/velren/railbook/internal/bootstrap"
	"github.com/velren/railbook/internal/cache"
	"github.com/velren/railbook/internal/kafka"
	"github.com/velren/railbook/internal/repository"
	"github.com/velren/railbook/internal/service/booking"
	"github.com/velren/railbook/internal/service/trains"
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

	// Refuse to start without the store; serving from nothing helps nobody.
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping postgres: %v", err)
	}
	if err := repository.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Catalog.TrainsCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	trainRepo := repository.NewTrainRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	trainService := trains.NewTrainService(trainRepo, redisCache)
	bookingService := booking.NewBookingService(
		bookingRepo,
		trainRepo,
		redisCache,
		producer,
		cfg.Kafka.BookingTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	if err := bootstrap.Run(ctx, cfg, trainService, bookingService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
