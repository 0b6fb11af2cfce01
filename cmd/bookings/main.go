package main

import (
	"time"

	"roomly/internal/bookings/handler"
	"roomly/internal/bookings/repository"
	"roomly/internal/bookings/service"
	"roomly/internal/bookings/validator"
	"roomly/pkg/app"
	"roomly/pkg/auth"
	"roomly/pkg/client"
	"roomly/pkg/config"
	"roomly/pkg/events"
	"roomly/pkg/middleware"
	"roomly/pkg/storage"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Bookings service")

	db, err := storage.Open(storage.Config{
		Path:     cfg.DatabasePath,
		PoolSize: cfg.DatabasePoolSize,
	}, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to open database", "error", err)
	}

	serverApp := app.New(cfg)
	serverApp.OnShutdown(func() { db.Close() })

	directory := newDirectory(cfg)

	var eventPublisher service.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := events.NewPublisher(events.Config{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			Source:  ServiceName,
		}, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to configure event publisher", "error", err)
		}
		eventPublisher = publisher
		serverApp.OnShutdown(func() { publisher.Close() })
	} else {
		cfg.Log.Info("Event publishing disabled, no Kafka brokers configured")
	}

	bookingService := service.NewBookingService(
		repository.NewBookingRepository(db),
		validator.NewBookingValidator(cfg.Log),
		directory,
		directory,
		eventPublisher,
		cfg.Log,
	)

	idem := middleware.NewIdempotencyCache(24*time.Hour, cfg.Log)
	serverApp.OnShutdown(idem.Stop)

	guard := auth.NewGuard(auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL))
	bookingHandler := handler.NewBookingHandler(bookingService, guard, serverApp.RateLimiter(), idem, cfg.Log)

	serverApp.SetApp(bookingHandler, db)
	serverApp.Run()
}

func newDirectory(cfg *config.Config) *client.Directory {
	return &client.Directory{
		Users: client.NewUserClient(client.Options{
			BaseURL:         cfg.UsersServiceURL,
			Timeout:         cfg.RequestTimeout,
			BreakerFailures: cfg.BreakerFailures,
			BreakerReset:    cfg.BreakerReset,
		}, cfg.Log),
		Rooms: client.NewRoomClient(client.Options{
			BaseURL:         cfg.RoomsServiceURL,
			Timeout:         cfg.RequestTimeout,
			BreakerFailures: cfg.BreakerFailures,
			BreakerReset:    cfg.BreakerReset,
		}, cfg.Log),
	}
}
