package main

import (
	"roomly/internal/rooms/handler"
	"roomly/internal/rooms/repository"
	"roomly/internal/rooms/service"
	"roomly/internal/rooms/validator"
	"roomly/pkg/app"
	"roomly/pkg/auth"
	"roomly/pkg/client"
	"roomly/pkg/config"
	"roomly/pkg/storage"
)

const ServiceName = "rooms"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Rooms service")

	db, err := storage.Open(storage.Config{
		Path:     cfg.DatabasePath,
		PoolSize: cfg.DatabasePoolSize,
	}, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to open database", "error", err)
	}

	serverApp := app.New(cfg)
	serverApp.OnShutdown(func() { db.Close() })

	bookings := client.NewBookingClient(client.Options{
		BaseURL:         cfg.BookingsServiceURL,
		Timeout:         cfg.RequestTimeout,
		BreakerFailures: cfg.BreakerFailures,
		BreakerReset:    cfg.BreakerReset,
	}, cfg.Log)

	roomService := service.NewRoomService(
		repository.NewRoomRepository(db),
		validator.NewRoomValidator(cfg.Log),
		bookings,
		cfg.Log,
	)

	guard := auth.NewGuard(auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL))
	roomHandler := handler.NewRoomHandler(roomService, guard, serverApp.RateLimiter(), cfg.Log)

	serverApp.SetApp(roomHandler, db)
	serverApp.Run()
}
