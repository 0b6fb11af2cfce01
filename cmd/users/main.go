package main

import (
	"roomly/internal/users/handler"
	"roomly/internal/users/repository"
	"roomly/internal/users/service"
	"roomly/internal/users/validator"
	"roomly/pkg/app"
	"roomly/pkg/auth"
	"roomly/pkg/config"
	"roomly/pkg/storage"
)

const ServiceName = "users"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Users service")

	db, err := storage.Open(storage.Config{
		Path:     cfg.DatabasePath,
		PoolSize: cfg.DatabasePoolSize,
	}, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to open database", "error", err)
	}

	serverApp := app.New(cfg)
	serverApp.OnShutdown(func() { db.Close() })

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	userService := service.NewUserService(
		repository.NewUserRepository(db),
		validator.NewUserValidator(cfg.Log),
		tokens,
		cfg.Log,
	)

	guard := auth.NewGuard(tokens)
	userHandler := handler.NewUserHandler(userService, guard, serverApp.RateLimiter(), cfg.Log)

	serverApp.SetApp(userHandler, db)
	serverApp.Run()
}
