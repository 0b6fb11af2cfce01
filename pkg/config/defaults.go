package config

import "time"

const (
	DefaultDatabasePath     = "roomly.db"
	DefaultDatabasePoolSize = 4

	DefaultPort         = "8080"
	DefaultUsersPort    = "5001"
	DefaultRoomsPort    = "5002"
	DefaultBookingsPort = "5003"

	DefaultLogLevel = "info"

	// DefaultJWTSecret is for local development only; deployments must
	// set JWT_SECRET.
	DefaultJWTSecret = "devsecret"
	DefaultJWTTTL    = 1 * time.Hour

	DefaultUsersServiceURL    = "http://localhost:5001"
	DefaultRoomsServiceURL    = "http://localhost:5002"
	DefaultBookingsServiceURL = "http://localhost:5003"

	DefaultRateLimitEnabled  = true
	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultBreakerFailures = 5
	DefaultBreakerReset    = 60 * time.Second

	DefaultKafkaTopic = "roomly.bookings"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
