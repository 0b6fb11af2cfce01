package config

const (
	EnvDatabasePath     = "DATABASE_PATH"
	EnvDatabasePoolSize = "DATABASE_POOL_SIZE"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvJWTSecret = "JWT_SECRET"
	EnvJWTTTL    = "JWT_TTL"

	EnvUsersServiceURL    = "USERS_SERVICE_URL"
	EnvRoomsServiceURL    = "ROOMS_SERVICE_URL"
	EnvBookingsServiceURL = "BOOKINGS_SERVICE_URL"

	EnvRateLimitEnabled  = "RATE_LIMIT_ENABLED"
	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvBreakerFailures = "BREAKER_FAILURES"
	EnvBreakerReset    = "BREAKER_RESET"

	EnvKafkaBrokers = "KAFKA_BROKERS"
	EnvKafkaTopic   = "KAFKA_TOPIC"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
