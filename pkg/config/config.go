package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"roomly/pkg/logger"
)

type Config struct {
	ServiceName string

	DatabasePath     string
	DatabasePoolSize int

	Port string

	JWTSecret string
	JWTTTL    time.Duration

	UsersServiceURL    string
	RoomsServiceURL    string
	BookingsServiceURL string

	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	BreakerFailures uint32
	BreakerReset    time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	RequestTimeout time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log *logger.Logger
}

func Load(serviceName string) *Config {
	cfg := &Config{
		ServiceName: serviceName,

		DatabasePath:     getEnvStr(EnvDatabasePath, DefaultDatabasePath),
		DatabasePoolSize: getEnvNum(EnvDatabasePoolSize, DefaultDatabasePoolSize),

		Port: getEnvStr(EnvPort, defaultPort(serviceName)),

		JWTSecret: getEnvStr(EnvJWTSecret, DefaultJWTSecret),
		JWTTTL:    getEnvDuration(EnvJWTTTL, DefaultJWTTTL),

		UsersServiceURL:    getEnvStr(EnvUsersServiceURL, DefaultUsersServiceURL),
		RoomsServiceURL:    getEnvStr(EnvRoomsServiceURL, DefaultRoomsServiceURL),
		BookingsServiceURL: getEnvStr(EnvBookingsServiceURL, DefaultBookingsServiceURL),

		RateLimitEnabled:  getEnvBool(EnvRateLimitEnabled, DefaultRateLimitEnabled),
		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		BreakerFailures: uint32(getEnvNum(EnvBreakerFailures, DefaultBreakerFailures)),
		BreakerReset:    getEnvDuration(EnvBreakerReset, DefaultBreakerReset),

		KafkaBrokers: getEnvList(EnvKafkaBrokers),
		KafkaTopic:   getEnvStr(EnvKafkaTopic, DefaultKafkaTopic),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
	}

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func defaultPort(serviceName string) string {
	switch serviceName {
	case "users":
		return DefaultUsersPort
	case "rooms":
		return DefaultRoomsPort
	case "bookings":
		return DefaultBookingsPort
	}
	return DefaultPort
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.DatabasePath == "" {
		errors = append(errors, "DatabasePath cannot be empty")
	}
	if cfg.DatabasePoolSize <= 0 {
		errors = append(errors, fmt.Sprintf("DatabasePoolSize must be positive, got: %d", cfg.DatabasePoolSize))
	}

	if cfg.JWTSecret == "" {
		errors = append(errors, "JWTSecret cannot be empty")
	}
	if cfg.JWTTTL <= 0 {
		errors = append(errors, fmt.Sprintf("JWTTTL must be positive, got: %s", cfg.JWTTTL))
	}

	urlRegex := regexp.MustCompile(`^https?://`)
	for name, url := range map[string]string{
		"UsersServiceURL":    cfg.UsersServiceURL,
		"RoomsServiceURL":    cfg.RoomsServiceURL,
		"BookingsServiceURL": cfg.BookingsServiceURL,
	} {
		if !urlRegex.MatchString(url) {
			errors = append(errors, fmt.Sprintf("%s must start with 'http://' or 'https://', got: %s", name, url))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}

	if cfg.BreakerFailures == 0 {
		errors = append(errors, "BreakerFailures must be positive")
	}
	if cfg.BreakerReset <= 0 {
		errors = append(errors, fmt.Sprintf("BreakerReset must be positive, got: %s", cfg.BreakerReset))
	}

	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"service", cfg.ServiceName,
		"database_path", cfg.DatabasePath,
		"database_pool_size", cfg.DatabasePoolSize,
		"port", cfg.Port,
		"jwt_secret_is_default", cfg.JWTSecret == DefaultJWTSecret,
		"jwt_ttl", cfg.JWTTTL,
		"users_service_url", cfg.UsersServiceURL,
		"rooms_service_url", cfg.RoomsServiceURL,
		"bookings_service_url", cfg.BookingsServiceURL,
		"rate_limit_enabled", cfg.RateLimitEnabled,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"breaker_failures", cfg.BreakerFailures,
		"breaker_reset", cfg.BreakerReset,
		"kafka_brokers", strings.Join(cfg.KafkaBrokers, ","),
		"kafka_topic", cfg.KafkaTopic,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvList splits a comma-separated variable; unset or blank yields nil.
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
