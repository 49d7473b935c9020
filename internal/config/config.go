package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything main needs to wire the service. DB_DSN is read by
// the db package itself.
type Config struct {
	Port        string
	Environment string

	JWTSecret string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AMQPURL      string
	AMQPExchange string

	OTLPEndpoint string

	RefreshInterval time.Duration
	CallTimeout     time.Duration
}

// Load reads configuration from the environment, with a .env file applied
// first when present.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded configuration from .env")
	}

	return Config{
		Port:            getEnv("PORT", "8083"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		AMQPURL:         getEnv("AMQP_URL", ""),
		AMQPExchange:    getEnv("AMQP_EXCHANGE", "messaging.events"),
		OTLPEndpoint:    getEnv("OTLP_ENDPOINT", ""),
		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", 30*time.Second),
		CallTimeout:     getEnvDuration("CALL_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
		log.Printf("invalid %s=%q, using %d", key, val, fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		log.Printf("invalid %s=%q, using %s", key, val, fallback)
	}
	return fallback
}
