package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Workflow limits
	DefaultMaxCycles     int
	MaxForkGroups        int
	RecomputeRetries     int
	NotificationSchedule string // cron spec for outbox delivery
	NotificationBuffer   int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
		DBName:      getEnv("DB_NAME", "negotiation"),
		SkipAuth:    getEnv("SKIP_AUTH", "false") == "true",
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "go-negotiation"),

		ReadTimeout:  getEnvDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvDuration("WRITE_TIMEOUT", 15*time.Second),

		DefaultMaxCycles:     getEnvInt("DEFAULT_MAX_CYCLES", 3),
		MaxForkGroups:        getEnvInt("MAX_FORK_GROUPS", 10),
		RecomputeRetries:     getEnvInt("RECOMPUTE_RETRIES", 3),
		NotificationSchedule: getEnv("NOTIFICATION_SCHEDULE", "@every 30s"),
		NotificationBuffer:   getEnvInt("NOTIFICATION_BUFFER", 1000),
	}, nil
}

// IsProduction reports whether production logging and defaults apply.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Invalid integer for %s=%q, using %d", key, value, fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s=%q, using %s", key, value, fallback)
	}
	return fallback
}
