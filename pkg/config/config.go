package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendFirebase = "firebase"
)

type Config struct {
	ServerPort  string
	Environment string

	FirebaseProject            string
	FirebaseDatabaseURL        string
	FirebaseServiceAccountPath string
	FirebaseServiceAccountJSON string

	DatastoreBackend     string
	DeadLetterCollection string

	TriggerMaxAttempts      int
	TriggerInitialBackoffMs int64
	FanoutConcurrency       int
	RateLimitEnabled        bool
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		FirebaseProject:            getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseDatabaseURL:        getEnv("FIREBASE_DATABASE_URL", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),

		DatastoreBackend:     strings.ToLower(getEnv("DATASTORE_BACKEND", BackendMemory)),
		DeadLetterCollection: getEnv("DEAD_LETTER_COLLECTION", "trigger_dead_letters"),

		TriggerMaxAttempts:      int(getEnvAsInt64("TRIGGER_MAX_ATTEMPTS", 5)),
		TriggerInitialBackoffMs: getEnvAsInt64("TRIGGER_INITIAL_BACKOFF_MS", 200),
		FanoutConcurrency:       int(getEnvAsInt64("FANOUT_CONCURRENCY", 8)),
		RateLimitEnabled:        getEnvAsBool("RATE_LIMIT_ENABLED", true),
	}

	return config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) UsesFirebase() bool {
	return c.DatastoreBackend == BackendFirebase
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}
