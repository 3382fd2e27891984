package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr     string
	SiteURL  string
	MongoURI string
	MongoDB  string
	RedisURL string

	// Webhook shared secrets
	FitbitVerificationCode string
	FitbitClientSecret     string
	OuraWebhookSecret      string
	OuraVerificationToken  string

	// Remote assistant backend
	AssistantBackendURL string
	AssistantToken      string

	// Health data sync function
	HealthSyncURL   string
	HealthSyncToken string
	BackfillDays    int

	// OAuth state TTL
	StateTTL time.Duration

	CORSOrigin string
}

func Load() Config {
	return Config{
		Addr:     getenv("API_ADDR", ":8080"),
		SiteURL:  getenv("SITE_URL", "http://localhost:8080"),
		MongoURI: getenv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:  getenv("MONGODB_DATABASE", "jarvis"),
		RedisURL: getenv("REDIS_URL", "redis://localhost:6379/0"),

		FitbitVerificationCode: getenv("FITBIT_VERIFICATION_CODE", ""),
		FitbitClientSecret:     getenv("FITBIT_CLIENT_SECRET", ""),
		OuraWebhookSecret:      getenv("OURA_WEBHOOK_SECRET", ""),
		OuraVerificationToken:  getenv("OURA_VERIFICATION_TOKEN", ""),

		AssistantBackendURL: getenv("ASSISTANT_BACKEND_URL", "http://localhost:8000"),
		AssistantToken:      getenv("ASSISTANT_BACKEND_TOKEN", ""),

		HealthSyncURL:   getenv("HEALTH_SYNC_URL", ""),
		HealthSyncToken: getenv("HEALTH_SYNC_TOKEN", ""),
		BackfillDays:    getenvInt("HEALTH_BACKFILL_DAYS", 7),

		StateTTL: time.Duration(getenvInt("OAUTH_STATE_TTL_SECONDS", 600)) * time.Second,

		CORSOrigin: getenv("CORS_ORIGIN", "*"),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
