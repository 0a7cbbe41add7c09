package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env                string
	HTTPAddr           string
	DatabaseURL        string
	SnapshotSlot       string
	SnapshotFile       string
	JWTSecret          string
	JWTExpirySeconds   int64
	RabbitMQURL        string
	RabbitMQWorkerMode string
	CorsAllowedOrigins []string

	DeliveryTickInterval time.Duration
	DeliveryStepFraction float64
	IngredientLowStock   float64
	MenuLowStock         int64

	TextGenBaseURL string
	TextGenAPIKey  string
	PaymentBaseURL string
	PaymentAPIKey  string
}

func Load() Config {
	return Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8087"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		SnapshotSlot:       getEnv("SNAPSHOT_SLOT", "rms-dynamic-data"),
		SnapshotFile:       getEnv("SNAPSHOT_FILE", "data/snapshot.json"),
		JWTSecret:          getEnv("JWT_SECRET", "dev-insecure-secret"),
		JWTExpirySeconds:   getEnvInt64("JWT_EXPIRY", 3600),
		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		RabbitMQWorkerMode: getEnv("RABBITMQ_WORKER_MODE", "daemon"),
		CorsAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),

		DeliveryTickInterval: getEnvDuration("DELIVERY_TICK_INTERVAL", 2*time.Second),
		DeliveryStepFraction: getEnvFloat("DELIVERY_STEP_FRACTION", 0.1),
		IngredientLowStock:   getEnvFloat("INGREDIENT_LOW_STOCK", 10),
		MenuLowStock:         getEnvInt64("MENU_LOW_STOCK", 15),

		TextGenBaseURL: getEnv("TEXTGEN_BASE_URL", ""),
		TextGenAPIKey:  getEnv("TEXTGEN_API_KEY", ""),
		PaymentBaseURL: getEnv("PAYMENT_BASE_URL", ""),
		PaymentAPIKey:  getEnv("PAYMENT_API_KEY", ""),
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
