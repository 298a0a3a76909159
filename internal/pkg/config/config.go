package config

import (
	"fmt"
	"os"
	"strconv"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RepositoriesConfig struct {
	Postgres PostgresConfig
}

type JWTConfig struct {
	Secret        string
	ExpirationHrs int
	Issuer        string
	CookieName    string
	SecureCookies bool
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

type WeatherConfig struct {
	APIKey   string
	BaseURL  string
	CacheTTL int // minutes
}

type AIConfig struct {
	GeminiAPIKey           string
	Model                  string
	WeatherInsightsEnabled bool
	ChatEnabled            bool
}

type Config struct {
	Repositories RepositoriesConfig
	ServerPort   string
	JWT          JWTConfig
	Stripe       StripeConfig
	Weather      WeatherConfig
	AI           AIConfig
}

func Load() (*Config, error) {
	cfg := &Config{
		Repositories: RepositoriesConfig{
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
				DB:       getEnvOrDefault("POSTGRES_DB", "farmflow"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: 30,
				MinConns: 5,
			},
		},
		ServerPort: getEnvOrDefault("SERVER_PORT", "8080"),
		JWT: JWTConfig{
			Secret:        getEnvOrDefault("JWT_SECRET", ""),
			ExpirationHrs: getEnvIntOrDefault("JWT_EXPIRATION_HOURS", 72),
			Issuer:        getEnvOrDefault("JWT_ISSUER", "farmflow"),
			CookieName:    getEnvOrDefault("JWT_COOKIE_NAME", "access_token"),
			SecureCookies: getEnvBoolOrDefault("JWT_SECURE_COOKIES", false),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnvOrDefault("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnvOrDefault("STRIPE_WEBHOOK_SECRET", ""),
		},
		Weather: WeatherConfig{
			APIKey:   getEnvOrDefault("OPENWEATHER_API_KEY", ""),
			BaseURL:  getEnvOrDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
			CacheTTL: getEnvIntOrDefault("WEATHER_CACHE_TTL_MINUTES", 15),
		},
		AI: AIConfig{
			GeminiAPIKey:           getEnvOrDefault("GEMINI_API_KEY", ""),
			Model:                  getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
			WeatherInsightsEnabled: getEnvBoolOrDefault("FEATURE_WEATHER_INSIGHTS", true),
			ChatEnabled:            getEnvBoolOrDefault("FEATURE_AI_CHAT", true),
		},
	}

	if cfg.Repositories.Postgres.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD environment variable is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
