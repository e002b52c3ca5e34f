package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string

	JWTSecret      string
	AccessTokenTTL time.Duration
	BcryptCost     int

	ResetTokenTTL  time.Duration
	ResetCooldown  time.Duration
	FrontendURL    string
	// AuthReturnResetToken echoes the reset token in the forgot-password
	// response. Development only; lets clients be tested without SMTP.
	AuthReturnResetToken bool

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPUseTLS   bool

	PredictorBaseURL string
	PredictorAPIKey  string
}

func Load() (*Config, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		host := getEnv("PSQL_HOST", "localhost")
		port := getEnv("PSQL_PORT", "5432")
		user := getEnv("PSQL_USER", "postgres")
		password := getEnv("PSQL_PASSWORD", "")
		dbName := getEnv("PSQL_DB_NAME", "hondealz")

		u := &url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(user, password),
			Host:   host + ":" + port,
			Path:   dbName,
		}
		q := u.Query()
		q.Set("sslmode", "disable")
		u.RawQuery = q.Encode()
		databaseURL = u.String()
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		DatabaseURL: databaseURL,

		JWTSecret:      os.Getenv("ACCESS_SECRET"),
		AccessTokenTTL: time.Duration(getEnvInt("ACCESS_TOKEN_TTL_MIN", 30)) * time.Minute,
		BcryptCost:     getEnvInt("BCRYPT_COST", 12),

		ResetTokenTTL:        time.Duration(getEnvInt("RESET_TOKEN_TTL_MIN", 1440)) * time.Minute,
		ResetCooldown:        time.Duration(getEnvInt("RESET_COOLDOWN_MIN", 10)) * time.Minute,
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:3000"),
		AuthReturnResetToken: getEnvBool("AUTH_RETURN_RESET_TOKEN", false),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
		SMTPUseTLS:   getEnvBool("SMTP_USE_TLS", false),

		PredictorBaseURL: os.Getenv("PREDICTOR_BASE_URL"),
		PredictorAPIKey:  os.Getenv("PREDICTOR_API_KEY"),
	}

	// No silent fallback secret outside development. A missing secret is a
	// startup failure, not a weaker deployment.
	if cfg.JWTSecret == "" {
		if cfg.Environment != "development" {
			return nil, errors.New("ACCESS_SECRET must be set outside development")
		}
		cfg.JWTSecret = "dev-only-secret"
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
