package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// CardConfig holds the card service configuration.
type CardConfig struct {
	Port             string
	DBConn           string
	LogLevel         string
	UserServiceURL   string
	ActivateOnCreate bool
}

// TransactionConfig holds the transaction service configuration.
type TransactionConfig struct {
	Port     string
	DBConn   string
	LogLevel string
}

// AggregateConfig holds the aggregate (gateway) service configuration.
type AggregateConfig struct {
	Port                  string
	LogLevel              string
	CardServiceURL        string
	TransactionServiceURL string
	UserServiceURL        string
	JWTSecret             string
	JWTExpiry             time.Duration
	MaxSpendsPerMinute    int
	RateLimitInterval     time.Duration

	// SMTP settings for transfer alerts; alerts are disabled when AlertEmail is empty.
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
	AlertEmail   string
}

// NewCardConfig loads the card service configuration from environment variables.
func NewCardConfig() (*CardConfig, error) {
	cfg := &CardConfig{
		Port:             getEnv("PORT", "8081"),
		DBConn:           getEnv("DB_CONN", "host=localhost port=5432 user=test password=test dbname=cards sslmode=disable"),
		LogLevel:         getEnv("LOG_LEVEL", "INFO"),
		UserServiceURL:   getEnv("USER_SERVICE_URL", "http://localhost:8084"),
		ActivateOnCreate: getEnv("CARD_ACTIVATE_ON_CREATE", "false") == "true",
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.UserServiceURL == "" {
		return nil, fmt.Errorf("USER_SERVICE_URL is required")
	}

	return cfg, nil
}

// NewTransactionConfig loads the transaction service configuration from environment variables.
func NewTransactionConfig() (*TransactionConfig, error) {
	cfg := &TransactionConfig{
		Port:     getEnv("PORT", "8082"),
		DBConn:   getEnv("DB_CONN", "host=localhost port=5432 user=test password=test dbname=transactions sslmode=disable"),
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}

	return cfg, nil
}

// NewAggregateConfig loads the aggregate service configuration from environment variables.
func NewAggregateConfig() (*AggregateConfig, error) {
	maxSpends, err := strconv.Atoi(getEnv("MAX_SPENDS_PER_MINUTE", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_SPENDS_PER_MINUTE: %w", err)
	}

	jwtExpiryHours, err := strconv.Atoi(getEnv("JWT_EXPIRES_IN_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN_HOURS: %w", err)
	}

	cfg := &AggregateConfig{
		Port:                  getEnv("PORT", "8083"),
		LogLevel:              getEnv("LOG_LEVEL", "INFO"),
		CardServiceURL:        getEnv("CARD_SERVICE_URL", "http://localhost:8081"),
		TransactionServiceURL: getEnv("TRANSACTION_SERVICE_URL", "http://localhost:8082"),
		UserServiceURL:        getEnv("USER_SERVICE_URL", "http://localhost:8084"),
		JWTSecret:             getEnv("JWT_SECRET", "secret"),
		JWTExpiry:             time.Duration(jwtExpiryHours) * time.Hour,
		MaxSpendsPerMinute:    maxSpends,
		RateLimitInterval:     time.Minute,
		SMTPHost:              getEnv("SMTP_HOST", ""),
		SMTPPort:              getEnv("SMTP_PORT", "587"),
		SMTPUsername:          getEnv("SMTP_USERNAME", ""),
		SMTPPassword:          getEnv("SMTP_PASSWORD", ""),
		SenderEmail:           getEnv("SENDER_EMAIL", ""),
		AlertEmail:            getEnv("ALERT_EMAIL", ""),
	}

	if cfg.CardServiceURL == "" {
		return nil, fmt.Errorf("CARD_SERVICE_URL is required")
	}
	if cfg.TransactionServiceURL == "" {
		return nil, fmt.Errorf("TRANSACTION_SERVICE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
