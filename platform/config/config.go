// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq background worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// EmailConfig provides settings for email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// Distributor describes one wholesale catalog provider endpoint.
type Distributor struct {
	Name    string
	BaseURL string
	APIKey  string
}

// DistributorConfig provides settings for distributor catalog providers.
type DistributorConfig interface {
	GetDistributors() []Distributor
	GetProviderTimeout() time.Duration
}

// PricingDefaultsConfig provides store-level pricing parameters applied when
// a request does not override them.
type PricingDefaultsConfig interface {
	GetDefaultMarkupPercent() float64
	GetMinimumMarginPercent() float64
	GetTransferFee() float64
	GetBackgroundCheckFee() float64
	GetSalesTaxPercent() float64
	GetCardFeePercent() float64
	GetQuoteValidityDays() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env             string
	HTTPAddr        string
	DatabaseURL     string
	JWTAccessSecret string

	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool

	RedisURL         string
	RedisTLSInsecure bool
	AsynqQueueName   string
	AsynqConcurrency int

	EmailEnabled     bool
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	EmailFromName    string
	EmailFromAddress string

	Distributors    []Distributor
	ProviderTimeout time.Duration

	DefaultMarkupPercent float64
	MinimumMarginPercent float64
	TransferFee          float64
	BackgroundCheckFee   float64
	SalesTaxPercent      float64
	CardFeePercent       float64
	QuoteValidityDays    int
}

// Load reads configuration from the environment. A .env file is loaded first
// when present so local development does not need exported variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:             getEnv("APP_ENV", "development"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTAccessSecret: os.Getenv("JWT_ACCESS_SECRET"),

		CORSAllowAll:   getEnvBool("CORS_ALLOW_ALL", false),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "")),
		CORSAllowCreds: getEnvBool("CORS_ALLOW_CREDENTIALS", true),

		RedisURL:         os.Getenv("REDIS_URL"),
		RedisTLSInsecure: getEnvBool("REDIS_TLS_INSECURE", false),
		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency: getEnvInt("ASYNQ_CONCURRENCY", 10),

		EmailEnabled:     getEnvBool("EMAIL_ENABLED", false),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         getEnvInt("SMTP_PORT", 587),
		SMTPUsername:     os.Getenv("SMTP_USERNAME"),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "Dealer Back Office"),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", "no-reply@localhost"),

		ProviderTimeout: getEnvDuration("PROVIDER_TIMEOUT", 5*time.Second),

		DefaultMarkupPercent: getEnvFloat("PRICING_DEFAULT_MARKUP_PERCENT", 25.0),
		MinimumMarginPercent: getEnvFloat("PRICING_MINIMUM_MARGIN_PERCENT", 10.0),
		TransferFee:          getEnvFloat("PRICING_TRANSFER_FEE", 25.0),
		BackgroundCheckFee:   getEnvFloat("PRICING_BACKGROUND_CHECK_FEE", 0.0),
		SalesTaxPercent:      getEnvFloat("PRICING_SALES_TAX_PERCENT", 0.0),
		CardFeePercent:       getEnvFloat("PRICING_CARD_FEE_PERCENT", 3.0),
		QuoteValidityDays:    getEnvInt("QUOTE_VALIDITY_DAYS", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}

	cfg.Distributors = loadDistributors()

	return cfg, nil
}

// loadDistributors reads DISTRIBUTORS as a comma-separated list of names and
// resolves DISTRIBUTOR_<NAME>_URL / DISTRIBUTOR_<NAME>_API_KEY per entry.
// Entries without a URL are skipped.
func loadDistributors() []Distributor {
	names := splitList(os.Getenv("DISTRIBUTORS"))
	distributors := make([]Distributor, 0, len(names))
	for _, name := range names {
		key := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
		baseURL := os.Getenv("DISTRIBUTOR_" + key + "_URL")
		if baseURL == "" {
			continue
		}
		distributors = append(distributors, Distributor{
			Name:    name,
			BaseURL: baseURL,
			APIKey:  os.Getenv("DISTRIBUTOR_" + key + "_API_KEY"),
		})
	}
	return distributors
}

// =============================================================================
// Interface Implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string     { return c.DatabaseURL }
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

func (c *Config) GetRedisURL() string      { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

func (c *Config) GetDistributors() []Distributor  { return c.Distributors }
func (c *Config) GetProviderTimeout() time.Duration { return c.ProviderTimeout }

func (c *Config) GetDefaultMarkupPercent() float64 { return c.DefaultMarkupPercent }
func (c *Config) GetMinimumMarginPercent() float64 { return c.MinimumMarginPercent }
func (c *Config) GetTransferFee() float64          { return c.TransferFee }
func (c *Config) GetBackgroundCheckFee() float64   { return c.BackgroundCheckFee }
func (c *Config) GetSalesTaxPercent() float64      { return c.SalesTaxPercent }
func (c *Config) GetCardFeePercent() float64       { return c.CardFeePercent }
func (c *Config) GetQuoteValidityDays() int        { return c.QuoteValidityDays }

// =============================================================================
// Helpers
// =============================================================================

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
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

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
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
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
