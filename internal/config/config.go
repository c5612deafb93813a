// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for our application
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Identity IdentityConfig
	Security SecurityConfig
	Pricing  PricingConfig
	Checkout CheckoutConfig
	Email    EmailConfig
	Logging  LoggingConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
	StoreName   string
	SupportMail string
	DemoUserID  string // Owner of the development seed orders
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// IdentityConfig describes how bearer tokens minted by the identity provider are verified.
type IdentityConfig struct {
	Secret string
	Issuer string
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	TrustedProxies     []string
	SecureCookies      bool
}

// PricingConfig holds the order summary policy
type PricingConfig struct {
	DiscountRate decimal.Decimal
	ShippingFee  decimal.Decimal
	Currency     string
}

// CheckoutConfig holds cart and checkout flow settings
type CheckoutConfig struct {
	CartTTL             time.Duration
	DraftTTL            time.Duration
	ConfirmationTTL     time.Duration
	SessionIdleTimeout  time.Duration
	DeliveryDays        int
	PaymentDelay        time.Duration
	BreakerMaxFailures  uint32
	BreakerOpenDuration time.Duration
}

// EmailConfig contains order notification email configuration
type EmailConfig struct {
	Provider     string // log, smtp, resend or sendgrid
	FromEmail    string
	FromName     string
	ReplyTo      string
	BaseURL      string // Storefront URL used in links
	APIKey       string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPUseTLS   bool
	QueueSize    int
	SendTimeout  time.Duration
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Storefront Backend"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
			StoreName:   getEnv("STORE_NAME", "TrendLama"),
			SupportMail: getEnv("SUPPORT_EMAIL", "support@trendlama.com"),
			DemoUserID:  getEnv("DEMO_USER_ID", "user_demo"),
		},
		Server: ServerConfig{
			Port:           getEnv("APP_PORT", "8080"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout: getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "storefront_db"),
			User:         getEnv("DB_USER", "storefront_user"),
			Password:     getEnv("DB_PASSWORD", "storefront_password"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 300*time.Second),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		Identity: IdentityConfig{
			Secret: getEnv("IDENTITY_TOKEN_SECRET", defaultIdentitySecret),
			Issuer: getEnv("IDENTITY_TOKEN_ISSUER", ""),
		},
		Security: SecurityConfig{
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization"}),
			TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
			SecureCookies:      getEnvAsBool("SECURE_COOKIES", false),
		},
		Pricing: PricingConfig{
			DiscountRate: getEnvAsDecimal("PRICING_DISCOUNT_RATE", decimal.RequireFromString("0.10")),
			ShippingFee:  getEnvAsDecimal("PRICING_SHIPPING_FEE", decimal.NewFromInt(10)),
			Currency:     getEnv("PRICING_CURRENCY", "USD"),
		},
		Checkout: CheckoutConfig{
			CartTTL:             getEnvAsDuration("CART_TTL", 30*24*time.Hour),
			DraftTTL:            getEnvAsDuration("CHECKOUT_DRAFT_TTL", 24*time.Hour),
			ConfirmationTTL:     getEnvAsDuration("ORDER_CONFIRMATION_TTL", time.Hour),
			SessionIdleTimeout:  getEnvAsDuration("CART_SESSION_IDLE_TIMEOUT", 30*time.Minute),
			DeliveryDays:        getEnvAsInt("DELIVERY_DAYS", 5),
			PaymentDelay:        getEnvAsDuration("PAYMENT_SIMULATED_DELAY", 2*time.Second),
			BreakerMaxFailures:  uint32(getEnvAsInt("PAYMENT_BREAKER_MAX_FAILURES", 5)),
			BreakerOpenDuration: getEnvAsDuration("PAYMENT_BREAKER_OPEN_DURATION", 30*time.Second),
		},
		Email: EmailConfig{
			Provider:     getEnv("EMAIL_PROVIDER", "log"),
			FromEmail:    getEnv("EMAIL_FROM", "orders@trendlama.com"),
			FromName:     getEnv("EMAIL_FROM_NAME", "TrendLama"),
			ReplyTo:      getEnv("EMAIL_REPLY_TO", ""),
			BaseURL:      getEnv("STOREFRONT_URL", "http://localhost:3000"),
			APIKey:       getEnv("EMAIL_API_KEY", ""),
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			SMTPUseTLS:   getEnvAsBool("SMTP_USE_TLS", false),
			QueueSize:    getEnvAsInt("EMAIL_QUEUE_SIZE", 100),
			SendTimeout:  getEnvAsDuration("EMAIL_SEND_TIMEOUT", 30*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "debug"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// defaultIdentitySecret only makes local development work out of the box
const defaultIdentitySecret = "change-me-identity-provider-shared-secret"

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Identity.Secret) < 32 {
		return fmt.Errorf("IDENTITY_TOKEN_SECRET must be at least 32 characters long")
	}
	if c.Identity.Secret == defaultIdentitySecret && !c.IsDevelopment() {
		return fmt.Errorf("IDENTITY_TOKEN_SECRET must be set outside development (APP_ENV=%s)", c.App.Environment)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}

	if c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	if c.Pricing.DiscountRate.IsNegative() || c.Pricing.DiscountRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("PRICING_DISCOUNT_RATE must be between 0 and 1")
	}
	if c.Pricing.ShippingFee.IsNegative() {
		return fmt.Errorf("PRICING_SHIPPING_FEE cannot be negative")
	}

	if c.Checkout.DeliveryDays < 0 {
		return fmt.Errorf("DELIVERY_DAYS cannot be negative")
	}

	switch c.Email.Provider {
	case "log":
	case "smtp":
		if c.Email.SMTPHost == "" || c.Email.SMTPUsername == "" {
			return fmt.Errorf("SMTP_HOST and SMTP_USERNAME are required for the smtp email provider")
		}
	case "resend", "sendgrid":
		if c.Email.APIKey == "" {
			return fmt.Errorf("EMAIL_API_KEY is required for the %s email provider", c.Email.Provider)
		}
	default:
		return fmt.Errorf("unsupported EMAIL_PROVIDER: %s", c.Email.Provider)
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
