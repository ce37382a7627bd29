package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// SecretGetter resolves a named secret. Satisfied by the Secrets Manager client.
type SecretGetter interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

type Config struct {
	Env    string `validate:"oneof=development production test"`
	Port   string `validate:"required,numeric"`
	NodeID int64  `validate:"gte=0,lte=1023"`

	AllowedOrigins []string

	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string `validate:"required,url"`
	Currency          string `validate:"required,len=3"`
	PlanPrices        map[string]int64

	CacheDriver string        `validate:"oneof=memory redis"`
	OrderTTL    time.Duration `validate:"gt=0"`
	RedisURL    string        `validate:"required_if=CacheDriver redis"`

	StoreDriver      string `validate:"oneof=dynamodb postgres"`
	PoliciesTable    string `validate:"required_if=StoreDriver dynamodb"`
	PostgresUser     string `validate:"required_if=StoreDriver postgres"`
	PostgresPassword string `validate:"required_if=StoreDriver postgres"`
	PostgresDB       string `validate:"required_if=StoreDriver postgres"`
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	SMTPHost      string
	SMTPPort      string
	SMTPUser      string
	SMTPPass      string
	EmailFrom     string
	BusinessEmail string `validate:"omitempty,email"`

	NotifyQueue      string `validate:"oneof=memory sqs"`
	NotifyQueueURL   string `validate:"required_if=NotifyQueue sqs"`
	EmailWorkers     int    `validate:"gte=1"`
	EmailMaxAttempts int    `validate:"gte=1"`

	EventBus      string `validate:"oneof=none sns kafka"`
	EventTopicARN string `validate:"required_if=EventBus sns"`
	KafkaBrokers  []string
	KafkaTopic    string

	ExportDir      string
	ExportS3Bucket string
	ExportS3Prefix string

	AdminJWTSecret string

	RateLimitPerMinute int `validate:"gte=1"`
	RateLimitBurst     int `validate:"gte=1"`
}

// ProviderConfigured reports whether the Razorpay credentials are present.
func (c *Config) ProviderConfigured() bool {
	return c.RazorpayKeyID != "" && c.RazorpayKeySecret != ""
}

// SMTPConfigured reports whether outbound email can be sent.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPPort != "" && c.SMTPUser != "" && c.SMTPPass != ""
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// PostgresDSN builds the gorm/pgx connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB,
		c.PostgresPort, c.PostgresSSLMode, c.PostgresTimeZone,
	)
}

// LoadConfig reads configuration from the environment (and an optional .env file).
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	prices, err := parsePlanPrices(os.Getenv("PLAN_PRICES"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:    getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "5000"),
		NodeID: int64(getEnvInt("NODE_ID", 1)),

		AllowedOrigins: splitCSV(os.Getenv("ALLOWED_ORIGINS")),

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayBaseURL:   getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),
		Currency:          getEnv("PAYMENT_CURRENCY", "INR"),
		PlanPrices:        prices,

		CacheDriver: getEnv("CACHE_DRIVER", "memory"),
		OrderTTL:    getEnvDuration("ORDER_TTL", time.Hour),
		RedisURL:    os.Getenv("REDIS_URL"),

		StoreDriver:      getEnv("STORE_DRIVER", "dynamodb"),
		PoliciesTable:    getEnv("DDB_TABLE_POLICIES", "Policies"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "Asia/Kolkata"),

		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPass:      os.Getenv("SMTP_PASS"),
		EmailFrom:     os.Getenv("EMAIL_FROM"),
		BusinessEmail: os.Getenv("BUSINESS_EMAIL"),

		NotifyQueue:      getEnv("NOTIFY_QUEUE", "memory"),
		NotifyQueueURL:   os.Getenv("NOTIFY_SQS_QUEUE_URL"),
		EmailWorkers:     getEnvInt("EMAIL_WORKERS", 2),
		EmailMaxAttempts: getEnvInt("EMAIL_MAX_ATTEMPTS", 3),

		EventBus:      getEnv("EVENT_BUS", "none"),
		EventTopicARN: os.Getenv("POLICY_SNS_TOPIC_ARN"),
		KafkaBrokers:  splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "policy-events"),

		ExportDir:      getEnv("EXPORT_DIR", "./data/exports"),
		ExportS3Bucket: os.Getenv("EXPORT_S3_BUCKET"),
		ExportS3Prefix: getEnv("EXPORT_S3_PREFIX", "exports/"),

		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 100),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 20),
	}

	if cfg.EmailFrom == "" {
		cfg.EmailFrom = cfg.SMTPUser
	}

	return cfg, nil
}

// ApplySecrets overrides sensitive values from Secrets Manager when AWS_USE_SECRETS=true.
// Missing secrets leave the environment values in place.
func (c *Config) ApplySecrets(ctx context.Context, sm SecretGetter) {
	if sm == nil || os.Getenv("AWS_USE_SECRETS") != "true" {
		return
	}
	prefix := getEnv("AWS_SECRETS_PREFIX", "st-shield/")
	if v, err := sm.GetSecret(ctx, prefix+"RAZORPAY_KEY_SECRET"); err == nil && v != "" {
		c.RazorpayKeySecret = v
	}
	if v, err := sm.GetSecret(ctx, prefix+"SMTP_PASS"); err == nil && v != "" {
		c.SMTPPass = v
	}
	if v, err := sm.GetSecret(ctx, prefix+"ADMIN_JWT_SECRET"); err == nil && v != "" {
		c.AdminJWTSecret = v
	}
	if v, err := sm.GetSecret(ctx, prefix+"POSTGRES_PASSWORD"); err == nil && v != "" {
		c.PostgresPassword = v
	}
}

// Validate checks cross-field requirements once env and secrets are applied.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.EventBus == "kafka" && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("invalid configuration: KAFKA_BROKERS required when EVENT_BUS=kafka")
	}
	return nil
}

func parsePlanPrices(raw string) (map[string]int64, error) {
	prices := make(map[string]int64)
	for _, pair := range splitCSV(raw) {
		plan, amount, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid PLAN_PRICES entry %q", pair)
		}
		v, err := strconv.ParseInt(strings.TrimSpace(amount), 10, 64)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid amount for plan %q", plan)
		}
		prices[strings.TrimSpace(plan)] = v
	}
	return prices, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
