package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                string
	DatabaseURL         string
	JWTSecret           string
	FrontendDir         string
	Environment         string
	SeedTenantName      string
	SeedTenantSubdomain string
	SeedAdminEmail      string
	SeedAdminPassword   string
	EmailFrom           string
	EmailEnabled        bool
	SMTPHost            string
	SMTPPort            int
	SMTPUser            string
	SMTPPassword        string
	SMTPUseTLS          bool
	RunMigrations       bool
	RunSeed             bool
	MaxBodyBytes        int64
	RateLimitPerMinute  int
	ReminderScanSpec    string
	EmailDispatchSpec   string
	LeaveAccrualSpec    string
	DispatchBatchSize   int
	DispatchConcurrency int
	SendTimeout         time.Duration
	EmailMaxRetries     int
	ReminderWindowDays  int
}

func Load() Config {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		Addr:                getEnv("APP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		FrontendDir:         getEnv("FRONTEND_DIR", "frontend/dist"),
		Environment:         getEnv("APP_ENV", "development"),
		SeedTenantName:      getEnv("SEED_TENANT_NAME", "Default Tenant"),
		SeedTenantSubdomain: getEnv("SEED_TENANT_SUBDOMAIN", "default"),
		SeedAdminEmail:      getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:   getEnv("SEED_ADMIN_PASSWORD", ""),
		EmailFrom:           getEnv("EMAIL_FROM", "no-reply@example.com"),
		EmailEnabled:        getEnvBool("EMAIL_ENABLED", false),
		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            getEnvInt("SMTP_PORT", 587),
		SMTPUser:            getEnv("SMTP_USER", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:          getEnvBool("SMTP_USE_TLS", true),
		RunMigrations:       getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:             getEnvBool("RUN_SEED", true),
		MaxBodyBytes:        int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute:  getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		ReminderScanSpec:    getEnv("REMINDER_SCAN_CRON", "0 * * * *"),
		EmailDispatchSpec:   getEnv("EMAIL_DISPATCH_CRON", "*/5 * * * *"),
		LeaveAccrualSpec:    getEnv("LEAVE_ACCRUAL_CRON", "30 0 * * *"),
		DispatchBatchSize:   getEnvInt("DISPATCH_BATCH_SIZE", 50),
		DispatchConcurrency: getEnvInt("DISPATCH_CONCURRENCY", 10),
		SendTimeout:         getEnvDuration("SEND_TIMEOUT", 30*time.Second),
		EmailMaxRetries:     getEnvInt("EMAIL_MAX_RETRIES", 3),
		ReminderWindowDays:  getEnvInt("REMINDER_WINDOW_DAYS", 30),
	}
}

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

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
	}
	if c.DispatchBatchSize <= 0 {
		return fmt.Errorf("DISPATCH_BATCH_SIZE must be positive")
	}
	if c.EmailMaxRetries < 0 {
		return fmt.Errorf("EMAIL_MAX_RETRIES must not be negative")
	}
	return nil
}
