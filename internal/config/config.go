package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	DatabaseURL   string
	ShopName      string
	ShopTimezone  string

	// Twilio SMS configuration
	TwilioAccountSID    string
	TwilioAuthToken     string
	TwilioWebhookSecret string
	TwilioFromNumber    string

	// OTP login
	OTPCodeTTL     time.Duration
	OTPMaxAttempts int

	// Stripe deposits
	StripeSecretKey     string
	StripeWebhookSecret string
	DepositAmountCents  int

	// Owner/staff auth
	OwnerJWTSecret string
	StaffJWTSecret string

	// Appointment reminders
	ReminderQueueURL     string
	ReminderLeadTime     time.Duration
	ReminderPollInterval time.Duration
	ReminderBatchSize    int

	// Timesheet export
	TimesheetBucket string

	// AWS
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Redis (OTP codes, live presence)
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Email notifications
	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	OwnerEmail        string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		ShopName:      getEnv("SHOP_NAME", "ClipperDesk"),
		ShopTimezone:  getEnv("SHOP_TZ", "UTC"),

		TwilioAccountSID:    getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:     getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioWebhookSecret: getEnv("TWILIO_WEBHOOK_SECRET", ""),
		TwilioFromNumber:    getEnv("TWILIO_FROM_NUMBER", ""),

		OTPCodeTTL:     getEnvAsDuration("OTP_CODE_TTL", 5*time.Minute),
		OTPMaxAttempts: getEnvAsInt("OTP_MAX_ATTEMPTS", 5),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		DepositAmountCents:  getEnvAsInt("DEPOSIT_AMOUNT_CENTS", 1500),

		OwnerJWTSecret: getEnv("OWNER_JWT_SECRET", ""),
		StaffJWTSecret: getEnv("STAFF_JWT_SECRET", ""),

		ReminderQueueURL:     getEnv("REMINDER_QUEUE_URL", ""),
		ReminderLeadTime:     getEnvAsDuration("REMINDER_LEAD_TIME", 24*time.Hour),
		ReminderPollInterval: getEnvAsDuration("REMINDER_POLL_INTERVAL", time.Minute),
		ReminderBatchSize:    getEnvAsInt("REMINDER_BATCH_SIZE", 25),

		TimesheetBucket: getEnv("TIMESHEET_BUCKET", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "auto"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "ClipperDesk"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		OwnerEmail:        getEnv("OWNER_EMAIL", ""),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
