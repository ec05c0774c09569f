package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every environment-driven setting. It is loaded once in main
// and passed down explicitly; nothing reads the environment after startup.
type Config struct {
	Port       string
	AppEnv     string
	DBType     string
	DBPath     string
	DBURL      string
	CORSOrigin string

	// BaseURL is the externally visible address used for QR targets and
	// Twilio callback URLs. Empty means derive it from the request.
	BaseURL string

	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string
	TwilioTimeout     time.Duration

	// FreePlanQRLimit caps QR codes on the free plan. Zero or negative
	// means unbounded.
	FreePlanQRLimit int

	StripeWebhookSecret string
}

func Load() *Config {
	cfg := &Config{
		Port:       getEnv("PORT", "3001"),
		AppEnv:     getEnv("APP_ENV", "development"),
		DBType:     getEnv("DB_TYPE", "json"),
		DBPath:     getEnv("DB_PATH", "./database.json"),
		DBURL:      os.Getenv("DATABASE_URL"),
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),
		BaseURL:    os.Getenv("BASE_URL"),

		TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber: os.Getenv("TWILIO_PHONE_NUMBER"),
		TwilioTimeout:     time.Duration(getEnvInt("TWILIO_TIMEOUT_SECONDS", 15)) * time.Second,

		FreePlanQRLimit: getEnvInt("FREE_PLAN_QR_LIMIT", 3),

		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
	}
	return cfg
}

// TwilioEnabled reports whether the telephony integration is configured.
// Without credentials every call-placing feature degrades to the demo path.
func (c *Config) TwilioEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
