package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting the service needs. All of it is read
// once at startup; missing required values abort the boot instead of
// degrading silently at the first request.
type Config struct {
	Env  string
	Port string

	CredentialsFile string

	JWTSecret        string
	JWTRefreshSecret string

	OTPLength          int
	OTPExpiry          time.Duration
	DeviceActiveWindow time.Duration

	RateLimit       int
	RateLimitWindow time.Duration

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string

	LogLevel string
}

func Load() (*Config, error) {
	// .env is only expected on local machines; deployed environments
	// inject real env vars.
	if os.Getenv("RENDER") == "" {
		if err := godotenv.Load(); err != nil {
			fmt.Println("Warning: .env file not loaded, fallback to OS env vars")
		}
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		CredentialsFile:    os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		JWTSecret:          os.Getenv("JWT_SECRET_KEY"),
		JWTRefreshSecret:   os.Getenv("JWT_REFRESH_SECRET_KEY"),
		OTPLength:          getEnvInt("OTP_LENGTH", 6),
		OTPExpiry:          time.Duration(getEnvInt("OTP_EXPIRY_SECONDS", 300)) * time.Second,
		DeviceActiveWindow: time.Duration(getEnvInt("DEVICE_ACTIVE_DAYS", 30)) * 24 * time.Hour,
		RateLimit:          getEnvInt("RATE_LIMIT", 30),
		RateLimitWindow:    time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		TwilioAccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:         os.Getenv("TWILIO_FROM"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	if cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("environment variable GOOGLE_APPLICATION_CREDENTIALS is not set")
	}
	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY and JWT_REFRESH_SECRET_KEY must be set")
	}
	if cfg.OTPLength < 4 || cfg.OTPLength > 10 {
		return nil, fmt.Errorf("OTP_LENGTH must be between 4 and 10, got %d", cfg.OTPLength)
	}
	if cfg.OTPExpiry <= 0 {
		return nil, fmt.Errorf("OTP_EXPIRY_SECONDS must be positive")
	}

	return cfg, nil
}

// SMSEnabled reports whether the Twilio fallback channel is configured.
// SMS is optional; push is the primary channel.
func (c *Config) SMSEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFrom != ""
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
