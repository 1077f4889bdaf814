package app

import (
	"os"
	"strconv"
	"time"
)

// Config is read from the environment once at startup. Every field has a
// default that makes a local dev run work with zero configuration.
type Config struct {
	// Server
	Port            string
	ShutdownTimeout time.Duration

	// Logging
	LogLevel  string
	LogFormat string
	Env       string

	// Database
	DatabaseFile string

	// Tokens
	Issuer         string
	SigningKeyFile string // PEM Ed25519; empty means ephemeral per process
	ProvisionalTTL time.Duration
	FullTTL        time.Duration

	// One-time codes
	CodeTTL              time.Duration
	HousekeepingInterval time.Duration

	// Password hashing
	PepperFile string

	// Notification
	SMTPAddr     string // empty disables mail, codes go to the log
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	// Bootstrap admin, applied only when the user table is empty.
	BootstrapUsername string
	BootstrapEmail    string
	BootstrapPassword string
}

func LoadConfig() Config {
	return Config{
		Port:            getEnvOrDefault("PORT", "8080"),
		ShutdownTimeout: getDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
		Env:       getEnvOrDefault("ENV", "dev"),

		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "ticketlog.db"),

		Issuer:         getEnvOrDefault("TOKEN_ISSUER", "ticketlog"),
		SigningKeyFile: os.Getenv("TOKEN_SIGNING_KEY_FILE"),
		ProvisionalTTL: getDurationOrDefault("TOKEN_PROVISIONAL_TTL", 0),
		FullTTL:        getDurationOrDefault("TOKEN_FULL_TTL", 0),

		CodeTTL:              getDurationOrDefault("LOGIN_CODE_TTL", 0),
		HousekeepingInterval: getDurationOrDefault("HOUSEKEEPING_INTERVAL", 0),

		PepperFile: getEnvOrDefault("PEPPER_FILE", "pepper.key"),

		SMTPAddr:     os.Getenv("SMTP_ADDR"),
		SMTPFrom:     getEnvOrDefault("SMTP_FROM", "no-reply@localhost"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),

		BootstrapUsername: getEnvOrDefault("BOOTSTRAP_USERNAME", "admin"),
		BootstrapEmail:    os.Getenv("BOOTSTRAP_EMAIL"),
		BootstrapPassword: os.Getenv("BOOTSTRAP_PASSWORD"),
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDurationOrDefault accepts Go duration syntax ("5m") or bare seconds.
func getDurationOrDefault(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
