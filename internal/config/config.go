package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Env  string
	Port string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// MigrateOnStart applies pending SQL migrations when the API boots.
	MigrateOnStart bool

	// Identity
	JWTSecret        string
	JWTExpirationDur time.Duration
	ServiceAPIKey    string

	// Households
	DefaultCurrency string
	InviteTTL       time.Duration
	LeaveConfirmTTL time.Duration

	// Natural-language parser
	GeminiAPIKey  string
	GeminiModel   string
	ParserTimeout time.Duration

	// CSV export archive (empty disables archiving)
	ExportBucket string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "kopilka"),
		DBPassword: getEnv("DB_PASSWORD", "kopilka"),
		DBName:     getEnv("DB_NAME", "kopilka"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "kopilka.db"),

		MigrateOnStart: getEnv("MIGRATE_ON_START", "false") == "true",

		JWTSecret:     getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		ServiceAPIKey: getEnv("SERVICE_API_KEY", ""),

		DefaultCurrency: strings.ToUpper(getEnv("DEFAULT_CURRENCY", "RUB")),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		ExportBucket: getEnv("EXPORT_BUCKET", ""),
	}

	config.JWTExpirationDur = getDuration("JWT_EXPIRES_IN", 30*24*time.Hour)
	config.InviteTTL = getDuration("INVITE_TTL", 30*24*time.Hour)
	config.LeaveConfirmTTL = getDuration("LEAVE_CONFIRM_TTL", 5*time.Minute)
	config.ParserTimeout = getDuration("PARSER_TIMEOUT", 30*time.Second)

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// PostgresURL returns the migrate-style connection URL for the configured database.
func (c *Config) PostgresURL() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration parses a duration variable, falling back to the default on bad input.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}
