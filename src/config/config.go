package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-very-secure-and-long-jwt-secret-key-for-hs256-minimum-32-bytes"

type AppConfig struct {
	Port         string
	DatabasePath string
	LogLevel     string

	JWTSecret         string
	AuthRequired      bool
	AccessTokenExpiry time.Duration

	// RulesDir holds extra YAML rule sets loaded at start-up. Empty disables loading.
	RulesDir        string
	DefaultTaxYear  int
	CountryDataPath string

	ResultCacheTTL      time.Duration
	RateLimitPerSecond  float64
	RateLimitBurst      int
	AllowedOrigins      []string
	MaxRequestBodyBytes int64
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")
	Cfg = Load()

	if Cfg.JWTSecret == defaultJWTSecret {
		log.Println("WARNING: Using default insecure JWT_SECRET. Set JWT_SECRET environment variable for production.")
	}
	if Cfg.AuthRequired && len(Cfg.JWTSecret) < 32 {
		log.Fatalf("FATAL: JWT_SECRET must be at least 32 bytes long when AUTH_REQUIRED is set. Current length: %d", len(Cfg.JWTSecret))
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, RulesDir=%q, DefaultTaxYear=%d, AuthRequired=%t",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.RulesDir, Cfg.DefaultTaxYear, Cfg.AuthRequired)
}

// Load reads the configuration from the environment without touching the global Cfg.
func Load() *AppConfig {
	return &AppConfig{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./ustax.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		JWTSecret:         getEnv("JWT_SECRET", defaultJWTSecret),
		AuthRequired:      getEnvAsBool("AUTH_REQUIRED", false),
		AccessTokenExpiry: getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 60*time.Minute),

		RulesDir:        getEnv("RULES_DIR", ""),
		DefaultTaxYear:  getEnvAsInt("DEFAULT_TAX_YEAR", 2025),
		CountryDataPath: getEnv("COUNTRY_DATA_PATH", ""),

		ResultCacheTTL:      getEnvAsDuration("RESULT_CACHE_TTL", 15*time.Minute),
		RateLimitPerSecond:  getEnvAsFloat("RATE_LIMIT_PER_SECOND", 10),
		RateLimitBurst:      getEnvAsInt("RATE_LIMIT_BURST", 30),
		AllowedOrigins:      getEnvAsList("ALLOWED_ORIGINS", "http://localhost:3000"),
		MaxRequestBodyBytes: int64(getEnvAsInt("MAX_REQUEST_BODY_BYTES", 1<<20)),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	log.Printf("Invalid number for %s ('%s'), using default: %g", key, valueStr, fallback)
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid boolean for %s ('%s'), using default: %t", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}

// getEnvAsList splits a comma-separated value and drops empty items.
func getEnvAsList(key, fallback string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, fallback), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
