package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
// Both services share the struct; each main reads only the fields it needs.
type Config struct {
	ServerPort string
	MySQLDSN   string
	RedisAddr  string
	RedisDB    int
	RedisPass  string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	// ProductServiceURL is the base URL the users service calls for the
	// deactivation cascade, e.g. "http://localhost:8081".
	ProductServiceURL string

	// PublicBaseURL is embedded in confirmation links sent by email.
	PublicBaseURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPass     string
	SMTPFrom     string
	SMTPFromName string

	AMQPURL string

	LogLevel  string
	LogFormat string
}

// Load builds Config from environment with sensible defaults. A local .env
// file is merged in first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		MySQLDSN:   getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/markethub?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:    getEnvInt("REDIS_DB", 0),
		RedisPass:  os.Getenv("REDIS_PASSWORD"),

		JWTSecret:   getEnv("JWT_SECRET", "change-me"),
		JWTIssuer:   getEnv("JWT_ISSUER", "markethub-users"),
		JWTAudience: getEnv("JWT_AUDIENCE", "markethub"),

		ProductServiceURL: getEnv("PRODUCT_SERVICE_URL", "http://localhost:8081"),
		PublicBaseURL:     getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPass:     os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Markethub"),

		AMQPURL: os.Getenv("AMQP_URL"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
