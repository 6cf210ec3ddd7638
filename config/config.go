package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Sujan7036/friends-momo-sub001/cart"

	"github.com/joho/godotenv"
)

type Config struct {
	AppName  string
	AppURL   string
	AppEnv   string
	Debug    bool
	Port     string
	LogLevel string

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Mail     MailConfig
	Session  SessionConfig
	Pricing  cart.Pricing
	Seed     SeedConfig

	// JWTSecret signs bearer tokens for API clients
	JWTSecret   []byte
	JWTTTL      time.Duration
	CORSOrigins []string
}

type DatabaseConfig struct {
	Driver   string // sqlite or postgres
	Path     string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SeedConfig is the first admin account created by -seed.
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

type SessionConfig struct {
	CookieName  string
	TTL         time.Duration
	RememberTTL time.Duration
	Secure      bool
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Could not read .env file, using process environment", "error", err)
	}

	appEnv := getEnv("APP_ENV", "development")
	cfg := &Config{
		AppName:  getEnv("APP_NAME", "Friends Momo"),
		AppURL:   strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/"),
		AppEnv:   appEnv,
		Debug:    getEnvBool("APP_DEBUG", appEnv == "development"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "sqlite"),
			Path:     getEnv("DB_PATH", "restaurant.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "restaurant"),
			User:     getEnv("DB_USER", "restaurant"),
			Password: getEnv("DB_PASSWORD", ""),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "restaurant-events"),
		},
		Mail: MailConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", "no-reply@friendsmomo.local"),
			FromName: getEnv("MAIL_FROM_NAME", "Friends Momo"),
		},
		Session: SessionConfig{
			CookieName:  getEnv("SESSION_COOKIE", "momo_session"),
			TTL:         getEnvDuration("SESSION_TTL", 2*time.Hour),
			RememberTTL: getEnvDuration("REMEMBER_TTL", 30*24*time.Hour),
			Secure:      getEnvBool("SESSION_SECURE", appEnv == "production"),
		},
		Pricing: cart.Pricing{
			TaxRate:               getEnvFloat("TAX_RATE", cart.DefaultPricing.TaxRate),
			DeliveryFee:           getEnvFloat("DELIVERY_FEE", cart.DefaultPricing.DeliveryFee),
			FreeDeliveryThreshold: getEnvFloat("FREE_DELIVERY_THRESHOLD", cart.DefaultPricing.FreeDeliveryThreshold),
		},
		Seed: SeedConfig{
			AdminEmail:    getEnv("ADMIN_EMAIL", "admin@friendsmomo.local"),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		},
		JWTSecret:   []byte(getEnv("JWT_SECRET", "friends_momo_dev_secret")),
		JWTTTL:      getEnvDuration("JWT_TTL", 24*time.Hour),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
	}

	if cfg.AppEnv == "production" && os.Getenv("JWT_SECRET") == "" {
		slog.Warn("JWT_SECRET is not set; using the development secret")
	}
	return cfg
}
