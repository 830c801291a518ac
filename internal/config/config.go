package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable (e.g. "30s") or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// GetDecimalEnv returns a decimal environment variable or a default value.
func GetDecimalEnv(key string, defaultVal decimal.Decimal) decimal.Decimal {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := decimal.NewFromString(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// GetListEnv splits a comma separated variable, dropping empty parts.
func GetListEnv(key string) []string {
	raw := GetEnv(key, "")
	if raw == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(raw, ",") {
		if pt := strings.TrimSpace(p); pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}

type Config struct {
	Port           string
	AllowedOrigins string
	RequestTimeout time.Duration
	DB             DB
	Redis          Redis
	JWT            JWT
	Pricing        Pricing
	Kafka          Kafka
	StripeKey      string
	UploadDir      string
	UploadBaseURL  string
	RateLimit      RateLimit
	DashboardTTL   time.Duration
	ProductTTL     time.Duration
	AutoMigrate    bool
}

type DB struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DSN renders the libpq style connection string used by gorm's postgres driver.
func (d DB) DSN() string {
	return "host=" + d.Host +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" port=" + d.Port +
		" sslmode=" + d.SSLMode
}

type Redis struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWT struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
}

type Pricing struct {
	TaxRate         decimal.Decimal
	ShippingFlatFee decimal.Decimal
}

type Kafka struct {
	Brokers []string
	Topic   string
}

type RateLimit struct {
	Max    int
	Window time.Duration
}

// Load builds the typed configuration from the environment.
func Load() *Config {
	return &Config{
		Port:           GetEnv("PORT", "3000"),
		AllowedOrigins: GetEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"),
		RequestTimeout: GetDurationEnv("REQUEST_TIMEOUT", 10*time.Second),
		DB: DB{
			Host:            GetEnv("DB_HOST", "localhost"),
			Port:            GetEnv("DB_PORT", "5432"),
			User:            GetEnv("DB_USER", "postgres"),
			Password:        GetEnv("DB_PASSWORD", "postgres"),
			Name:            GetEnv("DB_NAME", "storeadmin"),
			SSLMode:         GetEnv("DB_SSLMODE", "disable"),
			MaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		},
		Redis: Redis{
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetIntEnv("REDIS_DB", 0),
		},
		JWT: JWT{
			Secret:     GetEnv("JWT_SECRET", "change-me"),
			AccessTTL:  GetDurationEnv("JWT_ACCESS_TTL", 15*time.Minute),
			RefreshTTL: GetDurationEnv("JWT_REFRESH_TTL", 7*24*time.Hour),
			Issuer:     GetEnv("JWT_ISSUER", "storeadmin-api"),
		},
		Pricing: Pricing{
			TaxRate:         GetDecimalEnv("TAX_RATE", decimal.RequireFromString("0.10")),
			ShippingFlatFee: GetDecimalEnv("SHIPPING_FLAT_FEE", decimal.NewFromInt(50)),
		},
		Kafka: Kafka{
			Brokers: GetListEnv("KAFKA_BROKERS"),
			Topic:   GetEnv("KAFKA_TOPIC", "storeadmin.events"),
		},
		StripeKey:     GetEnv("STRIPE_SECRET_KEY", ""),
		UploadDir:     GetEnv("UPLOAD_DIR", "./uploads"),
		UploadBaseURL: GetEnv("UPLOAD_BASE_URL", "/uploads"),
		RateLimit: RateLimit{
			Max:    GetIntEnv("RATE_LIMIT_MAX", 100),
			Window: GetDurationEnv("RATE_LIMIT_WINDOW", 15*time.Minute),
		},
		DashboardTTL: GetDurationEnv("DASHBOARD_CACHE_TTL", time.Minute),
		ProductTTL:   GetDurationEnv("PRODUCT_CACHE_TTL", 10*time.Minute),
		AutoMigrate:  GetEnv("AUTO_MIGRATE", "true") == "true",
	}
}
