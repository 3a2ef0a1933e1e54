package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config collects every tunable of the data layer. All values have
// working defaults so an empty environment still yields a usable store.
type Config struct {
	DatabasePath string
	LogLevel     string

	DeliveryFee     decimal.Decimal
	CartMaxQuantity int

	SessionSecret []byte
	SessionTTL    time.Duration

	SecurityCodeTTL         time.Duration
	SecurityCodeMaxAttempts int
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	return &Config{
		DatabasePath: EnvDefault("SHOP_DB_PATH", "shop.db"),
		LogLevel:     EnvDefault("LOG_LEVEL", "info"),

		DeliveryFee:     EnvDecimalDefault("DELIVERY_FEE", decimal.NewFromInt(300)),
		CartMaxQuantity: EnvIntDefault("CART_MAX_QUANTITY", 99),

		SessionSecret: []byte(EnvDefault("SESSION_SECRET", "dev-session-secret")),
		SessionTTL:    EnvDurationDefault("SESSION_TTL", 7*24*time.Hour),

		SecurityCodeTTL:         EnvDurationDefault("SECURITY_CODE_TTL", 5*time.Minute),
		SecurityCodeMaxAttempts: EnvIntDefault("SECURITY_CODE_MAX_ATTEMPTS", 5),
	}
}

func EnvDefault(key, def string) string {
	if os.Getenv(key) != "" {
		return os.Getenv(key)
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func EnvDecimalDefault(key string, def decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return def
	}
	return d
}
