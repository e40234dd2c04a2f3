package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	MigrationsPath string
	StorageDriver  string
	RedisURL       string
	Port           string
	IsProduction   bool

	LockTTL            time.Duration
	RateLimit          string
	CORSAllowedOrigins []string

	// Business rules
	DiscountReasonThresholdPercent decimal.Decimal
	StoreCreditValidityDays        int
	CreditExpirySweepInterval      time.Duration
	DefaultCreditPercentage        decimal.Decimal
	DefaultCashPercentage          decimal.Decimal
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("STORAGE_DRIVER", "")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("LOCK_TTL", "10s")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("DISCOUNT_REASON_THRESHOLD_PERCENT", "10")
	viper.SetDefault("STORE_CREDIT_VALIDITY_DAYS", 0)
	viper.SetDefault("CREDIT_EXPIRY_SWEEP_INTERVAL", "1h")
	viper.SetDefault("DEFAULT_CREDIT_PERCENTAGE", "50")
	viper.SetDefault("DEFAULT_CASH_PERCENTAGE", "40")

	// Values from .env are now in the environment, where they can be overridden by real variables.
	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:             viper.GetString("PGSQL_URL"),
		MigrationsPath:          viper.GetString("MIGRATIONS_PATH"),
		StorageDriver:           strings.ToLower(viper.GetString("STORAGE_DRIVER")),
		RedisURL:                viper.GetString("REDIS_URL"),
		Port:                    viper.GetString("PORT"),
		IsProduction:            viper.GetBool("IS_PRODUCTION"),
		RateLimit:               viper.GetString("RATE_LIMIT"),
		StoreCreditValidityDays: viper.GetInt("STORE_CREDIT_VALIDITY_DAYS"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	if cfg.StorageDriver == "" {
		cfg.StorageDriver = StoragePostgres
		if cfg.DatabaseURL == "" {
			cfg.StorageDriver = StorageMemory
			log.Println("Warning: PGSQL_URL environment variable not set. Using in-memory storage.")
		}
	}
	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("STORAGE_DRIVER=postgres requires PGSQL_URL")
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	var err error
	if cfg.LockTTL, err = parseDuration("LOCK_TTL", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.CreditExpirySweepInterval, err = parseDuration("CREDIT_EXPIRY_SWEEP_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.StoreCreditValidityDays < 0 {
		return nil, fmt.Errorf("STORE_CREDIT_VALIDITY_DAYS must not be negative")
	}

	if cfg.DiscountReasonThresholdPercent, err = parsePercent("DISCOUNT_REASON_THRESHOLD_PERCENT"); err != nil {
		return nil, err
	}
	if cfg.DefaultCreditPercentage, err = parsePercent("DEFAULT_CREDIT_PERCENTAGE"); err != nil {
		return nil, err
	}
	if cfg.DefaultCashPercentage, err = parsePercent("DEFAULT_CASH_PERCENTAGE"); err != nil {
		return nil, err
	}
	if cfg.DefaultCreditPercentage.Add(cfg.DefaultCashPercentage).GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("DEFAULT_CREDIT_PERCENTAGE + DEFAULT_CASH_PERCENTAGE must not exceed 100")
	}

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := viper.GetString(key)
	if raw == "" {
		log.Printf("Warning: %s not set. Defaulting to %s.\n", key, fallback)
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid value for %s (%q)", key, raw)
	}
	return d, nil
}

func parsePercent(key string) (decimal.Decimal, error) {
	raw := viper.GetString(key)
	pct, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid value for %s (%q): %w", key, raw, err)
	}
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, fmt.Errorf("%s must be between 0 and 100", key)
	}
	return pct, nil
}
