package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Logging   LoggingConfig   `mapstructure:",squash"`
	Business  BusinessConfig  `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
	MigrationsDir   string        `mapstructure:"DATABASE_MIGRATIONS_DIR"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	OverdueSweepSpec string `mapstructure:"SCHEDULER_OVERDUE_SWEEP_SPEC"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BusinessConfig struct {
	MinPrincipal         string        `mapstructure:"BUSINESS_MIN_PRINCIPAL"`
	MaxPrincipal         string        `mapstructure:"BUSINESS_MAX_PRINCIPAL"`
	MinInterestRate      string        `mapstructure:"BUSINESS_MIN_INTEREST_RATE"`
	MinTermMonths        int           `mapstructure:"BUSINESS_MIN_TERM_MONTHS"`
	MaxTermMonths        int           `mapstructure:"BUSINESS_MAX_TERM_MONTHS"`
	DeclarationThreshold string        `mapstructure:"BUSINESS_DECLARATION_THRESHOLD"`
	Timezone             string        `mapstructure:"BUSINESS_TIMEZONE"`
	CurrencyPrefix       string        `mapstructure:"BUSINESS_CURRENCY_PREFIX"`
	ScheduleCacheTTL     time.Duration `mapstructure:"BUSINESS_SCHEDULE_CACHE_TTL"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", "15s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("DATABASE_MIGRATIONS_DIR", "migrations")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("SCHEDULER_OVERDUE_SWEEP_SPEC", "0 0 * * *")
	viper.SetDefault("BUSINESS_MIN_PRINCIPAL", "300")
	viper.SetDefault("BUSINESS_MAX_PRINCIPAL", "200000")
	viper.SetDefault("BUSINESS_MIN_INTEREST_RATE", "0.10")
	viper.SetDefault("BUSINESS_MIN_TERM_MONTHS", 6)
	viper.SetDefault("BUSINESS_MAX_TERM_MONTHS", 60)
	viper.SetDefault("BUSINESS_DECLARATION_THRESHOLD", "5350")
	viper.SetDefault("BUSINESS_TIMEZONE", "America/Lima")
	viper.SetDefault("BUSINESS_CURRENCY_PREFIX", "S/")
	viper.SetDefault("BUSINESS_SCHEDULE_CACHE_TTL", "10m")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	for key, value := range map[string]string{
		"BUSINESS_MIN_PRINCIPAL":         c.Business.MinPrincipal,
		"BUSINESS_MAX_PRINCIPAL":         c.Business.MaxPrincipal,
		"BUSINESS_MIN_INTEREST_RATE":     c.Business.MinInterestRate,
		"BUSINESS_DECLARATION_THRESHOLD": c.Business.DeclarationThreshold,
	} {
		if _, err := decimal.NewFromString(value); err != nil {
			return fmt.Errorf("%s must be a valid decimal: %w", key, err)
		}
	}

	if c.Business.MinTermMonths <= 0 || c.Business.MaxTermMonths < c.Business.MinTermMonths {
		return fmt.Errorf("BUSINESS_MIN_TERM_MONTHS/BUSINESS_MAX_TERM_MONTHS out of order")
	}

	if _, err := time.LoadLocation(c.Business.Timezone); err != nil {
		return fmt.Errorf("BUSINESS_TIMEZONE must be a valid IANA timezone: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// Location returns the configured business timezone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Business.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MinPrincipal returns the minimum loan amount as decimal
func (c *Config) MinPrincipal() decimal.Decimal {
	value, _ := decimal.NewFromString(c.Business.MinPrincipal)
	return value
}

// MaxPrincipal returns the maximum loan amount as decimal
func (c *Config) MaxPrincipal() decimal.Decimal {
	value, _ := decimal.NewFromString(c.Business.MaxPrincipal)
	return value
}

// MinInterestRate returns the annual rate floor as decimal
func (c *Config) MinInterestRate() decimal.Decimal {
	value, _ := decimal.NewFromString(c.Business.MinInterestRate)
	return value
}

// DeclarationThreshold returns the principal amount from which the legal
// declaration must be accepted
func (c *Config) DeclarationThreshold() decimal.Decimal {
	value, _ := decimal.NewFromString(c.Business.DeclarationThreshold)
	return value
}
