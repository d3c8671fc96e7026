package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Auth      AuthConfig      `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Logging   LoggingConfig   `mapstructure:",squash"`
	Business  BusinessConfig  `mapstructure:",squash"`
	Health    HealthConfig    `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"DATABASE_DRIVER"`
	URL             string        `mapstructure:"DATABASE_URL"`
	Host            string        `mapstructure:"DATABASE_HOST"`
	Port            string        `mapstructure:"DATABASE_PORT"`
	Name            string        `mapstructure:"DATABASE_NAME"`
	User            string        `mapstructure:"DATABASE_USER"`
	Password        string        `mapstructure:"DATABASE_PASSWORD"`
	SSLMode         string        `mapstructure:"DATABASE_SSLMODE"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host     string        `mapstructure:"REDIS_HOST"`
	Port     string        `mapstructure:"REDIS_PORT"`
	Password string        `mapstructure:"REDIS_PASSWORD"`
	DB       int           `mapstructure:"REDIS_DB"`
	CacheTTL time.Duration `mapstructure:"CACHE_TTL"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"JWT_SECRET"`
}

type SchedulerConfig struct {
	FineSweepCron   string `mapstructure:"FINE_SWEEP_CRON"`
	ExpirySweepCron string `mapstructure:"EXPIRY_SWEEP_CRON"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BusinessConfig struct {
	LoanPeriodDays        int    `mapstructure:"LOAN_PERIOD_DAYS"`
	RenewalDays           int    `mapstructure:"RENEWAL_DAYS"`
	ReservationDays       int    `mapstructure:"RESERVATION_DAYS"`
	MaxOpenLoans          int    `mapstructure:"MAX_OPEN_LOANS"`
	MaxActiveReservations int    `mapstructure:"MAX_ACTIVE_RESERVATIONS"`
	DailyFine             string `mapstructure:"DAILY_FINE"`
	Timezone              string `mapstructure:"APP_TIMEZONE"`
}

type HealthConfig struct {
	Timeout string `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

var defaults = map[string]interface{}{
	"SERVER_PORT":                "8080",
	"SERVER_HOST":                "0.0.0.0",
	"ENV":                        "development",
	"SERVER_READ_TIMEOUT":        "15s",
	"SERVER_WRITE_TIMEOUT":       "15s",
	"DATABASE_DRIVER":            "postgres",
	"DATABASE_URL":               "",
	"DATABASE_HOST":              "",
	"DATABASE_PORT":              "5432",
	"DATABASE_NAME":              "library",
	"DATABASE_USER":              "postgres",
	"DATABASE_PASSWORD":          "",
	"DATABASE_SSLMODE":           "disable",
	"DATABASE_MAX_OPEN_CONNS":    25,
	"DATABASE_MAX_IDLE_CONNS":    5,
	"DATABASE_CONN_MAX_LIFETIME": "1h",
	"REDIS_HOST":                 "localhost",
	"REDIS_PORT":                 "6379",
	"REDIS_PASSWORD":             "",
	"REDIS_DB":                   0,
	"CACHE_TTL":                  "10m",
	"JWT_SECRET":                 "local_dev_secret",
	"FINE_SWEEP_CRON":            "0 0 0 * * *",
	"EXPIRY_SWEEP_CRON":          "0 0 * * * *",
	"LOG_LEVEL":                  "info",
	"LOG_FORMAT":                 "json",
	"LOAN_PERIOD_DAYS":           14,
	"RENEWAL_DAYS":               7,
	"RESERVATION_DAYS":           7,
	"MAX_OPEN_LOANS":             3,
	"MAX_ACTIVE_RESERVATIONS":    2,
	"DAILY_FINE":                 "2.00",
	"APP_TIMEZONE":               "UTC",
	"HEALTH_CHECK_TIMEOUT":       "5s",
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Try to read from .env file (optional); real environment wins
	_ = godotenv.Load(".env", "./deployments/.env")

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Read from environment variables
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
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

	if c.Database.URL == "" && c.Database.Host == "" {
		return fmt.Errorf("DATABASE_URL or DATABASE_HOST is required")
	}

	switch c.Database.Driver {
	case "postgres", "pgx":
	default:
		return fmt.Errorf("DATABASE_DRIVER must be postgres or pgx, got %q", c.Database.Driver)
	}

	if c.Business.LoanPeriodDays <= 0 {
		return fmt.Errorf("LOAN_PERIOD_DAYS must be greater than 0")
	}

	if c.Business.RenewalDays <= 0 {
		return fmt.Errorf("RENEWAL_DAYS must be greater than 0")
	}

	if c.Business.ReservationDays <= 0 {
		return fmt.Errorf("RESERVATION_DAYS must be greater than 0")
	}

	if c.Business.MaxOpenLoans <= 0 {
		return fmt.Errorf("MAX_OPEN_LOANS must be greater than 0")
	}

	if c.Business.MaxActiveReservations <= 0 {
		return fmt.Errorf("MAX_ACTIVE_RESERVATIONS must be greater than 0")
	}

	// Validate fine rate
	fine, err := decimal.NewFromString(c.Business.DailyFine)
	if err != nil {
		return fmt.Errorf("DAILY_FINE must be a valid decimal: %w", err)
	}
	if fine.IsNegative() {
		return fmt.Errorf("DAILY_FINE must not be negative")
	}

	if _, err := time.LoadLocation(c.Business.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE must be a valid IANA zone: %w", err)
	}

	// Validate cron expressions in the scheduler's six-field format
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(c.Scheduler.FineSweepCron); err != nil {
		return fmt.Errorf("FINE_SWEEP_CRON must be a valid cron expression: %w", err)
	}
	if _, err := parser.Parse(c.Scheduler.ExpirySweepCron); err != nil {
		return fmt.Errorf("EXPIRY_SWEEP_CRON must be a valid cron expression: %w", err)
	}

	// Validate health check timeout
	if _, err := time.ParseDuration(c.Health.Timeout); err != nil {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be a valid duration: %w", err)
	}

	return nil
}

// DSN returns the connection string, preferring DATABASE_URL when set
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   d.Host + ":" + d.Port,
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()

	return u.String()
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetDailyFine returns the per-day fine as decimal
func (c *Config) GetDailyFine() decimal.Decimal {
	fine, _ := decimal.NewFromString(c.Business.DailyFine)
	return fine
}

// GetLocation returns the timezone used to decide what "today" is
func (c *Config) GetLocation() *time.Location {
	loc, err := time.LoadLocation(c.Business.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetHealthTimeout returns the health check timeout as duration
func (c *Config) GetHealthTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Health.Timeout)
	return timeout
}
