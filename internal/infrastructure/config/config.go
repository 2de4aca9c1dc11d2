package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	LegacyDB   LegacyDBConfig
	Redis      RedisConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Sync       SyncConfig
	Storefront StorefrontConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// DatabaseConfig holds connection settings for the engine's own database
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// LegacyDBConfig holds connection and retry settings for the legacy
// source database. The legacy side is read-only and flaky, so every
// query goes through the retrying connection configured here.
type LegacyDBConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxRetries  int
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// SyncConfig holds reconciliation run configuration
type SyncConfig struct {
	SchedulerEnabled       bool
	ReplenishmentInterval  time.Duration
	TransferInterval       time.Duration
	StockTakingInterval    time.Duration
	OrderInterval          time.Duration
	LeaseTTL               time.Duration
	OrderLookback          time.Duration
	DefaultCalculationType int
	DefaultAnalyzedPeriod  int // days, backs the global automatic policy
}

// StorefrontConfig holds the storefront platforms orders are pulled from
type StorefrontConfig struct {
	Platforms []StorefrontPlatformConfig
}

// StorefrontPlatformConfig holds one storefront REST endpoint
type StorefrontPlatformConfig struct {
	Code           string        `mapstructure:"code"`
	SalesChannelID int64         `mapstructure:"sales_channel_id"`
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with STOCKSYNC_ prefix (e.g., STOCKSYNC_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("STOCKSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		LegacyDB: LegacyDBConfig{
			Host:        v.GetString("legacy_db.host"),
			Port:        v.GetInt("legacy_db.port"),
			User:        v.GetString("legacy_db.user"),
			Password:    v.GetString("legacy_db.password"),
			DBName:      v.GetString("legacy_db.dbname"),
			SSLMode:     v.GetString("legacy_db.sslmode"),
			MaxRetries:  v.GetInt("legacy_db.max_retries"),
			BackoffBase: v.GetDuration("legacy_db.backoff_base"),
			BackoffMax:  v.GetDuration("legacy_db.backoff_max"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
			IdleTimeout:  v.GetDuration("http.idle_timeout"),
		},
		Sync: SyncConfig{
			SchedulerEnabled:       v.GetBool("sync.scheduler_enabled"),
			ReplenishmentInterval:  v.GetDuration("sync.replenishment_interval"),
			TransferInterval:       v.GetDuration("sync.transfer_interval"),
			StockTakingInterval:    v.GetDuration("sync.stock_taking_interval"),
			OrderInterval:          v.GetDuration("sync.order_interval"),
			LeaseTTL:               v.GetDuration("sync.lease_ttl"),
			OrderLookback:          v.GetDuration("sync.order_lookback"),
			DefaultCalculationType: v.GetInt("sync.default_calculation_type"),
			DefaultAnalyzedPeriod:  v.GetInt("sync.default_analyzed_period"),
		},
	}

	if err := v.UnmarshalKey("storefront.platforms", &cfg.Storefront.Platforms); err != nil {
		return nil, fmt.Errorf("error parsing storefront platforms: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "stocksync-engine"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "stocksync"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.LegacyDB.Host == "" {
		cfg.LegacyDB.Host = "localhost"
	}
	if cfg.LegacyDB.Port == 0 {
		cfg.LegacyDB.Port = 5432
	}
	if cfg.LegacyDB.User == "" {
		cfg.LegacyDB.User = "readonly"
	}
	if cfg.LegacyDB.DBName == "" {
		cfg.LegacyDB.DBName = "legacy"
	}
	if cfg.LegacyDB.SSLMode == "" {
		cfg.LegacyDB.SSLMode = "disable"
	}
	if cfg.LegacyDB.MaxRetries == 0 {
		cfg.LegacyDB.MaxRetries = 3
	}
	if cfg.LegacyDB.BackoffBase == 0 {
		cfg.LegacyDB.BackoffBase = time.Second
	}
	if cfg.LegacyDB.BackoffMax == 0 {
		cfg.LegacyDB.BackoffMax = 5 * time.Second
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.Sync.ReplenishmentInterval == 0 {
		cfg.Sync.ReplenishmentInterval = 10 * time.Minute
	}
	if cfg.Sync.TransferInterval == 0 {
		cfg.Sync.TransferInterval = 10 * time.Minute
	}
	if cfg.Sync.StockTakingInterval == 0 {
		cfg.Sync.StockTakingInterval = 30 * time.Minute
	}
	if cfg.Sync.OrderInterval == 0 {
		cfg.Sync.OrderInterval = 5 * time.Minute
	}
	if cfg.Sync.LeaseTTL == 0 {
		cfg.Sync.LeaseTTL = 30 * time.Minute
	}
	if cfg.Sync.OrderLookback == 0 {
		cfg.Sync.OrderLookback = 30 * 24 * time.Hour
	}
	if cfg.Sync.DefaultCalculationType == 0 {
		cfg.Sync.DefaultCalculationType = 1 // automatic
	}
	if cfg.Sync.DefaultAnalyzedPeriod == 0 {
		cfg.Sync.DefaultAnalyzedPeriod = 30
	}
	for i := range cfg.Storefront.Platforms {
		if cfg.Storefront.Platforms[i].Timeout == 0 {
			cfg.Storefront.Platforms[i].Timeout = 30 * time.Second
		}
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.LegacyDB.MaxRetries < 1 {
		return fmt.Errorf("legacy_db.max_retries must be at least 1")
	}
	if c.LegacyDB.BackoffBase > c.LegacyDB.BackoffMax {
		return fmt.Errorf("legacy_db.backoff_base (%s) cannot exceed legacy_db.backoff_max (%s)",
			c.LegacyDB.BackoffBase, c.LegacyDB.BackoffMax)
	}
	if t := c.Sync.DefaultCalculationType; t < 1 || t > 5 {
		return fmt.Errorf("sync.default_calculation_type must be between 1 and 5, got %d", t)
	}
	if c.Sync.DefaultCalculationType == 1 && c.Sync.DefaultAnalyzedPeriod <= 0 {
		return fmt.Errorf("sync.default_analyzed_period must be positive when the default policy is automatic")
	}

	for i, p := range c.Storefront.Platforms {
		if p.Code == "" {
			return fmt.Errorf("storefront.platforms[%d].code is required", i)
		}
		if p.SalesChannelID == 0 {
			return fmt.Errorf("storefront.platforms[%d].sales_channel_id is required", i)
		}
		if p.BaseURL == "" {
			return fmt.Errorf("storefront.platforms[%d].base_url is required", i)
		}
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.LegacyDB.Password == "" {
			return fmt.Errorf("legacy_db.password is required in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// DSN returns the legacy database connection string
func (l *LegacyDBConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(l.User, l.Password),
		Host:   fmt.Sprintf("%s:%d", l.Host, l.Port),
		Path:   l.DBName,
	}
	q := u.Query()
	q.Set("sslmode", l.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
