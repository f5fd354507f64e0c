package config

import (
	"fmt"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `env:"SERVER" yaml:"server"`
	Database DatabaseConfig `env:"DB" yaml:"database"`
	Logger   LoggerConfig   `env:"LOG" yaml:"log"`
	Auth     AuthConfig     `env:"API" yaml:"auth"`
	S3       S3Config       `env:"S3" yaml:"s3"`
	Redis    RedisConfig    `env:"REDIS" yaml:"redis"`
	Kafka    KafkaConfig    `env:"KAFKA" yaml:"kafka"`
	Shipping ShippingConfig `env:"SHIPPING" yaml:"shipping"`
	Dataset  DatasetConfig  `env:"ADDRESS" yaml:"address"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string `env:"HOST" default:"0.0.0.0" yaml:"host"`
	Port int    `env:"PORT" default:"8080" yaml:"port"`
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string        `env:"HOST" default:"localhost" yaml:"host"`
	Port            int           `env:"PORT" default:"5432" yaml:"port"`
	User            string        `env:"USER" default:"postgres" yaml:"user"`
	Password        string        `env:"PASSWORD" yaml:"password"`
	Database        string        `env:"NAME" default:"storefront" yaml:"name"`
	MaxConnections  int           `env:"MAX_CONNECTIONS" default:"25" yaml:"max_connections"`
	MinConnections  int           `env:"MIN_CONNECTIONS" default:"5" yaml:"min_connections"`
	MaxConnLifetime time.Duration `env:"MAX_CONN_LIFETIME" default:"5m" yaml:"max_conn_lifetime"`
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string `env:"LEVEL" default:"info" yaml:"level"`
	Format string `env:"FORMAT" default:"json" yaml:"format"` // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string `env:"KEY" yaml:"api_key"`
}

// S3Config holds AWS S3 configuration for address datasets.
type S3Config struct {
	Enabled bool   `env:"ENABLED" default:"false" yaml:"enabled"`
	Bucket  string `env:"BUCKET" yaml:"bucket"`
	Region  string `env:"REGION" default:"ap-southeast-1" yaml:"region"`
	Prefix  string `env:"PREFIX" default:"address/" yaml:"prefix"` // Path prefix within bucket
}

// RedisConfig controls the category descendant cache.
type RedisConfig struct {
	Enabled  bool          `env:"ENABLED" default:"false" yaml:"enabled"`
	Addr     string        `env:"ADDR" default:"localhost:6379" yaml:"addr"`
	Password string        `env:"PASSWORD" yaml:"password"`
	DB       int           `env:"DB" default:"0" yaml:"db"`
	TTL      time.Duration `env:"TTL" default:"10m" yaml:"ttl"`
}

// KafkaConfig configures the outbox relay.
type KafkaConfig struct {
	Brokers      []string      `env:"BROKERS" yaml:"brokers"`
	Topic        string        `env:"TOPIC" default:"storefront.orders" yaml:"topic"`
	BatchSize    int           `env:"BATCH_SIZE" default:"100" yaml:"batch_size"`
	PollInterval time.Duration `env:"POLL_INTERVAL" default:"2s" yaml:"poll_interval"`
}

// ShippingConfig holds the shipping fee table in currency units.
type ShippingConfig struct {
	CapitalFee           int64 `env:"CAPITAL_FEE" default:"30000" yaml:"capital_fee"`
	ProvinceFee          int64 `env:"PROVINCE_FEE" default:"35000" yaml:"province_fee"`
	NearCapitalSurcharge int64 `env:"NEAR_CAPITAL_SURCHARGE" default:"5000" yaml:"near_capital_surcharge"`
	CentralSurcharge     int64 `env:"CENTRAL_SURCHARGE" default:"10000" yaml:"central_surcharge"`
	SouthernSurcharge    int64 `env:"SOUTHERN_SURCHARGE" default:"20000" yaml:"southern_surcharge"`
	DefaultSurcharge     int64 `env:"DEFAULT_SURCHARGE" default:"15000" yaml:"default_surcharge"`
	FallbackFee          int64 `env:"FALLBACK_FEE" default:"30000" yaml:"fallback_fee"`
}

// DatasetConfig locates the address dataset files on local disk.
type DatasetConfig struct {
	Dir string `env:"DATA_DIR" default:"data/address" yaml:"data_dir"`
}

// Load loads configuration from defaults, an optional config.yaml and
// environment variables, in that order of precedence.
func Load() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		SkipFlags:          true,
		AllowUnknownEnvs:   true,
		AllowUnknownFields: true,
		Files:              []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis address is required when redis is enabled")
		}
		if c.Redis.TTL <= 0 {
			return fmt.Errorf("redis TTL must be positive")
		}
	}

	if err := c.Shipping.validate(); err != nil {
		return err
	}

	return nil
}

func (s ShippingConfig) validate() error {
	fees := map[string]int64{
		"capital fee":            s.CapitalFee,
		"province fee":           s.ProvinceFee,
		"near-capital surcharge": s.NearCapitalSurcharge,
		"central surcharge":      s.CentralSurcharge,
		"southern surcharge":     s.SouthernSurcharge,
		"default surcharge":      s.DefaultSurcharge,
		"fallback fee":           s.FallbackFee,
	}
	for name, fee := range fees {
		if fee < 0 {
			return fmt.Errorf("shipping %s cannot be negative: %d", name, fee)
		}
	}
	return nil
}

// Enabled reports whether any broker is configured.
func (c *KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// MigrationURL returns the connection string understood by the
// golang-migrate pgx/v5 driver.
func (c *DatabaseConfig) MigrationURL() string {
	return "pgx5" + c.ConnectionString()[len("postgres"):]
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
