package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server  ServerConfig
	App     AppConfig
	Storage StorageConfig
	Redis   RedisConfig
	SQL     SQLConfig
	Economy EconomyConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name         string `envconfig:"APP_NAME" default:"playermarket-api"`
	Environment  string `envconfig:"APP_ENV" default:"development"`
	Version      string `envconfig:"APP_VERSION" default:"1.0.0"`
	ModeratorKey string `envconfig:"MODERATOR_KEY" default:""` // Key for moderator-only endpoints
}

// StorageConfig selects and scopes the marketplace backend.
type StorageConfig struct {
	// Type is keyvalue, relational or memory.
	Type string `envconfig:"STORAGE_TYPE" default:"keyvalue"`

	// ServerName is the namespace under which listing ids are unique on the
	// key-value backend. One logical market per server.
	ServerName string `envconfig:"MARKET_SERVER_NAME" default:"main"`

	// PollInterval is the relational backend's event poll cadence.
	PollInterval time.Duration `envconfig:"MARKET_POLL_INTERVAL" default:"1s"`
}

// RedisConfig holds key-value backend settings.
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// SQLConfig holds relational backend settings.
type SQLConfig struct {
	Driver   string `envconfig:"SQL_DRIVER" default:"mysql"` // mysql or sqlite
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"3306"`
	Name     string `envconfig:"DB_NAME" default:"market"`
	User     string `envconfig:"DB_USER" default:"root"`
	Password string `envconfig:"DB_PASS" default:""`
	// SQLitePath is used when Driver is sqlite.
	SQLitePath string `envconfig:"SQLITE_PATH" default:"./data/market.db"`
}

// EconomyConfig holds settings for the built-in ledger used when no external
// economy service is wired in.
type EconomyConfig struct {
	OpeningBalance int64 `envconfig:"ECONOMY_OPENING_BALANCE" default:"1000"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Address returns the Redis address in host:port format.
func (r *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// DSN returns the MySQL data source name.
func (d *SQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
