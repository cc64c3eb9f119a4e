package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrUnknownBackend              = errors.New("unknown storage backend")
	ErrIncompatibleBackends        = errors.New("incompatible storage backends")
)

// Backend names accepted by storage.engine, sessions.store and locks.backend.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env      string   `mapstructure:"env"`      // current application environment (local, dev, production etc)
	HTTP     HTTP     `mapstructure:"http"`     // HTTP server section
	Storage  Storage  `mapstructure:"storage"`  // catalog, ledger and progress storage
	Sessions Sessions `mapstructure:"sessions"` // quiz session storage
	Locks    Locks    `mapstructure:"locks"`    // per-user lock backend
	Catalog  Catalog  `mapstructure:"catalog"`  // seed catalog
	Reset    Reset    `mapstructure:"reset"`    // daily reset schedule
	DB       DB       `mapstructure:"database"` // database configuration section
	Redis    Redis    `mapstructure:"redis"`    // redis configuration section
}

// HTTP contains HTTP server parameters.
type HTTP struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type Storage struct {
	Engine string `mapstructure:"engine"` // postgres or memory
}

type Sessions struct {
	Store     string        `mapstructure:"store"`     // postgres, redis or memory
	TTL       time.Duration `mapstructure:"ttl"`       // redis key lifetime of a session
	Retention time.Duration `mapstructure:"retention"` // completed sessions older than this are pruned
}

type Locks struct {
	Backend string        `mapstructure:"backend"` // redis or memory
	TTL     time.Duration `mapstructure:"ttl"`     // lease of a redis lock
}

type Catalog struct {
	SeedPath string `mapstructure:"seed_path"` // JSON catalog seeded on startup, empty disables seeding
}

type Reset struct {
	Schedule string `mapstructure:"schedule"` // cron spec
	Timezone string `mapstructure:"timezone"` // IANA name or UTC offset defining the reset day
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// Redis contains redis connection parameters.
type Redis struct {
	URL       string `mapstructure:"-"` // redis URL loaded from environment
	KeyPrefix string `mapstructure:"key_prefix"`
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// NeedsPostgres reports whether any component is backed by postgres.
func (c *Config) NeedsPostgres() bool {
	return c.Storage.Engine == BackendPostgres || c.Sessions.Store == BackendPostgres
}

// NeedsRedis reports whether any component is backed by redis.
func (c *Config) NeedsRedis() bool {
	return c.Sessions.Store == BackendRedis || c.Locks.Backend == BackendRedis
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// Load .env for local runs; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", "10s")
	v.SetDefault("http.write_timeout", "10s")
	v.SetDefault("http.shutdown_timeout", "10s")
	v.SetDefault("http.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("storage.engine", BackendPostgres)
	v.SetDefault("sessions.store", BackendPostgres)
	v.SetDefault("sessions.ttl", "24h")
	v.SetDefault("sessions.retention", "168h")
	v.SetDefault("locks.backend", BackendMemory)
	v.SetDefault("locks.ttl", "10s")
	v.SetDefault("catalog.seed_path", "assets/questions.json")
	v.SetDefault("reset.schedule", "5 0 * * *")
	v.SetDefault("reset.timezone", "UTC")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("redis.key_prefix", "finquest")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("redis_url", "REDIS_URL")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.validateBackends(); err != nil {
		return nil, err
	}

	// Load sensitive values from environment variables.
	cfg.DB.URL = v.GetString("database_url")
	if cfg.NeedsPostgres() && cfg.DB.URL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.Redis.URL = v.GetString("redis_url")
	if cfg.NeedsRedis() && cfg.Redis.URL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	return &cfg, nil
}

func (c *Config) validateBackends() error {
	checks := []struct {
		key     string
		value   string
		allowed []string
	}{
		{"storage.engine", c.Storage.Engine, []string{BackendPostgres, BackendMemory}},
		{"sessions.store", c.Sessions.Store, []string{BackendPostgres, BackendRedis, BackendMemory}},
		{"locks.backend", c.Locks.Backend, []string{BackendRedis, BackendMemory}},
	}

	for _, check := range checks {
		if !slices.Contains(check.allowed, check.value) {
			return fmt.Errorf("%s %q: %w", check.key, check.value, ErrUnknownBackend)
		}
	}

	// Postgres and memory sessions join the storage transaction, so they must share its engine.
	if c.Sessions.Store != BackendRedis && c.Sessions.Store != c.Storage.Engine {
		return fmt.Errorf(
			"sessions.store %q with storage.engine %q: %w",
			c.Sessions.Store, c.Storage.Engine, ErrIncompatibleBackends,
		)
	}

	return nil
}
