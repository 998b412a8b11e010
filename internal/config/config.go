package config

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Snapshot backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"quiz-questions"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`
	FeedEnabled             bool          `env:"FEED_ENABLED" envDefault:"true"`

	Storage  Storage
	Postgres Postgres
	SQLite   SQLite
	Redis    Redis
	CORS     CORS
}

// Storage selects where snapshots live and how the store is first seeded.
type Storage struct {
	Backend         string        `env:"SNAPSHOT_BACKEND" envDefault:"file"`
	SnapshotPath    string        `env:"SNAPSHOT_PATH" envDefault:"parsed.data.json"`
	BootstrapSource string        `env:"BOOTSTRAP_SOURCE"`
	DefaultTopic    string        `env:"DEFAULT_TOPIC" envDefault:"arithmetic"`
	LoadTimeout     time.Duration `env:"SNAPSHOT_LOAD_TIMEOUT" envDefault:"10s"`
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER"`
	Password string `env:"PG_PASSWORD"`
	Database string `env:"PG_DATABASE"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"PG_MAX_CONNS" envDefault:"4"`
}

// ConnString renders a pgx keyword/value DSN.
func (p Postgres) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode, p.MaxConns)
}

// SQLite configures the embedded snapshot database.
type SQLite struct {
	DSN string `env:"SQLITE_DSN" envDefault:"file:questions.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"`
}

// Redis holds snapshot key configuration.
type Redis struct {
	Addr        string `env:"REDIS_ADDR"`
	DB          int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize    int    `env:"REDIS_POOL_SIZE" envDefault:"5"`
	SnapshotKey string `env:"REDIS_SNAPSHOT_KEY" envDefault:"questions:snapshot"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,PUT,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,X-Request-ID"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config and validates the
// settings required by the selected snapshot backend.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c *App) Validate() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.SnapshotPath == "" {
			return fmt.Errorf("SNAPSHOT_PATH must be set for the file backend")
		}
	case BackendPostgres:
		var missing []string
		for name, val := range map[string]string{
			"PG_HOST":     c.Postgres.Host,
			"PG_USER":     c.Postgres.User,
			"PG_PASSWORD": c.Postgres.Password,
			"PG_DATABASE": c.Postgres.Database,
		} {
			if val == "" {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			slices.Sort(missing)
			return fmt.Errorf("postgres backend requires %s", strings.Join(missing, ", "))
		}
	case BackendSQLite:
		if c.SQLite.DSN == "" {
			return fmt.Errorf("SQLITE_DSN must be set for the sqlite backend")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR must be set for the redis backend")
		}
	default:
		return fmt.Errorf("unknown SNAPSHOT_BACKEND %q", c.Storage.Backend)
	}
	if c.GracefulShutdownTimeout <= 0 {
		return fmt.Errorf("GRACEFUL_SHUTDOWN_SECONDS must be positive")
	}
	return nil
}
