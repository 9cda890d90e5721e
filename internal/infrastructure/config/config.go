package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Database drivers accepted by DB_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port           string        `env:"PORT,            default=8080"`
	Env            string        `env:"ENV,             default=development"`
	LogLevel       string        `env:"LOG_LEVEL,       default=info"`
	JWTSecret      string        `env:"JWT_SECRET,      required"`
	JWTTTL         time.Duration `env:"JWT_TTL,         default=24h"`
	FrontendOrigin string        `env:"FRONTEND_ORIGIN, default=http://localhost:3001"`
	DBDriver       string        `env:"DB_DRIVER,       default=mongo"`

	Mongo      MongoConfig
	Postgres   PostgresConfig
	SQLite     SQLiteConfig
	Redis      RedisConfig
	Uploads    UploadConfig
	SeedAdmin  SeedAdminConfig
	Revocation RevocationConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=blog"`
}

type PostgresConfig struct {
	DSN string `env:"POSTGRES_DSN"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH, default=blog.db"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type RevocationConfig struct {
	Enabled bool `env:"TOKEN_REVOCATION_ENABLED, default=false"`
}

type UploadConfig struct {
	Dir            string `env:"UPLOAD_DIR,       default=uploads"`
	MaxBytes       string `env:"MAX_UPLOAD_BYTES, default=10M"`
	CleanupWorkers int    `env:"CLEANUP_WORKERS,  default=4"`
}

// SeedAdminConfig describes the administrator created at startup when absent.
type SeedAdminConfig struct {
	Email    string `env:"SEED_ADMIN_EMAIL"`
	Username string `env:"SEED_ADMIN_USERNAME, default=admin"`
	Password string `env:"SEED_ADMIN_PASSWORD"`
}

// Enabled reports whether both email and password were provided.
func (s SeedAdminConfig) Enabled() bool {
	return s.Email != "" && s.Password != ""
}

// Production reports whether the server runs with ENV=production.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverMongo, DriverSQLite:
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	return nil
}
