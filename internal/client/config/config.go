package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/labportal/internal/client/storage"
	"github.com/sethvargo/go-envconfig"
)

// EnvPrefix prefixes every environment variable the client reads.
const EnvPrefix = "LABPORTAL_"

// DefaultEnvFile is loaded from the working directory when it exists.
const DefaultEnvFile = ".env"

// Config holds runtime settings for the lab portal client.
type Config struct {
	UsersBaseURL   string `env:"USERS_BASE_URL, overwrite"`
	ResultsBaseURL string `env:"RESULTS_BASE_URL, overwrite"`

	MockMode        bool          `env:"MOCK_MODE, overwrite"`
	MockLatency     time.Duration `env:"MOCK_LATENCY, overwrite"`
	MockTokenSecret string        `env:"MOCK_TOKEN_SECRET, overwrite"`

	StorageDriver string `env:"STORAGE_DRIVER, overwrite"`
	StorageDSN    string `env:"STORAGE_DSN, overwrite"`
	RedisAddr     string `env:"REDIS_ADDR, overwrite"`
	RedisDB       int    `env:"REDIS_DB, overwrite"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT, overwrite"`
	LogLevel       string        `env:"LOG_LEVEL, overwrite"`
	LogFormat      string        `env:"LOG_FORMAT, overwrite"`
	MetricsAddr    string        `env:"METRICS_ADDR, overwrite"`

	S3Region    string `env:"S3_REGION, overwrite"`
	S3Endpoint  string `env:"S3_ENDPOINT, overwrite"`
	S3Bucket    string `env:"S3_BUCKET, overwrite"`
	S3AccessKey string `env:"S3_ACCESS_KEY, overwrite"`
	S3SecretKey string `env:"S3_SECRET_KEY, overwrite"`
}

// DefaultStorageDSN places the session database under the user's home
// directory, falling back to the working directory.
func DefaultStorageDSN() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "labportal.db"
	}
	return filepath.Join(home, ".labportal", "labportal.db")
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.UsersBaseURL = "http://localhost:8081/api"
	c.ResultsBaseURL = "http://localhost:8083/api"
	c.MockMode = true
	c.MockLatency = 500 * time.Millisecond
	c.MockTokenSecret = "labportal-mock-secret"
	c.StorageDriver = storage.DriverSQLite
	c.StorageDSN = DefaultStorageDSN()
	c.RequestTimeout = 30 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.S3Region = "us-east-1"
}

// StorageOptions maps the storage fields onto storage.Options.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver:    c.StorageDriver,
		DSN:       c.StorageDSN,
		RedisAddr: c.RedisAddr,
		RedisDB:   c.RedisDB,
	}
}

// Load builds a Config from defaults, the JSON file named in args, the env
// file and lookup, then the flags in args.
func Load(ctx context.Context, args []string, envFile string, lookup envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := parseEnv(ctx, cfg, envFile, lookup); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}

// LoadConfig loads from os.Args, ./.env and the process environment. It
// panics on malformed input.
func LoadConfig() *Config {
	cfg, err := Load(context.Background(), os.Args[1:], DefaultEnvFile, envconfig.OsLookuper())
	if err != nil {
		panic(err)
	}
	return cfg
}
