package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/labportal/internal/flagx"
	"github.com/dmitrijs2005/labportal/internal/timex"
)

// JsonConfig is the on-disk form of Config. Pointer fields distinguish
// "absent" from zero values so a partial file only overrides what it names.
type JsonConfig struct {
	UsersBaseURL   *string `json:"users_base_url"`
	ResultsBaseURL *string `json:"results_base_url"`

	MockMode        *bool           `json:"mock_mode"`
	MockLatency     *timex.Duration `json:"mock_latency"`
	MockTokenSecret *string         `json:"mock_token_secret"`

	StorageDriver *string `json:"storage_driver"`
	StorageDSN    *string `json:"storage_dsn"`
	RedisAddr     *string `json:"redis_addr"`
	RedisDB       *int    `json:"redis_db"`

	RequestTimeout *timex.Duration `json:"request_timeout"`
	LogLevel       *string         `json:"log_level"`
	LogFormat      *string         `json:"log_format"`
	MetricsAddr    *string         `json:"metrics_addr"`

	S3Region    *string `json:"s3_region"`
	S3Endpoint  *string `json:"s3_endpoint"`
	S3Bucket    *string `json:"s3_bucket"`
	S3AccessKey *string `json:"s3_access_key"`
	S3SecretKey *string `json:"s3_secret_key"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (jc *JsonConfig) apply(cfg *Config) {
	set(&cfg.UsersBaseURL, jc.UsersBaseURL)
	set(&cfg.ResultsBaseURL, jc.ResultsBaseURL)
	set(&cfg.MockMode, jc.MockMode)
	if jc.MockLatency != nil {
		cfg.MockLatency = jc.MockLatency.Duration
	}
	set(&cfg.MockTokenSecret, jc.MockTokenSecret)
	set(&cfg.StorageDriver, jc.StorageDriver)
	set(&cfg.StorageDSN, jc.StorageDSN)
	set(&cfg.RedisAddr, jc.RedisAddr)
	set(&cfg.RedisDB, jc.RedisDB)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFormat, jc.LogFormat)
	set(&cfg.MetricsAddr, jc.MetricsAddr)
	set(&cfg.S3Region, jc.S3Region)
	set(&cfg.S3Endpoint, jc.S3Endpoint)
	set(&cfg.S3Bucket, jc.S3Bucket)
	set(&cfg.S3AccessKey, jc.S3AccessKey)
	set(&cfg.S3SecretKey, jc.S3SecretKey)
}

// parseJson overlays cfg with the file named by -c/-config in args. No flag
// means no change.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}
	jc.apply(cfg)
	return nil
}
