package config

import (
	"context"
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// parseEnv loads envFile into the process environment, without replacing
// variables that are already set, then overlays every LABPORTAL_* variable
// visible through lookup. A missing env file is not an error.
func parseEnv(ctx context.Context, cfg *Config, envFile string, lookup envconfig.Lookuper) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	if lookup == nil {
		lookup = envconfig.OsLookuper()
	}

	return envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, lookup),
	})
}
