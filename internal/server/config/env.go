package config

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

// parseEnv overlays environment variables onto config. Variables are read
// through lookuper so tests can supply a map instead of the process env.
func parseEnv(ctx context.Context, config *Config, lookuper envconfig.Lookuper) error {
	return envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   config,
		Lookuper: lookuper,
	})
}
