package config

import (
	"context"

	"github.com/caffeinepub/m-employed/cmd/mectl/internal/client"
)

type contextKey string

const configKey contextKey = "mectl-config"

// GlobalConfig holds shared configuration for all mectl commands. The root
// command's PersistentPreRun injects it into the cobra command context;
// subcommands consume it from there.
type GlobalConfig struct {
	ServerURL      string
	NonInteractive bool
	Provider       *client.Provider
}

// InjectConfig adds config to the cobra command context.
func InjectConfig(ctx context.Context, cfg *GlobalConfig) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from the cobra command context. Returns
// (nil, false) if config is not present.
func FromContext(ctx context.Context) (*GlobalConfig, bool) {
	cfg, ok := ctx.Value(configKey).(*GlobalConfig)
	return cfg, ok
}

// MustFromContext retrieves config from context or panics. Only for command
// RunE functions, which run after the root command has injected the config.
func MustFromContext(ctx context.Context) *GlobalConfig {
	cfg, ok := FromContext(ctx)
	if !ok {
		panic("mectl: config not found in context - this is a bug in mectl")
	}
	return cfg
}
