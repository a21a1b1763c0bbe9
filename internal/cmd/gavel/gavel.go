// Package gavel parses ledger service flags and launches the service.
package gavel

import (
	"context"
	"flag"

	server "github.com/gavelhq/gavel/internal/app"
	entrypoint "github.com/gavelhq/gavel/internal/platform/cmd"
)

// Config holds gavel command configuration.
type Config struct {
	Port int `env:"GAVEL_PORT" envDefault:"8080"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The ledger HTTP server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the auction ledger HTTP service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGavel, func(context.Context) error {
		return server.Run(ctx, cfg.Port)
	})
}
