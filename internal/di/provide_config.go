package di

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/web3data/pipeline/internal/config"
)

// ProvideConfig loads the YAML config file, falling back to defaults when
// no file exists at the given path.
func ProvideConfig(ctx context.Context, path ConfigPath) (config.Config, error) {
	cfg, err := config.Load(string(path))
	if err != nil {
		return config.Config{}, err
	}

	zerolog.Ctx(ctx).Info().
		Str("schedule", cfg.Schedule).
		Dur("run_timeout", cfg.RunTimeout.Std()).
		Str("secret_source", cfg.SecretSource).
		Bool("has_script", cfg.Script != "").
		Msg("Configuration loaded")

	return cfg, nil
}
