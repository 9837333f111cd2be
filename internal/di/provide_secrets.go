package di

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/rs/zerolog"

	"github.com/web3data/pipeline/internal/config"
	"github.com/web3data/pipeline/internal/secrets"
)

// ProvideSecretSource selects the secret backend from the configuration:
// process environment by default, or a single AWS Secrets Manager secret
// holding a JSON object keyed by secret name.
func ProvideSecretSource(ctx context.Context, cfg config.Config) (secrets.Source, error) {
	logger := zerolog.Ctx(ctx)

	switch cfg.SecretSource {
	case config.SourceEnv:
		logger.Info().Msg("Using environment variables for secrets")
		return secrets.NewEnvSource(), nil

	case config.SourceAWS:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		logger.Info().Str("secret_name", cfg.AWSSecretName).Msg("Using AWS Secrets Manager for secrets")
		client := secretsmanager.NewFromConfig(awsCfg)
		return secrets.NewSecretsManagerSource(client, cfg.AWSSecretName), nil

	default:
		return nil, fmt.Errorf("unknown secret_source %q", cfg.SecretSource)
	}
}
