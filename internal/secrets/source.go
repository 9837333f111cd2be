package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Source loads the credential Set from some backing store.
type Source interface {
	Load(ctx context.Context) (Set, error)
}

// EnvSource reads secrets from process environment variables. This is the
// store a hosting CI system injects into the run sandbox.
type EnvSource struct{}

// NewEnvSource creates an environment-variable-backed secret source.
func NewEnvSource() *EnvSource {
	return &EnvSource{}
}

func (e *EnvSource) Load(ctx context.Context) (Set, error) {
	set := make(Set, len(Required))
	for _, name := range Required {
		set[name] = os.Getenv(name)
	}
	return set, nil
}

// SecretsManagerAPI is the subset of the AWS Secrets Manager client used here.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerSource reads all seven secrets from a single AWS Secrets
// Manager secret whose value is a JSON object keyed by secret name.
type SecretsManagerSource struct {
	client     SecretsManagerAPI
	secretName string
}

// NewSecretsManagerSource creates a Secrets Manager backed secret source.
func NewSecretsManagerSource(client SecretsManagerAPI, secretName string) *SecretsManagerSource {
	return &SecretsManagerSource{
		client:     client,
		secretName: secretName,
	}
}

func (s *SecretsManagerSource) Load(ctx context.Context) (Set, error) {
	result, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.secretName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret %s: %w", s.secretName, err)
	}

	if result.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", s.secretName)
	}

	var values map[string]string
	if err := json.Unmarshal([]byte(*result.SecretString), &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal secret %s: %w", s.secretName, err)
	}

	set := make(Set, len(Required))
	for _, name := range Required {
		set[name] = values[name]
	}
	return set, nil
}
