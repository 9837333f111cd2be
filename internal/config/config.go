// Package config loads pipeline settings from an optional YAML file.
// Every field has a production default, so a missing file is not an error.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/web3data/pipeline/internal/orchestrator"
	"github.com/web3data/pipeline/internal/scheduler"
	"github.com/web3data/pipeline/internal/tasks"
)

// Secret source names accepted in the secret_source field.
const (
	SourceEnv = "env"
	SourceAWS = "aws"
)

// Duration is a time.Duration that unmarshals from YAML strings like "90m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds the pipeline settings.
type Config struct {
	// Schedule is the cron recurrence used by the schedule command.
	Schedule string `yaml:"schedule"`

	// RunTimeout caps a whole run; TaskTimeout caps each collection task.
	RunTimeout  Duration `yaml:"run_timeout"`
	TaskTimeout Duration `yaml:"task_timeout"`
	TaskPause   Duration `yaml:"task_pause"`

	// Script, when set, delegates the run to an external program instead of
	// the built-in collection suite. ScriptDir is its working directory.
	Script    string `yaml:"script"`
	ScriptDir string `yaml:"script_dir"`

	// SecretSource selects where secrets come from: "env" or "aws".
	SecretSource string `yaml:"secret_source"`

	// AWSSecretName names the Secrets Manager secret when SecretSource is
	// "aws". The secret value must be a JSON object keyed by secret name.
	AWSSecretName string `yaml:"aws_secret_name"`
}

// Default returns the production configuration.
func Default() Config {
	return Config{
		Schedule:     scheduler.DefaultSpec,
		RunTimeout:   Duration(orchestrator.DefaultRunTimeout),
		TaskTimeout:  Duration(tasks.DefaultTaskTimeout),
		TaskPause:    Duration(tasks.DefaultPause),
		SecretSource: SourceEnv,
	}
}

// Load reads the config file at path, applying defaults for any field the
// file omits. An empty path, or a missing file at the default location,
// yields Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings that would only fail later at runtime.
func (c Config) Validate() error {
	switch c.SecretSource {
	case SourceEnv:
	case SourceAWS:
		if c.AWSSecretName == "" {
			return fmt.Errorf("aws_secret_name is required when secret_source is %q", SourceAWS)
		}
	default:
		return fmt.Errorf("unknown secret_source %q (want %q or %q)", c.SecretSource, SourceEnv, SourceAWS)
	}

	if c.RunTimeout <= 0 {
		return fmt.Errorf("run_timeout must be positive")
	}
	if c.TaskTimeout <= 0 {
		return fmt.Errorf("task_timeout must be positive")
	}
	return nil
}
