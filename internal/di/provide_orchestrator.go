package di

import (
	"github.com/web3data/pipeline/internal/config"
	"github.com/web3data/pipeline/internal/orchestrator"
	"github.com/web3data/pipeline/internal/secrets"
	"github.com/web3data/pipeline/internal/tasks"
)

// ProvideDelegate builds the run delegate: an external script when the
// CLI or config names one, otherwise the built-in collection suite.
func ProvideDelegate(cfg config.Config, script ScriptPath, dir ScriptDir, only TaskFilter) orchestrator.Delegate {
	path, workdir := cfg.Script, cfg.ScriptDir
	if script != "" {
		path, workdir = string(script), string(dir)
	}
	if path != "" {
		return orchestrator.NewScript(path, workdir)
	}

	opts := []orchestrator.CollectOption{
		orchestrator.WithSuiteOptions(
			tasks.WithTaskTimeout(cfg.TaskTimeout.Std()),
			tasks.WithPause(cfg.TaskPause.Std()),
		),
	}
	if only != "" {
		opts = append(opts, orchestrator.WithOnlyTask(string(only)))
	}
	return orchestrator.NewCollect(opts...)
}

// ProvideOrchestrator wires the secret source and delegate into a run
// orchestrator with run history recorded in Postgres.
func ProvideOrchestrator(source secrets.Source, delegate orchestrator.Delegate, cfg config.Config) *orchestrator.Orchestrator {
	return orchestrator.New(source, delegate,
		orchestrator.WithTimeout(cfg.RunTimeout.Std()),
		orchestrator.WithRecorderFactory(orchestrator.PostgresRecorderFactory),
	)
}
