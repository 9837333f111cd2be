// Package di provides a lightweight wrapper around uber's dig dependency
// injection framework. It simplifies container setup and provides type-safe
// dependency retrieval with generics.
package di

import (
	"go.uber.org/dig"
)

// Container defines a dependency injection container based on uber's dig.
// This interface allows for easy testing and mocking of the DI container.
type Container interface {
	// Invoke executes a function, injecting its dependencies from the container.
	Invoke(function any, opts ...dig.InvokeOption) error

	// Provide registers a constructor function in the container.
	Provide(constructor any, opts ...dig.ProvideOption) error

	// Scope creates a scoped sub-container with its own set of values.
	Scope(name string, opts ...dig.ScopeOption) *dig.Scope
}

// MustGet returns an instance constructed via dependency injection or panics.
// Use it when the dependency is known to be registered.
//
// Example:
//
//	cfg := MustGet[config.Config](container)
func MustGet[T any](container Container) (want T) {
	callback := func(got T) {
		want = got
	}
	if err := container.Invoke(callback); err != nil {
		panic(err)
	}
	return want
}

// New creates a dependency injection container wired with the pipeline's
// core constructors. The config file path is registered as a typed string
// dependency consumed by ProvideConfig.
//
// Example:
//
//	container, err := New(WithConfigPath("pipeline.yml"))
//	orch := MustGet[*orchestrator.Orchestrator](container)
func New(opts ...Option) (Container, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	container := dig.New()
	if err := container.Provide(func() ConfigPath { return o.configPath }); err != nil {
		return nil, err
	}
	if err := container.Provide(func() ScriptPath { return o.scriptPath }); err != nil {
		return nil, err
	}
	if err := container.Provide(func() ScriptDir { return o.scriptDir }); err != nil {
		return nil, err
	}
	if err := container.Provide(func() TaskFilter { return o.taskFilter }); err != nil {
		return nil, err
	}

	for _, provider := range core {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	for _, provider := range o.providers {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	return container, nil
}

var core = []any{
	ProvideLogger,
	ProvideContext,
	ProvideConfig,
	ProvideSecretSource,
	ProvideDelegate,
	ProvideOrchestrator,
	ProvideScheduler,
}
