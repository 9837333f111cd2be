package di

// ConfigPath is the location of the optional YAML config file.
type ConfigPath string

// ScriptPath and ScriptDir override the config file's delegate script.
type ScriptPath string
type ScriptDir string

// TaskFilter restricts the built-in suite to one named task.
type TaskFilter string

// Option is a function that configures the dependency injection container.
type Option func(*options)

// WithConfigPath sets the config file location. Empty means defaults only.
func WithConfigPath(path string) Option {
	return func(opts *options) {
		opts.configPath = ConfigPath(path)
	}
}

// WithScript delegates runs to an external program, overriding whatever the
// config file names.
func WithScript(path, dir string) Option {
	return func(opts *options) {
		opts.scriptPath = ScriptPath(path)
		opts.scriptDir = ScriptDir(dir)
	}
}

// WithTaskFilter restricts the built-in suite to a single task by name.
func WithTaskFilter(name string) Option {
	return func(opts *options) {
		opts.taskFilter = TaskFilter(name)
	}
}

// WithProviders adds constructor functions to the dependency injection
// container. Each provider should be a constructor function that returns one
// or more values; dependencies are declared as parameters and resolved by
// the container.
//
// Example:
//
//	WithProviders(
//	    func() *http.Client { return &http.Client{} },
//	)
func WithProviders(providers ...any) Option {
	return func(opts *options) {
		opts.providers = append(opts.providers, providers...)
	}
}

type options struct {
	configPath ConfigPath
	scriptPath ScriptPath
	scriptDir  ScriptDir
	taskFilter TaskFilter
	providers  []any
}
