package errors

import "errors"

var (
	ErrMissingSecrets = errors.New("one or more required secrets are not set")
	ErrRunTimeout     = errors.New("run exceeded its wall-clock limit")
	ErrDelegateFailed = errors.New("delegated script exited non-zero")
	ErrNoPostgres     = errors.New("POSTGRES_URI is required")
	ErrNoMongo        = errors.New("MONGO_URI is required")
	ErrUnknownTask    = errors.New("unknown task name")
)
