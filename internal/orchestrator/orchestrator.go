// Package orchestrator drives one pipeline run through its lifecycle:
// Idle -> Preparing -> Validating -> Delegating -> {Succeeded | Failed}.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/web3data/pipeline/internal/dao/rundao"
	errs "github.com/web3data/pipeline/internal/errors"
	"github.com/web3data/pipeline/internal/preflight"
	"github.com/web3data/pipeline/internal/secrets"
)

// State is a phase of the run lifecycle.
type State string

const (
	StateIdle       State = "IDLE"
	StatePreparing  State = "PREPARING"
	StateValidating State = "VALIDATING"
	StateDelegating State = "DELEGATING"
	StateSucceeded  State = "SUCCEEDED"
	StateFailed     State = "FAILED"
)

// DefaultRunTimeout is the hard wall-clock cap on a run.
const DefaultRunTimeout = 90 * time.Minute

// Delegate performs the actual collection work for a run, given the
// validated secret set.
type Delegate interface {
	Name() string
	Run(ctx context.Context, set secrets.Set) (rundao.Counters, error)
}

// Recorder persists run lifecycle transitions. rundao.DAO satisfies it.
type Recorder interface {
	Create(ctx context.Context, id string, trigger rundao.Trigger) (rundao.Record, error)
	Start(ctx context.Context, id string) error
	Finish(ctx context.Context, id string, status rundao.RunStatus, errMsg *string, counters rundao.Counters) error
}

// RecorderFactory builds a Recorder once the secret set is known (the run
// history database URI is itself one of the secrets). The returned closer
// releases the recorder's resources.
type RecorderFactory func(ctx context.Context, set secrets.Set) (Recorder, func(), error)

// Orchestrator executes runs. One Orchestrator may execute many runs, but
// each Execute call is a self-contained run with its own deadline.
type Orchestrator struct {
	source    secrets.Source
	delegate  Delegate
	recorders RecorderFactory
	timeout   time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTimeout overrides the run wall-clock cap.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithRecorderFactory enables run history persistence. Without it, runs are
// not recorded.
func WithRecorderFactory(f RecorderFactory) Option {
	return func(o *Orchestrator) { o.recorders = f }
}

// New creates an Orchestrator.
func New(source secrets.Source, delegate Delegate, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		source:   source,
		delegate: delegate,
		timeout:  DefaultRunTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Result describes a completed (or aborted) run.
type Result struct {
	RunID    string
	State    State
	Report   preflight.Report
	Counters rundao.Counters
}

// Execute performs one run end to end. The returned Result is valid even
// when err is non-nil; Result.State is then StateFailed.
//
// The run is atomic from the caller's perspective: it either fully succeeds
// or fails, with no retry at this layer.
func (o *Orchestrator) Execute(ctx context.Context, trigger rundao.Trigger) (Result, error) {
	result := Result{
		RunID: rundao.NewID(),
		State: StateIdle,
	}

	logger := zerolog.Ctx(ctx).With().
		Str("run_id", result.RunID).
		Str("trigger", string(trigger)).
		Logger()
	ctx = logger.WithContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	// Preparing: resolve the secret set from its store.
	result.State = StatePreparing
	logger.Info().Str("state", string(result.State)).Msg("Preparing run")
	set, err := o.source.Load(ctx)
	if err != nil {
		result.State = StateFailed
		return result, fmt.Errorf("failed to load secrets: %w", err)
	}

	// Validating: check-all-then-fail across the full secret set. The
	// delegate must never run after a failed validation.
	result.State = StateValidating
	logger.Info().Str("state", string(result.State)).Msg("Validating secrets")
	result.Report = preflight.Validate(ctx, set)
	if !result.Report.OK() {
		result.State = StateFailed
		return result, errs.ErrMissingSecrets
	}

	recorder, closeRecorder := o.newRecorder(ctx, set)
	defer closeRecorder()

	if _, err := recorder.Create(ctx, result.RunID, trigger); err != nil {
		logger.Warn().Err(err).Msg("Failed to create run record; continuing without history")
		recorder = nopRecorder{}
	}

	// Delegating: hand off to the collection delegate.
	result.State = StateDelegating
	logger.Info().Str("state", string(result.State)).Str("delegate", o.delegate.Name()).Msg("Delegating")
	if err := recorder.Start(ctx, result.RunID); err != nil {
		logger.Warn().Err(err).Msg("Failed to mark run in progress")
	}

	counters, err := o.delegate.Run(ctx, set)
	result.Counters = counters

	// Terminal bookkeeping must survive a run that died to its deadline.
	finishCtx := context.WithoutCancel(ctx)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("%w after %s: %v", errs.ErrRunTimeout, o.timeout, err)
		}
		result.State = StateFailed
		msg := err.Error()
		if finishErr := recorder.Finish(finishCtx, result.RunID, rundao.RunStatusFailed, &msg, counters); finishErr != nil {
			logger.Warn().Err(finishErr).Msg("Failed to record run failure")
		}
		logger.Error().Err(err).Str("state", string(result.State)).Msg("Run failed")
		return result, err
	}

	result.State = StateSucceeded
	if finishErr := recorder.Finish(finishCtx, result.RunID, rundao.RunStatusSuccess, nil, counters); finishErr != nil {
		logger.Warn().Err(finishErr).Msg("Failed to record run success")
	}
	logger.Info().
		Str("state", string(result.State)).
		Int("jobs_inserted", counters.JobsInserted).
		Int("posts_inserted", counters.PostsInserted).
		Int("posts_analyzed", counters.PostsAnalyzed).
		Msg("Run succeeded")
	return result, nil
}

// newRecorder builds the run history recorder, degrading to a no-op when
// history persistence is unavailable. A broken history store must not fail
// an otherwise healthy run.
func (o *Orchestrator) newRecorder(ctx context.Context, set secrets.Set) (Recorder, func()) {
	if o.recorders == nil {
		return nopRecorder{}, func() {}
	}

	recorder, closer, err := o.recorders(ctx, set)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Run history unavailable")
		return nopRecorder{}, func() {}
	}
	if closer == nil {
		closer = func() {}
	}
	return recorder, closer
}

type nopRecorder struct{}

func (nopRecorder) Create(ctx context.Context, id string, trigger rundao.Trigger) (rundao.Record, error) {
	return rundao.Record{ID: id, Trigger: trigger}, nil
}

func (nopRecorder) Start(ctx context.Context, id string) error { return nil }

func (nopRecorder) Finish(ctx context.Context, id string, status rundao.RunStatus, errMsg *string, counters rundao.Counters) error {
	return nil
}
