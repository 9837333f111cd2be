// Package tasks defines the collection task contract and the sequential
// suite runner that executes tasks in a fixed order.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Summary reports what a single task accomplished.
type Summary struct {
	JobsInserted  int // new rows in job_postings
	PostsInserted int // new documents in social_media_posts
	PostsAnalyzed int // documents enriched with sentiment
	Skipped       int // duplicates and incomplete records
}

// Add folds another summary into this one.
func (s *Summary) Add(other Summary) {
	s.JobsInserted += other.JobsInserted
	s.PostsInserted += other.PostsInserted
	s.PostsAnalyzed += other.PostsAnalyzed
	s.Skipped += other.Skipped
}

// Task is one unit of collection work. Implementations must honor ctx
// cancellation; the suite enforces a per-task deadline through it.
type Task interface {
	Name() string
	Run(ctx context.Context) (Summary, error)
}

// Suite defaults, overridable per option.
const (
	DefaultTaskTimeout = 15 * time.Minute
	DefaultPause       = 5 * time.Second
)

// Suite runs tasks sequentially in registration order. A task failure stops
// the suite; remaining tasks do not run.
type Suite struct {
	tasks       []Task
	taskTimeout time.Duration
	pause       time.Duration
}

// SuiteOption configures a Suite.
type SuiteOption func(*Suite)

// WithTaskTimeout overrides the per-task deadline.
func WithTaskTimeout(d time.Duration) SuiteOption {
	return func(s *Suite) { s.taskTimeout = d }
}

// WithPause overrides the idle gap between consecutive tasks.
func WithPause(d time.Duration) SuiteOption {
	return func(s *Suite) { s.pause = d }
}

// NewSuite creates a suite over the given tasks. Defaults: 15 minutes per
// task, 5 seconds between tasks.
func NewSuite(tasks []Task, opts ...SuiteOption) *Suite {
	s := &Suite{
		tasks:       tasks,
		taskTimeout: DefaultTaskTimeout,
		pause:       DefaultPause,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Names returns the task names in execution order.
func (s *Suite) Names() []string {
	names := make([]string, 0, len(s.tasks))
	for _, t := range s.tasks {
		names = append(names, t.Name())
	}
	return names
}

// Run executes every task in order, stopping at the first failure. The
// returned summary covers the tasks that completed.
func (s *Suite) Run(ctx context.Context) (Summary, error) {
	logger := zerolog.Ctx(ctx)

	var total Summary
	for i, task := range s.tasks {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		logger.Info().Str("task", task.Name()).Msg("Running task")
		start := time.Now()

		taskCtx, cancel := context.WithTimeout(ctx, s.taskTimeout)
		summary, err := task.Run(taskCtx)
		cancel()

		elapsed := time.Since(start)
		if err != nil {
			logger.Error().
				Err(err).
				Str("task", task.Name()).
				Dur("elapsed", elapsed).
				Msg("Task failed, stopping suite")
			return total, fmt.Errorf("task %s: %w", task.Name(), err)
		}

		total.Add(summary)
		logger.Info().
			Str("task", task.Name()).
			Dur("elapsed", elapsed).
			Int("jobs_inserted", summary.JobsInserted).
			Int("posts_inserted", summary.PostsInserted).
			Int("posts_analyzed", summary.PostsAnalyzed).
			Int("skipped", summary.Skipped).
			Msg("Task finished")

		if s.pause > 0 && i < len(s.tasks)-1 {
			select {
			case <-time.After(s.pause):
			case <-ctx.Done():
				return total, ctx.Err()
			}
		}
	}
	return total, nil
}
