// Package scheduler fires pipeline runs on a cron recurrence.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/web3data/pipeline/internal/dao/rundao"
)

// DefaultSpec is the production recurrence: every six hours, on the hour.
const DefaultSpec = "0 */6 * * *"

// Job is invoked once per trigger firing. The scheduler does not guard
// against overlap; a slow run and the next firing may coexist, mirroring
// the behavior of a hosted CI trigger.
type Job func(ctx context.Context, trigger rundao.Trigger)

// Scheduler wraps a cron runner around a single job.
type Scheduler struct {
	cron     *cron.Cron
	spec     string
	schedule cron.Schedule
	job      Job
}

// New creates a scheduler for the given cron spec (standard five-field
// syntax).
func New(spec string, job Job) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return &Scheduler{
		cron:     cron.New(),
		spec:     spec,
		schedule: schedule,
		job:      job,
	}, nil
}

// Next returns the first firing time after now.
func (s *Scheduler) Next(now time.Time) time.Time {
	return s.schedule.Next(now)
}

// Run starts the cron loop and blocks until ctx is cancelled, then waits
// for any in-flight job to complete.
func (s *Scheduler) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	if _, err := s.cron.AddFunc(s.spec, func() {
		s.job(ctx, rundao.TriggerCron)
	}); err != nil {
		return fmt.Errorf("failed to register cron job: %w", err)
	}

	s.cron.Start()
	logger.Info().
		Str("spec", s.spec).
		Time("next_run", s.Next(time.Now())).
		Msg("Scheduler started")

	<-ctx.Done()

	logger.Info().Msg("Scheduler stopping, waiting for in-flight run")
	<-s.cron.Stop().Done()
	return ctx.Err()
}
