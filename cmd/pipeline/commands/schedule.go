package commands

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"github.com/web3data/pipeline/internal/di"
	"github.com/web3data/pipeline/internal/scheduler"
)

// ScheduleCommand returns the schedule command, a long-running daemon that
// fires pipeline runs on the configured cron recurrence
func ScheduleCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "Run the pipeline on a cron schedule (default: every 6 hours)",
		Description: `Starts a long-running scheduler that executes a full pipeline run on
every firing of the configured cron recurrence (default "0 */6 * * *").

A failed run is logged and does not stop the scheduler; the next firing
starts fresh. There is no overlap guard: if a run outlasts the interval,
the next firing starts a concurrent run.

Stop with SIGINT or SIGTERM; an in-flight run is allowed to finish.

Examples:
  # Every six hours, the default
  pipeline schedule

  # Custom recurrence from a config file
  pipeline schedule --config pipeline.yml`,
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: func(c *cli.Context) error {
			return scheduleAction(c, logger)
		},
	}
}

func scheduleAction(c *cli.Context, logger *zerolog.Logger) error {
	container, err := di.New(di.WithConfigPath(c.String("config")))
	if err != nil {
		return err
	}

	var sched *scheduler.Scheduler
	if err := container.Invoke(func(s *scheduler.Scheduler) { sched = s }); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info().Msg("Scheduler stopped")
	return nil
}
