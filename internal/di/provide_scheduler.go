package di

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/web3data/pipeline/internal/config"
	"github.com/web3data/pipeline/internal/dao/rundao"
	"github.com/web3data/pipeline/internal/orchestrator"
	"github.com/web3data/pipeline/internal/scheduler"
)

// ProvideScheduler builds the cron scheduler whose job executes one full
// pipeline run. Run failures are logged, never propagated; the next firing
// gets a fresh chance.
func ProvideScheduler(cfg config.Config, orch *orchestrator.Orchestrator) (*scheduler.Scheduler, error) {
	return scheduler.New(cfg.Schedule, func(ctx context.Context, trigger rundao.Trigger) {
		result, err := orch.Execute(ctx, trigger)
		if err != nil {
			zerolog.Ctx(ctx).Error().
				Err(err).
				Str("run_id", result.RunID).
				Msg("Scheduled run failed")
		}
	})
}
