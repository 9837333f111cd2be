package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v2"
	"github.com/web3data/pipeline/cmd/pipeline/commands"
	"github.com/web3data/pipeline/internal/di"
)

func main() {
	logger := di.ProvideLogger()
	ctx := logger.WithContext(context.Background())

	app := &cli.App{
		Name:  "pipeline",
		Usage: "web3 job-market data collection pipeline",
		Description: `A scheduled data-collection pipeline for web3 job-market intelligence.

This tool provides commands for:
  - Running a full collection pass on demand or on a cron schedule
  - Validating the seven required credentials without collecting
  - Inspecting the history of recorded runs`,
		Commands: []*cli.Command{
			commands.RunCommand(&logger),
			commands.ScheduleCommand(&logger),
			commands.PreflightCommand(&logger),
			commands.HistoryCommand(&logger),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.Error().Err(err).Msg("Application error")
		os.Exit(1)
	}
}
