package commands

import (
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"github.com/web3data/pipeline/internal/di"
	"github.com/web3data/pipeline/internal/preflight"
	"github.com/web3data/pipeline/internal/secrets"
)

// PreflightCommand returns the preflight command for validating credentials
// without running any collection
func PreflightCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "preflight",
		Usage: "Validate the seven required credentials without collecting",
		Description: `Loads the secret set from the configured source and checks every
required credential, reporting each one individually before failing.
No collection task runs.

Exits non-zero if any credential is missing.`,
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: func(c *cli.Context) error {
			return preflightAction(c, logger)
		},
	}
}

func preflightAction(c *cli.Context, logger *zerolog.Logger) error {
	container, err := di.New(di.WithConfigPath(c.String("config")))
	if err != nil {
		return err
	}

	var source secrets.Source
	if err := container.Invoke(func(s secrets.Source) { source = s }); err != nil {
		return err
	}

	_, report, err := preflight.Run(c.Context, source)
	if err != nil {
		return err
	}

	logger.Info().Int("secrets", len(report.Checks)).Msg("All required secrets are set")
	return nil
}
