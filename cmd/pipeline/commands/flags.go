package commands

import "github.com/urfave/cli/v2"

// configFlag is shared by every command that reads the pipeline config file.
func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the pipeline YAML config file",
		EnvVars: []string{"PIPELINE_CONFIG"},
	}
}
