package commands

import (
	"database/sql"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"github.com/web3data/pipeline/internal/dao/rundao"
	"github.com/web3data/pipeline/internal/di"
	errs "github.com/web3data/pipeline/internal/errors"
	"github.com/web3data/pipeline/internal/secrets"
)

// HistoryCommand returns the history command for listing recorded runs
func HistoryCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent pipeline runs",
		Description: `Lists the most recent runs recorded in the pipeline_runs table,
newest first. Requires POSTGRES_URI from the configured secret source.

Examples:
  # Last 20 runs
  pipeline history

  # Last 5 runs
  pipeline history --limit 5`,
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of runs to list",
				Value:   20,
			},
		},
		Action: func(c *cli.Context) error {
			return historyAction(c, logger)
		},
	}
}

func historyAction(c *cli.Context, logger *zerolog.Logger) error {
	container, err := di.New(di.WithConfigPath(c.String("config")))
	if err != nil {
		return err
	}

	var source secrets.Source
	if err := container.Invoke(func(s secrets.Source) { source = s }); err != nil {
		return err
	}

	set, err := source.Load(c.Context)
	if err != nil {
		return err
	}
	uri := set.Get(secrets.PostgresURI)
	if uri == "" {
		return fmt.Errorf("%w: %s is not set", errs.ErrNoPostgres, secrets.PostgresURI)
	}

	db, err := sql.Open("postgres", uri)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}
	defer db.Close()

	records, err := rundao.New(db).List(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No runs recorded yet")
		return nil
	}

	printHistory(records)
	return nil
}

func printHistory(records []rundao.Record) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "RUN ID\tTRIGGER\tSTATUS\tSTARTED\tDURATION\tJOBS\tPOSTS\tANALYZED\tERROR")
	for _, r := range records {
		started := time.Unix(r.CreatedAt, 0).UTC().Format(time.RFC3339)

		duration := "-"
		if r.FinishedAt != nil {
			duration = (time.Duration(*r.FinishedAt-r.CreatedAt) * time.Second).String()
		}

		errMsg := ""
		if r.ErrorMsg != nil {
			errMsg = *r.ErrorMsg
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID, r.Trigger, r.Status, started, duration,
			r.JobsInserted, r.PostsInserted, r.PostsAnalyzed, errMsg)
	}
}
