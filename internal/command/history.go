package command

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/DjonatanS/dasida/internal/database"
)

func (r *runner) historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent delete-objects runs from the journal",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Number of runs to show",
				Value: 20,
			},
			&cli.Int64Flag{
				Name:  "run",
				Usage: "Show the keys and errors of a single run",
			},
		},
		Action: func(c *cli.Context) error {
			s, err := r.resolve(c)
			if err != nil {
				return err
			}
			if s.journalPath == "" {
				return errors.New("no journal configured: set journalPath or --journal")
			}

			db, err := database.NewDB(s.journalPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if runID := c.Int64("run"); runID != 0 {
				return r.showRun(db, runID)
			}

			runs, err := db.ListDeleteRuns(c.Int("limit"))
			if err != nil {
				return err
			}
			return renderRuns(r.stdout, runs)
		},
	}
}

func (r *runner) showRun(db *database.DB, runID int64) error {
	keys, err := db.GetDeletedKeys(runID)
	if err != nil {
		return err
	}
	errs, err := db.GetDeleteErrors(runID)
	if err != nil {
		return err
	}

	for _, key := range keys {
		fmt.Fprintf(r.stdout, "deleted %s\n", key)
	}
	for _, e := range errs {
		fmt.Fprintf(r.stdout, "failed %s: %s %s\n", e.Key, e.Code, e.Message)
	}
	return nil
}
