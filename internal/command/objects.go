package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/DjonatanS/dasida/internal/database"
	"github.com/DjonatanS/dasida/internal/interfaces"
	"github.com/DjonatanS/dasida/internal/objects"
)

func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "bucket",
			Aliases:  []string{"b"},
			Usage:    "Bucket Name.",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "prefix",
			Usage: "Object Prefix. Example: 'dataset_a/daily'",
		},
		&cli.StringFlag{
			Name:  "pattern",
			Usage: "Pattern, matched against the end of the key. Example: '2022-*-*-file.csv'",
		},
		&cli.StringFlag{
			Name:  "profile",
			Usage: "AWS Profile Name.",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn or error",
		},
	}
}

// displayPath joins the non-empty parts of a selection for messages.
func displayPath(bucket, prefix, pattern string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{bucket, prefix, pattern} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "/")
}

func (r *runner) request(c *cli.Context, s settings, store interfaces.ObjectStore) objects.Request {
	return objects.Request{
		Bucket:  c.String("bucket"),
		Prefix:  c.String("prefix"),
		Pattern: c.String("pattern"),
		Store:   store,
		Session: s.session,
		Logger:  r.logger.With("component", "objects"),
	}
}

func (r *runner) listObjectsCommand() *cli.Command {
	return &cli.Command{
		Name:  "list-objects",
		Usage:  "List objects under a prefix that match a pattern",
		Flags:  selectionFlags(),
		Before: r.commandBefore,
		Action: func(c *cli.Context) error {
			s, err := r.resolve(c)
			if err != nil {
				return err
			}

			store, err := r.open(c.Context, s.session)
			if err != nil {
				return err
			}
			defer store.Close()

			contents, err := objects.ListObjects(c.Context, r.request(c, s, store))
			if err != nil {
				return err
			}

			fmt.Fprintf(r.stdout, "ls %s\n", displayPath(c.String("bucket"), c.String("prefix"), c.String("pattern")))
			return renderObjects(r.stdout, contents)
		},
	}
}

func (r *runner) deleteObjectsCommand() *cli.Command {
	return &cli.Command{
		Name:  "delete-objects",
		Usage:  "Delete every object under a prefix that matches a pattern",
		Flags:  selectionFlags(),
		Before: r.commandBefore,
		Action: func(c *cli.Context) error {
			s, err := r.resolve(c)
			if err != nil {
				return err
			}

			store, err := r.open(c.Context, s.session)
			if err != nil {
				return err
			}
			defer store.Close()

			req := r.request(c, s, store)
			started := time.Now()

			result, err := objects.DeleteObjects(c.Context, req)
			if err != nil {
				return err
			}

			path := displayPath(req.Bucket, req.Prefix, req.Pattern)
			fmt.Fprintf(r.stdout, "total %d objects are deleted from %s!\n", len(result.Deleted), path)
			for _, e := range result.Errors {
				fmt.Fprintf(r.stdout, "failed %s: %s %s\n", e.Key, e.Code, e.Message)
			}

			if s.journalPath != "" {
				r.record(s, req, started, result)
			}
			return nil
		},
	}
}

// record writes a finished run to the journal. The deletion already
// happened, so failures are logged rather than returned.
func (r *runner) record(s settings, req objects.Request, started time.Time, result *interfaces.DeleteResult) {
	db, err := database.NewDB(s.journalPath)
	if err != nil {
		r.logger.Warn("Could not open journal", "path", s.journalPath, "error", err)
		return
	}
	defer db.Close()

	run := &database.DeleteRun{
		Provider:  s.session.ProviderID,
		Bucket:    req.Bucket,
		Prefix:    req.Prefix,
		Pattern:   req.Pattern,
		StartedAt: started,
		Deleted:   result.Deleted,
	}
	for _, e := range result.Errors {
		run.Errors = append(run.Errors, database.DeleteError{Key: e.Key, Code: e.Code, Message: e.Message})
	}

	id, err := db.RecordDeletion(run)
	if err != nil {
		r.logger.Warn("Could not record deletion", "path", s.journalPath, "error", err)
		return
	}
	r.logger.Debug("Recorded deletion", "run_id", id)
}
