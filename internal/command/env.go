package command

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"slices"

	"github.com/urfave/cli/v2"

	"github.com/DjonatanS/dasida/internal/envfile"
)

func fileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "file",
		Aliases: []string{"f"},
		Usage:   "Env file path",
		Value:   envfile.DefaultFilename,
	}
}

func (r *runner) envCommand() *cli.Command {
	return &cli.Command{
		Name:  "env",
		Usage: "Read and write env files",
		Subcommands: []*cli.Command{
			{
				Name:  "read",
				Usage: "Print an env file as sorted KEY=VALUE lines",
				Flags: []cli.Flag{fileFlag()},
				Action: func(c *cli.Context) error {
					env, err := envfile.Read(c.String("file"))
					if err != nil {
						return err
					}
					for _, key := range slices.Sorted(maps.Keys(env)) {
						fmt.Fprintf(r.stdout, "%s=%s\n", key, env[key])
					}
					return nil
				},
			},
			{
				Name:      "write",
				Usage:     "Write KEY=VALUE pairs to an env file",
				ArgsUsage: "KEY=VALUE...",
				Flags: []cli.Flag{
					fileFlag(),
					&cli.BoolFlag{
						Name:  "merge",
						Usage: "Keep entries already in the file that are not overwritten",
					},
				},
				Action: func(c *cli.Context) error {
					pairs, err := envfile.ParsePairs(c.Args().Slice())
					if err != nil {
						return err
					}

					env := pairs
					if c.Bool("merge") {
						existing, err := envfile.Read(c.String("file"))
						if err != nil && !errors.Is(err, fs.ErrNotExist) {
							return err
						}
						if existing != nil {
							maps.Copy(existing, pairs)
							env = existing
						}
					}

					if err := envfile.Write(env, c.String("file")); err != nil {
						return err
					}
					r.logger.Info("Env file written", "path", c.String("file"), "entries", len(env))
					return nil
				},
			},
		},
	}
}
