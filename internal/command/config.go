package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/DjonatanS/dasida/internal/config"
	"github.com/DjonatanS/dasida/internal/interfaces"
	"github.com/DjonatanS/dasida/internal/storage"
)

func (r *runner) configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the configuration file",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write a configuration file with example providers",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing file"},
				},
				Action: func(c *cli.Context) error {
					path := c.String("config")
					if _, err := os.Stat(path); err == nil && !c.Bool("force") {
						return fmt.Errorf("%s already exists; use --force to overwrite", path)
					}
					if err := config.SaveDefaultConfig(path); err != nil {
						return fmt.Errorf("error generating configuration file: %w", err)
					}
					r.logger.Info("Configuration file generated", "path", path)
					return nil
				},
			},
			{
				Name:  "check",
				Usage: "Validate the configuration file and build every provider",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "bucket",
						Usage: "Also list one page of this bucket through every provider",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.LoadConfig(c.String("config"))
					if err != nil {
						return fmt.Errorf("error loading configuration: %w", err)
					}

					factory, err := storage.NewFactory(c.Context, cfg, r.logger)
					if err != nil {
						return err
					}
					defer factory.Close()

					bucket := c.String("bucket")
					failed := 0
					for _, id := range factory.IDs() {
						line := id
						if id == cfg.DefaultProvider {
							line += " (default)"
						}
						if bucket != "" {
							if err := r.checkBucket(c, factory, id, bucket); err != nil {
								line += ": " + err.Error()
								failed++
							} else {
								line += ": ok"
							}
						}
						fmt.Fprintln(r.stdout, line)
					}

					if failed > 0 {
						return fmt.Errorf("%d of %d providers cannot list %s", failed, len(factory.IDs()), bucket)
					}
					return nil
				},
			},
		},
	}
}

// checkBucket lists a single page of bucket through provider id.
func (r *runner) checkBucket(c *cli.Context, factory *storage.Factory, id, bucket string) error {
	store, err := factory.GetProvider(id)
	if err != nil {
		return err
	}

	_, err = store.ListPage(c.Context, interfaces.ListPageInput{Bucket: bucket})
	if err != nil {
		r.logger.Debug("Provider check failed", "provider_id", id, "bucket", bucket, "error", err)
	}
	return err
}
