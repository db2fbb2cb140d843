package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/klauern/lexmerge/internal/config"
	"github.com/klauern/lexmerge/internal/ui"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Display current configuration",
		Description: `Print the effective configuration: the config file merged over the
   defaults, with LEXMERGE_* environment variables applied.`,
		Action: func(ctx context.Context, _ *cli.Command) error {
			cfg := configFrom(ctx)
			data, err := cfg.YAML()
			if err != nil {
				return err
			}
			source := config.FilePath()
			if !config.Exists() {
				source += " (not found, using defaults)"
			}
			fmt.Printf("# %s\n", source)
			fmt.Print(string(data))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "path",
				Usage: "Print the config file location",
				Action: func(_ context.Context, _ *cli.Command) error {
					fmt.Println(config.FilePath())
					return nil
				},
			},
			{
				Name:  "init",
				Usage: "Write a config file with the default settings",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing config file",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					path := config.FilePath()
					if config.Exists() && !cmd.Bool("force") {
						return fmt.Errorf("%s already exists (use --force to overwrite)", path)
					}
					if err := config.Default().Save(); err != nil {
						return fmt.Errorf("write %s: %w", path, err)
					}
					fmt.Println(ui.StatusSuccess("Wrote " + path))
					return nil
				},
			},
		},
	}
}
