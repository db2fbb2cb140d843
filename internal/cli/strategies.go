package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/klauern/lexmerge/internal/strategy"
	"github.com/klauern/lexmerge/internal/ui"
)

func strategiesCommand() *cli.Command {
	return &cli.Command{
		Name:      "strategies",
		Usage:     "List the element strategies a merge would use",
		UsageText: "lexmerge strategies [options]",
		Description: `Print the registered element strategies: how each element is matched
   across revisions, which policy settles its conflicts and whether it is
   replaced as a whole.

   Examples:
     lexmerge strategies
     lexmerge strategies --strategies custom.toml
     lexmerge strategies --policies`,
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "policies",
				Usage: "Describe the available conflict policies instead",
			},
		}, strategyFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("policies") {
				return writePolicies()
			}

			cfg := configFrom(ctx)
			if err := applyFlags(cmd, cfg); err != nil {
				return err
			}
			reg, err := cfg.Registry()
			if err != nil {
				return fmt.Errorf("load strategies: %w", err)
			}

			source := "preset " + cfg.Merge.Preset
			if cfg.Merge.Strategies != "" {
				source = cfg.Merge.Strategies
			}
			fmt.Printf("%s (%s, %d elements)\n\n", ui.Bold("Strategies"), source, reg.Len())
			return writeRegistry(reg)
		},
	}
}

func writeRegistry(reg *strategy.Registry) error {
	table := ui.NewTable("ELEMENT", "FINDER", "POLICY", "ATOMIC")
	for _, tag := range reg.Tags() {
		s, _ := reg.Resolve(tag)
		table.Row(tag, s.Finder.String(), s.Policy.String(), strconv.FormatBool(s.Atomic))
	}
	def := reg.Default()
	table.StyledRow([]func(...any) string{ui.Dim},
		"(default)", def.Finder.String(), def.Policy.String(), strconv.FormatBool(def.Atomic))
	return table.Write(os.Stdout)
}

func writePolicies() error {
	table := ui.NewTable("POLICY", "DESCRIPTION")
	for _, p := range strategy.AllPolicies() {
		table.Row(p.String(), p.Description())
	}
	return table.Write(os.Stdout)
}
