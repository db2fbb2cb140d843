package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/klauern/lexmerge/internal/codec"
	"github.com/klauern/lexmerge/internal/strategy"
	"github.com/klauern/lexmerge/internal/tree"
	"github.com/klauern/lexmerge/internal/ui"
	"github.com/klauern/lexmerge/internal/util"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Check that documents can be merged",
		UsageText: "lexmerge check [options] <file>...",
		Description: `Parse each document and look for elements whose identity key is not
   unique among their siblings. Such duplicates merge by first match and are
   reported as warnings by merge.

   Examples:
     lexmerge check dictionary.lift
     lexmerge check --strategies custom.toml *.lift`,
		Flags: strategyFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() == 0 {
				return errors.New("check requires at least one file")
			}

			cfg := configFrom(ctx)
			if err := applyFlags(cmd, cfg); err != nil {
				return err
			}
			reg, err := cfg.Registry()
			if err != nil {
				return fmt.Errorf("load strategies: %w", err)
			}

			failed := 0
			for _, path := range args.Slice() {
				root, err := codec.DecodeFile(util.ExpandHome(path))
				if err != nil {
					failed++
					fmt.Println(ui.StatusError(err.Error()))
					continue
				}
				dups := findDuplicates(reg, root)
				msg := fmt.Sprintf("%s: <%s>, %d nodes", path, root.Tag(), root.Size())
				if len(dups) == 0 {
					fmt.Println(ui.StatusSuccess(msg))
					continue
				}
				fmt.Println(ui.StatusWarning(fmt.Sprintf("%s, %d duplicate keys", msg, len(dups))))
				for _, d := range dups {
					fmt.Printf("    %s %s\n", ui.Info(d.path.String()), d.message)
				}
			}
			if failed > 0 {
				fmt.Fprintf(os.Stderr, "%d of %d documents could not be read\n", failed, args.Len())
				return fmt.Errorf("%d documents failed the check", failed)
			}
			return nil
		},
	}
}

type duplicate struct {
	path    tree.Path
	message string
}

// findDuplicates reports every child whose identity key, under the strategy
// registered for its tag, repeats an earlier sibling's key.
func findDuplicates(reg *strategy.Registry, root *tree.Node) []duplicate {
	var dups []duplicate
	root.Walk(func(p tree.Path, n *tree.Node) bool {
		seen := make(map[string]bool)
		ordinals := make(map[string]int)
		for _, c := range n.Children() {
			ordinals[c.Tag()]++
			if c.IsText() {
				continue
			}
			s, _ := reg.Resolve(c.Tag())
			key, ok := s.Finder.KeyOf(c)
			if !ok {
				continue
			}
			k := c.Tag() + "\x00" + key
			if seen[k] {
				dups = append(dups, duplicate{
					path:    p.Child(c.Tag(), ordinals[c.Tag()]),
					message: s.Finder.DuplicateMessage(c),
				})
			}
			seen[k] = true
		}
		return true
	})
	return dups
}
