package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/klauern/lexmerge/internal/backup"
	"github.com/klauern/lexmerge/internal/codec"
	"github.com/klauern/lexmerge/internal/config"
	"github.com/klauern/lexmerge/internal/logging"
	"github.com/klauern/lexmerge/internal/merge"
	"github.com/klauern/lexmerge/internal/report"
	"github.com/klauern/lexmerge/internal/tree"
	"github.com/klauern/lexmerge/internal/ui"
	"github.com/klauern/lexmerge/internal/util"
)

// errConflicts is returned with --fail-on-conflict when a merge recorded
// conflicts.
var errConflicts = errors.New("unresolved conflicts")

// strategyFlags select the strategy registry. They are shared by merge,
// batch, check and strategies.
func strategyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "strategies",
			Aliases: []string{"s"},
			Usage:   "Read element strategies from a TOML `FILE`",
		},
		&cli.StringFlag{
			Name:  "preset",
			Usage: "Use a built-in strategy preset (lexicon, empty)",
		},
	}
}

func reportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Report format: text, json or yaml",
		},
		&cli.BoolFlag{
			Name:  "fail-on-conflict",
			Usage: "Exit with an error when any conflict is recorded",
		},
		&cli.BoolFlag{
			Name:  "report-default-strategy",
			Usage: "Warn about elements merged without a registered strategy",
		},
		&cli.BoolFlag{
			Name:  "no-backup",
			Usage: "Do not back up files before overwriting them",
		},
	}
}

// applyFlags overrides configuration with the flags given on the command
// line and validates the result.
func applyFlags(cmd *cli.Command, cfg *config.Config) error {
	if cmd.IsSet("strategies") {
		cfg.Merge.Strategies = cmd.String("strategies")
	}
	if cmd.IsSet("preset") {
		cfg.Merge.Preset = cmd.String("preset")
		cfg.Merge.Strategies = ""
	}
	if cmd.IsSet("format") {
		cfg.Output.Format = cmd.String("format")
	}
	if cmd.IsSet("fail-on-conflict") {
		cfg.Merge.FailOnConflict = cmd.Bool("fail-on-conflict")
	}
	if cmd.IsSet("report-default-strategy") {
		cfg.Merge.ReportDefaultStrategy = cmd.Bool("report-default-strategy")
	}
	if cmd.IsSet("no-backup") {
		cfg.Backup.Enabled = !cmd.Bool("no-backup")
	}
	return cfg.Validate()
}

func mergeCommand() *cli.Command {
	return &cli.Command{
		Name:      "merge",
		Usage:     "Merge two edits of a document against their common ancestor",
		UsageText: "lexmerge merge [options] <ancestor> <ours> <theirs>",
		Description: `Merge ours and theirs against ancestor and write the merged document.

   Conflicts never stop a merge: each one is resolved by the element's policy
   and recorded in the report. With --output the records are also written to
   a notes file next to the merged document.

   Examples:
     lexmerge merge base.lift mine.lift yours.lift > merged.lift
     lexmerge merge -o merged.lift --format json base.lift mine.lift yours.lift
     lexmerge merge --in-place --fail-on-conflict base.lift mine.lift yours.lift`,
		Flags: append(append([]cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the merged document to `FILE` (default: stdout)",
			},
			&cli.BoolFlag{
				Name:  "in-place",
				Usage: "Overwrite ours with the merged document",
			},
			&cli.StringFlag{
				Name:  "notes",
				Usage: "Write merge notes to `FILE`",
			},
			&cli.BoolFlag{
				Name:  "no-notes",
				Usage: "Do not write a notes file next to the output",
			},
			&cli.BoolFlag{
				Name:  "details",
				Usage: "Show ancestor, ours and theirs of each conflict side by side (text format)",
			},
		}, strategyFlags()...), reportFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() != 3 {
				return errors.New("merge requires exactly 3 arguments: <ancestor> <ours> <theirs>")
			}

			cfg := configFrom(ctx)
			if err := applyFlags(cmd, cfg); err != nil {
				return err
			}
			if cmd.Bool("no-notes") {
				cfg.Merge.WriteNotes = false
			}

			output := cmd.String("output")
			if cmd.Bool("in-place") {
				if output != "" {
					return errors.New("--in-place and --output are mutually exclusive")
				}
				output = args.Get(1)
			}
			output = util.ExpandHome(output)

			return runMerge(ctx, cfg, mergeTarget{
				ancestor: args.Get(0),
				ours:     args.Get(1),
				theirs:   args.Get(2),
				output:   output,
				notes:    util.ExpandHome(cmd.String("notes")),
				details:  cmd.Bool("details"),
			})
		},
	}
}

type mergeTarget struct {
	ancestor, ours, theirs string
	output                 string
	notes                  string
	details                bool
}

func runMerge(ctx context.Context, cfg *config.Config, t mergeTarget) error {
	logger := logging.FromContext(ctx)

	reg, err := cfg.Registry()
	if err != nil {
		return fmt.Errorf("load strategies: %w", err)
	}

	ancestor, err := readDocument(tree.RoleAncestor, t.ancestor)
	if err != nil {
		return err
	}
	ours, err := readDocument(tree.RoleOurs, t.ours)
	if err != nil {
		return err
	}
	theirs, err := readDocument(tree.RoleTheirs, t.theirs)
	if err != nil {
		return err
	}

	res, err := merge.Merge(reg, ancestor, ours, theirs, merge.Options{
		ReportDefaultStrategy: cfg.Merge.ReportDefaultStrategy,
		Logger:                logger,
	})
	if err != nil {
		return err
	}

	notes := t.notes
	if notes == "" && t.output != "" && cfg.Merge.WriteNotes && len(res.Records) > 0 {
		notes = util.NotesPath(t.output)
	}

	// A notes file left by an earlier merge into the same output no longer
	// describes it.
	var stale string
	if t.output != "" {
		if def := util.NotesPath(t.output); def != notes {
			stale = def
		}
	}

	store := cfg.BackupStore()
	for _, path := range []string{t.output, notes, stale} {
		if path == "" || store == nil {
			continue
		}
		meta, err := store.CreateIfExists(path, backup.Options{Description: "before merge of " + t.ours})
		if err != nil {
			return fmt.Errorf("back up %s: %w", path, err)
		}
		if meta != nil {
			logger.Info("backed up", logging.Path(path), slog.String("backup", meta.ID))
		}
	}

	// The merged document owns stdout when no output file is given.
	reportOut := io.Writer(os.Stdout)
	if t.output == "" {
		if err := codec.Encode(os.Stdout, res.Root, codec.Indent(cfg.Output.Indent)); err != nil {
			return fmt.Errorf("write merged document: %w", err)
		}
		reportOut = os.Stderr
	} else if err := codec.EncodeFile(t.output, res.Root, codec.Indent(cfg.Output.Indent)); err != nil {
		return err
	}
	if notes != "" {
		if err := codec.EncodeFile(notes, res.Notes(), codec.Indent("  ")); err != nil {
			return err
		}
	}
	if stale != "" {
		switch err := os.Remove(stale); {
		case err == nil:
			logger.Info("removed stale notes", logging.Path(stale))
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("remove stale notes: %w", err)
		}
	}

	if store != nil {
		if deleted, err := store.Cleanup(cfg.CleanupOptions()); err != nil {
			logger.Warn("backup cleanup failed", logging.Err(err))
		} else if len(deleted) > 0 {
			logger.Info("cleaned up old backups", logging.Count(len(deleted)))
		}
	}

	if err := report.Write(reportOut, cfg.GetFormat(), report.Summarize(t.ours, res.Records)); err != nil {
		return err
	}
	if t.details && cfg.GetFormat() == report.FormatText {
		f, _ := reportOut.(*os.File)
		if err := report.WriteDetails(reportOut, ui.TerminalWidth(f, 100), res.Records); err != nil {
			return err
		}
	}
	if cfg.Merge.FailOnConflict && res.HasConflicts() {
		return fmt.Errorf("%w: %d recorded", errConflicts, len(res.Conflicts()))
	}
	return nil
}

// readDocument decodes one snapshot. A document that cannot be read is a
// precondition failure of the merge.
func readDocument(role tree.Role, path string) (tree.Document, error) {
	root, err := codec.DecodeFile(util.ExpandHome(path))
	if err != nil {
		return tree.Document{}, &merge.PreconditionError{Role: role, Name: path, Err: err}
	}
	return tree.Document{Role: role, Root: root, Name: path}, nil
}
