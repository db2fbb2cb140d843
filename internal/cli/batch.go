package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/klauern/lexmerge/internal/backup"
	"github.com/klauern/lexmerge/internal/batch"
	"github.com/klauern/lexmerge/internal/logging"
	"github.com/klauern/lexmerge/internal/merge"
	"github.com/klauern/lexmerge/internal/progress"
	"github.com/klauern/lexmerge/internal/report"
	"github.com/klauern/lexmerge/internal/ui"
	"github.com/klauern/lexmerge/internal/util"
)

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "Merge every document present in three directories",
		UsageText: "lexmerge batch [options] --ancestor <dir> --ours <dir> --theirs <dir> --output <dir>",
		Description: `Merge the documents found under the same relative path in the ancestor,
   ours and theirs directories. Documents run concurrently; a document that
   fails to merge does not stop the others.

   Examples:
     lexmerge batch --ancestor base --ours mine --theirs yours --output merged
     lexmerge batch --ancestor base --ours mine --theirs yours --in-place -j 4`,
		Flags: append(append([]cli.Flag{
			&cli.StringFlag{
				Name:     "ancestor",
				Usage:    "Directory holding the common ancestors",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "ours",
				Usage:    "Directory holding our edits",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "theirs",
				Usage:    "Directory holding their edits",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory receiving the merged documents",
			},
			&cli.BoolFlag{
				Name:  "in-place",
				Usage: "Overwrite the documents in the ours directory",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Number of concurrent merges (default: number of CPUs)",
			},
			&cli.StringFlag{
				Name:  "pattern",
				Usage: "Only merge files whose base name matches `GLOB`",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Do not show a progress bar",
			},
			&cli.BoolFlag{
				Name:  "no-notes",
				Usage: "Do not write notes files next to the outputs",
			},
		}, strategyFlags()...), reportFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := configFrom(ctx)
			if cmd.IsSet("workers") {
				cfg.Batch.Workers = int(cmd.Int("workers"))
			}
			if cmd.IsSet("pattern") {
				cfg.Batch.Pattern = cmd.String("pattern")
			}
			if cmd.Bool("no-progress") {
				cfg.Batch.Progress = false
			}
			if cmd.Bool("no-notes") {
				cfg.Merge.WriteNotes = false
			}
			if err := applyFlags(cmd, cfg); err != nil {
				return err
			}

			outDir := cmd.String("output")
			switch {
			case cmd.Bool("in-place") && outDir != "":
				return errors.New("--in-place and --output are mutually exclusive")
			case cmd.Bool("in-place"):
				outDir = cmd.String("ours")
			case outDir == "":
				return errors.New("batch requires --output or --in-place")
			}

			reg, err := cfg.Registry()
			if err != nil {
				return fmt.Errorf("load strategies: %w", err)
			}

			jobs, missing, err := batch.FromDirs(
				util.ExpandHome(cmd.String("ancestor")),
				util.ExpandHome(cmd.String("ours")),
				util.ExpandHome(cmd.String("theirs")),
				util.ExpandHome(outDir),
				cfg.MatchBatchFile,
			)
			if err != nil {
				return err
			}
			for _, name := range missing {
				fmt.Fprintln(os.Stderr, ui.StatusSkipped(name+": not present in all three directories"))
			}
			if len(jobs) == 0 {
				fmt.Println("No documents to merge")
				return nil
			}

			logger := logging.FromContext(ctx)
			format := cfg.GetFormat()
			bar := progress.New(progress.Options{
				Max:         int64(len(jobs)),
				Description: "Merging",
				Writer:      os.Stderr,
				Disabled:    !cfg.Batch.Progress || format != report.FormatText,
				Logger:      logger,
			})

			opts := batch.Options{
				Workers: cfg.Batch.Workers,
				Merge: merge.Options{
					ReportDefaultStrategy: cfg.Merge.ReportDefaultStrategy,
					Logger:                logger,
				},
				Indent: cfg.Output.Indent,
				Notes:  cfg.Merge.WriteNotes,
				Progress: func(o batch.Outcome) {
					bar.Describe(o.Job.Name)
					_ = bar.Increment()
				},
			}
			store := cfg.BackupStore()
			if store != nil {
				opts.BeforeWrite = func(path string) error {
					_, err := store.Create(path, backup.Options{Description: "before batch merge"})
					return err
				}
			}

			outcomes, runErr := batch.Run(ctx, reg, jobs, opts)
			_ = bar.Finish()

			if store != nil {
				if _, err := store.Cleanup(cfg.CleanupOptions()); err != nil {
					logger.Warn("backup cleanup failed", logging.Err(err))
				}
			}

			if err := writeBatchReport(format, outcomes); err != nil {
				return err
			}
			if runErr != nil {
				return runErr
			}

			totals := batch.Summarize(outcomes)
			if totals.Failed > 0 {
				return fmt.Errorf("%d of %d documents failed: %w", totals.Failed, len(outcomes), batch.Errors(outcomes))
			}
			if cfg.Merge.FailOnConflict && totals.Conflicted > 0 {
				return fmt.Errorf("%w in %d documents", errConflicts, totals.Conflicted)
			}
			return nil
		},
	}
}

// writeBatchReport prints a table of outcomes for text output, or the full
// per-document reports for structured formats.
func writeBatchReport(format report.Format, outcomes []batch.Outcome) error {
	if format != report.FormatText {
		summaries := make([]report.Summary, 0, len(outcomes))
		for _, o := range outcomes {
			if o.Result != nil {
				summaries = append(summaries, report.Summarize(o.Job.Name, o.Result.Records))
			}
		}
		return report.Write(os.Stdout, format, summaries...)
	}

	table := ui.NewTable("DOCUMENT", "STATUS", "CONFLICTS", "WARNINGS", "TIME")
	for _, o := range outcomes {
		conflicts, warnings := "-", "-"
		if o.Result != nil {
			conflicts = strconv.Itoa(len(o.Result.Conflicts()))
			warnings = strconv.Itoa(len(o.Result.Warnings()))
		}
		table.StyledRow(
			[]func(...any) string{nil, statusStyle(o.Status())},
			o.Job.Name, string(o.Status()), conflicts, warnings, o.Duration.Round(time.Millisecond).String(),
		)
	}
	if err := table.Write(os.Stdout); err != nil {
		return err
	}

	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintln(os.Stderr, ui.StatusError(fmt.Sprintf("%s: %v", o.Job.Name, o.Err)))
		}
	}

	t := batch.Summarize(outcomes)
	fmt.Printf("\n%d merged cleanly, %d with conflicts, %d failed (%d records)\n",
		t.Clean, t.Conflicted, t.Failed, t.Records)
	return nil
}

func statusStyle(s batch.Status) func(...any) string {
	switch s {
	case batch.StatusClean:
		return ui.Success
	case batch.StatusConflicted:
		return ui.Warning
	default:
		return ui.Error
	}
}
