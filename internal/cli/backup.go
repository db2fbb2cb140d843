package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/klauern/lexmerge/internal/backup"
	"github.com/klauern/lexmerge/internal/ui"
	"github.com/klauern/lexmerge/internal/util"
)

// errBackupsDisabled is returned by backup subcommands when backups are
// switched off in the configuration.
var errBackupsDisabled = errors.New("backups are disabled (backup.enabled: false)")

func backupCommand() *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Manage backups of overwritten documents",
		Description: `Every document overwritten by merge or batch is first copied to the
   backup directory. Use these commands to inspect, restore and prune them.`,
		Commands: []*cli.Command{
			backupListCommand(),
			backupRestoreCommand(),
			backupCleanCommand(),
			backupStatsCommand(),
		},
		Action: listBackups,
		Flags:  listFlags(),
	}
}

func listFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "file",
			Usage: "Only list backups of `FILE`",
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Usage:   "Show at most `N` backups",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: table, json or yaml",
			Value:   "table",
		},
	}
}

func backupListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List backups, newest first",
		Flags:   listFlags(),
		Action:  listBackups,
	}
}

func listBackups(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	switch format {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
	}

	store := configFrom(ctx).BackupStore()
	if store == nil {
		return errBackupsDisabled
	}
	source := cmd.String("file")
	if source != "" {
		source = util.ExpandHome(source)
	}
	backups, err := store.List(source)
	if err != nil {
		return err
	}
	if backups == nil {
		backups = []backup.Metadata{}
	}
	if limit := int(cmd.Int("limit")); limit > 0 && len(backups) > limit {
		backups = backups[:limit]
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(backups, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(backups)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	default:
		return outputBackupsTable(backups)
	}
}

func outputBackupsTable(backups []backup.Metadata) error {
	if len(backups) == 0 {
		fmt.Println("No backups found")
		return nil
	}
	table := ui.NewTable("ID", "CREATED", "SIZE", "SOURCE")
	for _, b := range backups {
		table.StyledRow([]func(...any) string{ui.Info},
			b.ID, b.CreatedAt.Local().Format(time.DateTime), formatSize(b.Size), b.SourcePath)
	}
	return table.Write(os.Stdout)
}

func backupRestoreCommand() *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "Restore a backup",
		UsageText: "lexmerge backup restore <id> [target]",
		Description: `Restore writes the backed up content to target, or to the file it was
   taken from when no target is given. The content is verified first.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() < 1 || args.Len() > 2 {
				return errors.New("restore requires a backup id and an optional target")
			}
			store := configFrom(ctx).BackupStore()
			if store == nil {
				return errBackupsDisabled
			}

			id := args.Get(0)
			meta, err := store.Get(id)
			if err != nil {
				return err
			}
			target := meta.SourcePath
			if t := args.Get(1); t != "" {
				target = util.ExpandHome(t)
			}
			if err := store.Restore(id, target); err != nil {
				return err
			}
			fmt.Println(ui.StatusSuccess(fmt.Sprintf("Restored %s to %s", id, target)))
			return nil
		},
	}
}

func backupCleanCommand() *cli.Command {
	return &cli.Command{
		Name:  "clean",
		Usage: "Delete backups beyond the retention limits",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show what would be deleted",
			},
			&cli.IntFlag{
				Name:  "keep",
				Usage: "Keep at most `N` backups per file (default: backup.max_backups)",
			},
			&cli.DurationFlag{
				Name:  "max-age",
				Usage: "Delete backups older than `AGE` (default: backup.max_age)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := configFrom(ctx)
			store := cfg.BackupStore()
			if store == nil {
				return errBackupsDisabled
			}
			opts := cfg.CleanupOptions()
			opts.DryRun = cmd.Bool("dry-run")
			if cmd.IsSet("keep") {
				opts.MaxBackups = int(cmd.Int("keep"))
			}
			if cmd.IsSet("max-age") {
				opts.MaxAge = cmd.Duration("max-age")
			}

			deleted, err := store.Cleanup(opts)
			if err != nil {
				return err
			}
			verb := "Deleted"
			if opts.DryRun {
				verb = "Would delete"
			}
			for _, id := range deleted {
				fmt.Printf("  %s %s\n", ui.Dim(verb), id)
			}
			fmt.Printf("%s %d backup(s)\n", verb, len(deleted))
			return nil
		},
	}
}

func backupStatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show backup storage statistics",
		Action: func(ctx context.Context, _ *cli.Command) error {
			store := configFrom(ctx).BackupStore()
			if store == nil {
				return errBackupsDisabled
			}
			stats, err := store.Stats()
			if err != nil {
				return err
			}
			fmt.Printf("Location:  %s\n", store.Dir())
			fmt.Printf("Backups:   %d of %d files\n", stats.TotalBackups, len(stats.Sources))
			fmt.Printf("Size:      %s (%s stored)\n", formatSize(stats.TotalSize), formatSize(stats.StoredSize))
			if stats.TotalBackups > 0 {
				fmt.Printf("Oldest:    %s\n", stats.OldestBackup.Local().Format(time.DateTime))
				fmt.Printf("Newest:    %s\n", stats.NewestBackup.Local().Format(time.DateTime))
			}
			return nil
		},
	}
}

// formatSize formats bytes into a human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
