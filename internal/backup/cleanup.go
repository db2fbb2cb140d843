package backup

import (
	"fmt"
	"slices"
	"time"
)

// CleanupOptions configures backup cleanup behavior
type CleanupOptions struct {
	// MaxBackups limits the number of backups to keep per source file (0 = unlimited)
	MaxBackups int

	// MaxAge is the maximum age of backups to keep (0 = unlimited)
	MaxAge time.Duration

	// KeepAtLeastOne ensures at least one backup is kept per source file
	KeepAtLeastOne bool

	// DryRun previews what would be deleted without actually deleting
	DryRun bool
}

// DefaultCleanupOptions returns sensible defaults for cleanup
func DefaultCleanupOptions() CleanupOptions {
	return CleanupOptions{
		MaxBackups:     10,                  // Keep last 10 backups per file
		MaxAge:         30 * 24 * time.Hour, // Keep backups for 30 days
		KeepAtLeastOne: true,
	}
}

// Cleanup removes old backups and returns the IDs removed, or the IDs that
// would be removed in dry-run mode.
func (s *Store) Cleanup(opts CleanupOptions) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, err := s.loadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load backup index: %w", err)
	}

	groups := make(map[string][]Metadata)
	for _, backup := range index.Backups {
		groups[backup.SourcePath] = append(groups[backup.SourcePath], backup)
	}

	var toDelete []string
	now := s.now()
	for _, group := range groups {
		sortNewestFirst(group)

		var expired []string
		for i, backup := range group {
			tooOld := opts.MaxAge > 0 && now.Sub(backup.CreatedAt) > opts.MaxAge
			tooMany := opts.MaxBackups > 0 && i >= opts.MaxBackups
			if tooOld || tooMany {
				expired = append(expired, backup.ID)
			}
		}

		// Everything expired: keep the newest
		if opts.KeepAtLeastOne && len(expired) == len(group) && len(expired) > 0 {
			expired = expired[1:]
		}
		toDelete = append(toDelete, expired...)
	}
	slices.Sort(toDelete)

	if opts.DryRun {
		return toDelete, nil
	}

	var deleted []string
	for _, backupID := range toDelete {
		if err := s.deleteLocked(index, backupID); err != nil {
			return deleted, fmt.Errorf("failed to delete backup %q: %w", backupID, err)
		}
		deleted = append(deleted, backupID)
	}
	return deleted, nil
}

// Stats returns statistics about backups
func (s *Store) Stats() (*Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, err := s.loadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load backup index: %w", err)
	}

	stats := &Stats{
		TotalBackups: len(index.Backups),
		Sources:      make(map[string]int),
	}
	for _, backup := range index.Backups {
		stats.TotalSize += backup.Size
		stats.StoredSize += backup.StoredSize
		stats.Sources[backup.SourcePath]++

		if stats.OldestBackup.IsZero() || backup.CreatedAt.Before(stats.OldestBackup) {
			stats.OldestBackup = backup.CreatedAt
		}
		if backup.CreatedAt.After(stats.NewestBackup) {
			stats.NewestBackup = backup.CreatedAt
		}
	}
	return stats, nil
}

// Stats contains statistics about backups
type Stats struct {
	TotalBackups int
	TotalSize    int64
	StoredSize   int64
	Sources      map[string]int // backups per source file
	OldestBackup time.Time
	NewestBackup time.Time
}
