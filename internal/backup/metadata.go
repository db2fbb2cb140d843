package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Metadata contains metadata about a single backup
type Metadata struct {
	ID          string            `json:"id"`          // Unique backup identifier (timestamp-based)
	SourcePath  string            `json:"source_path"` // Absolute path of the overwritten file
	BackupPath  string            `json:"backup_path"` // Path to the compressed copy
	CreatedAt   time.Time         `json:"created_at"`  // Backup creation timestamp
	ModifiedAt  time.Time         `json:"modified_at"` // Source modification timestamp
	Hash        string            `json:"hash"`        // SHA256 hash of the original content
	Size        int64             `json:"size"`        // Original size in bytes
	StoredSize  int64             `json:"stored_size"` // Compressed size in bytes
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Index maintains an index of all backups
type Index struct {
	Version string              `json:"version"`
	Updated time.Time           `json:"updated"`
	Backups map[string]Metadata `json:"backups"` // Key: backup ID
}

const (
	// IndexVersion is the current version of the backup index format
	IndexVersion = "1.0"
	// IndexFilename is the name of the index file
	IndexFilename = "index.json"
)

func (s *Store) indexPath() string {
	return filepath.Join(s.dir, IndexFilename)
}

// loadIndex reads the index. The caller holds s.mu.
func (s *Store) loadIndex() (*Index, error) {
	// #nosec G304 - the index lives in the store directory
	data, err := os.ReadFile(s.indexPath())
	if os.IsNotExist(err) {
		return &Index{
			Version: IndexVersion,
			Updated: s.now(),
			Backups: make(map[string]Metadata),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse index file: %w", err)
	}
	if index.Version != IndexVersion {
		return nil, fmt.Errorf("unsupported index version %q", index.Version)
	}
	if index.Backups == nil {
		index.Backups = make(map[string]Metadata)
	}
	return &index, nil
}

// saveIndex writes the index. The caller holds s.mu.
func (s *Store) saveIndex(index *Index) error {
	if err := os.MkdirAll(s.dir, BackupDirPerm); err != nil {
		return fmt.Errorf("failed to create backups directory: %w", err)
	}

	index.Updated = s.now()
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	// #nosec G306 - index.json is metadata and can be group-readable
	if err := os.WriteFile(s.indexPath(), data, 0o640); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}
	return nil
}

// List returns all backups sorted by creation time (newest first)
func (idx *Index) List() []Metadata {
	backups := make([]Metadata, 0, len(idx.Backups))
	for _, backup := range idx.Backups {
		backups = append(backups, backup)
	}
	sortNewestFirst(backups)
	return backups
}

func sortNewestFirst(backups []Metadata) {
	slices.SortFunc(backups, func(a, b Metadata) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
}
