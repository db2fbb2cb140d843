// Package backup keeps copies of documents before lexmerge overwrites them.
//
// Copies are snappy-compressed and named after a timestamp and a content hash.
// An index.json next to them records where each copy came from so it can be
// listed, verified and restored.
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/golang/snappy"
)

const (
	// BackupDirPerm is the permission for backup directories (rwxr-x---)
	BackupDirPerm = 0o750
	// BackupFilePerm is the permission for backup files (rw-r-----)
	BackupFilePerm = 0o640

	// compressedExt is appended to the source extension of stored copies.
	compressedExt = ".sz"
)

// ErrNotFound is returned for an unknown backup ID.
var ErrNotFound = errors.New("backup not found")

// ErrCorrupted is returned when a stored copy no longer matches its hash.
var ErrCorrupted = errors.New("backup corrupted")

// Options configures a single backup.
type Options struct {
	Description string            // Human-readable description
	Metadata    map[string]string // Additional metadata
}

// Store manages backups under one directory. It is safe for concurrent use
// within a process.
type Store struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// NewStore returns a store rooted at dir. The directory is created on the
// first backup.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// Create backs up the file at sourcePath.
func (s *Store) Create(sourcePath string, opts Options) (*Metadata, error) {
	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat source path %q: %w", sourcePath, err)
	}

	// #nosec G304 - sourcePath is a document the caller is about to overwrite
	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file %q: %w", sourcePath, err)
	}

	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		abs = sourcePath
	}

	hash := sha256.Sum256(content)
	hashStr := hex.EncodeToString(hash[:])
	idHash := sha256.Sum256(append([]byte(abs+"\x00"), content...))
	created := s.now()
	backupID := created.Format("20060102-150405-") + hex.EncodeToString(idHash[:4])

	if err := os.MkdirAll(s.dir, BackupDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create backups directory: %w", err)
	}

	backupPath := filepath.Join(s.dir, backupID+filepath.Ext(sourcePath)+compressedExt)
	stored := snappy.Encode(nil, content)
	if err := os.WriteFile(backupPath, stored, BackupFilePerm); err != nil {
		return nil, fmt.Errorf("failed to write backup file: %w", err)
	}

	metadata := &Metadata{
		ID:          backupID,
		SourcePath:  abs,
		BackupPath:  backupPath,
		CreatedAt:   created,
		ModifiedAt:  sourceInfo.ModTime(),
		Hash:        hashStr,
		Size:        sourceInfo.Size(),
		StoredSize:  int64(len(stored)),
		Description: opts.Description,
		Metadata:    opts.Metadata,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	index, err := s.loadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load backup index: %w", err)
	}
	index.Backups[backupID] = *metadata
	if err := s.saveIndex(index); err != nil {
		return nil, fmt.Errorf("failed to add backup to index: %w", err)
	}
	return metadata, nil
}

// CreateIfExists backs up sourcePath when it exists. It returns nil metadata
// and no error when there is nothing to back up.
func (s *Store) CreateIfExists(sourcePath string, opts Options) (*Metadata, error) {
	if _, err := os.Stat(sourcePath); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return s.Create(sourcePath, opts)
}

// Get returns the index entry for backupID.
func (s *Store) Get(backupID string) (Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, err := s.loadIndex()
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to load backup index: %w", err)
	}
	metadata, exists := index.Backups[backupID]
	if !exists {
		return Metadata{}, fmt.Errorf("%w: %q", ErrNotFound, backupID)
	}
	return metadata, nil
}

// Read returns the original content of a backup after checking its hash.
func (s *Store) Read(backupID string) ([]byte, error) {
	metadata, err := s.Get(backupID)
	if err != nil {
		return nil, err
	}

	stored, err := os.ReadFile(metadata.BackupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup file: %w", err)
	}
	content, err := snappy.Decode(nil, stored)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupted, backupID, err)
	}

	hash := sha256.Sum256(content)
	if hashStr := hex.EncodeToString(hash[:]); hashStr != metadata.Hash {
		return nil, fmt.Errorf("%w: %s: hash mismatch (expected %s, got %s)", ErrCorrupted, backupID, metadata.Hash, hashStr)
	}
	return content, nil
}

// Verify checks that a backup is intact.
func (s *Store) Verify(backupID string) error {
	_, err := s.Read(backupID)
	return err
}

// Restore writes a backup to targetPath. An empty targetPath restores to the
// original location.
func (s *Store) Restore(backupID, targetPath string) error {
	metadata, err := s.Get(backupID)
	if err != nil {
		return err
	}
	content, err := s.Read(backupID)
	if err != nil {
		return err
	}
	if targetPath == "" {
		targetPath = metadata.SourcePath
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), BackupDirPerm); err != nil {
		return fmt.Errorf("failed to create target directory: %w", err)
	}
	// #nosec G306 - restored documents get the permissions of merged outputs
	if err := os.WriteFile(targetPath, content, 0o644); err != nil {
		return fmt.Errorf("failed to write target file: %w", err)
	}
	return nil
}

// List returns backups newest first, optionally only those of one source
// file.
func (s *Store) List(sourcePath string) ([]Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, err := s.loadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load backup index: %w", err)
	}

	backups := index.List()
	if sourcePath == "" {
		return backups, nil
	}
	if abs, err := filepath.Abs(sourcePath); err == nil {
		sourcePath = abs
	}
	return slices.DeleteFunc(backups, func(m Metadata) bool {
		return m.SourcePath != sourcePath
	}), nil
}

// Delete removes a backup and its index entry.
func (s *Store) Delete(backupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, err := s.loadIndex()
	if err != nil {
		return fmt.Errorf("failed to load backup index: %w", err)
	}
	return s.deleteLocked(index, backupID)
}

func (s *Store) deleteLocked(index *Index, backupID string) error {
	metadata, exists := index.Backups[backupID]
	if !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, backupID)
	}
	if err := os.Remove(metadata.BackupPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete backup file: %w", err)
	}
	delete(index.Backups, backupID)
	if err := s.saveIndex(index); err != nil {
		return fmt.Errorf("failed to remove backup from index: %w", err)
	}
	return nil
}
