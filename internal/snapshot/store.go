// Package snapshot persists catalog captures as flat JSON files and
// compares captures taken at different times.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aidensmith24/shopifyscraper/internal/catalog"
)

const (
	filePrefix = "products_"
	fileSuffix = ".json"
	dateLayout = "2006-01-02"
)

// nameRE matches canonical snapshot file names, products_YYYY-MM-DD.json.
var nameRE = regexp.MustCompile(`^products_\d{4}-\d{2}-\d{2}\.json$`)

// ErrNoSnapshots is returned by Latest when the data directory holds no
// snapshot files.
var ErrNoSnapshots = errors.New("no snapshots found")

// ErrBadName is returned when a snapshot name does not match the
// products_YYYY-MM-DD.json pattern.
var ErrBadName = errors.New("invalid snapshot name")

// Snapshot is the on-disk envelope: capture metadata plus the full
// product list. Files written by older tooling that contain a bare
// product array load with empty metadata.
type Snapshot struct {
	RunID      string            `json:"run_id,omitempty"`
	StoreURL   string            `json:"store_url,omitempty"`
	CapturedAt time.Time         `json:"captured_at"`
	Products   []catalog.Product `json:"products"`
}

// FileName returns the canonical snapshot file name for a capture time.
func FileName(capturedAt time.Time) string {
	return filePrefix + capturedAt.UTC().Format(dateLayout) + fileSuffix
}

// Store reads and writes snapshots inside one data directory.
type Store struct {
	dir string
}

// NewStore validates the data directory, creating it if missing, and
// returns a store rooted there.
func NewStore(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("data directory is required")
	}
	info, err := os.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return nil, fmt.Errorf("data directory %s is not a directory", dir)
		}
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(dir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create data directory: %w", mkErr)
		}
	default:
		return nil, fmt.Errorf("stat data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

// Save writes the snapshot under its canonical daily name and returns
// the file path. Saving twice on the same day overwrites the earlier
// capture. A zero CapturedAt is stamped with the current UTC time.
func (s *Store) Save(snap Snapshot) (string, error) {
	if snap.CapturedAt.IsZero() {
		snap.CapturedAt = time.Now().UTC()
	}
	path := filepath.Join(s.dir, FileName(snap.CapturedAt))
	if err := Write(snap, path); err != nil {
		return "", err
	}
	return path, nil
}

// Load reads a snapshot by file name from the store directory.
func (s *Store) Load(name string) (Snapshot, error) {
	path, err := s.Resolve(name)
	if err != nil {
		return Snapshot{}, err
	}
	return Read(path)
}

// Resolve validates a snapshot name and returns its path inside the
// store. Names must match the canonical pattern, which also blocks path
// traversal.
func (s *Store) Resolve(name string) (string, error) {
	if !nameRE.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrBadName, name)
	}
	path := filepath.Join(s.dir, name)
	cleanDir := filepath.Clean(s.dir)
	if !strings.HasPrefix(filepath.Clean(path), cleanDir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return path, nil
}

// Entry describes one stored snapshot file.
type Entry struct {
	Name     string    `json:"name"`
	Path     string    `json:"-"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// List returns the snapshots in the store ordered by name ascending,
// which for canonical names is capture-date order.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}
	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() || !nameRE.MatchString(de.Name()) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			return nil, fmt.Errorf("stat snapshot %s: %w", de.Name(), err)
		}
		entries = append(entries, Entry{
			Name:     de.Name(),
			Path:     filepath.Join(s.dir, de.Name()),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Latest returns the most recent snapshot entry by capture date.
func (s *Store) Latest() (Entry, error) {
	entries, err := s.List()
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, ErrNoSnapshots
	}
	return entries[len(entries)-1], nil
}

// Write marshals the snapshot with two-space indentation and writes it
// to an explicit path, creating parent directories as needed.
func Write(snap Snapshot, path string) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create snapshot directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Read loads a snapshot from an explicit path. Both the envelope format
// and the legacy bare product array are accepted.
func Read(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	snap, err := decode(data)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return snap, nil
}

func decode(data []byte) (Snapshot, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Snapshot{}, errors.New("file is empty")
	}
	if trimmed[0] == '[' {
		var products []catalog.Product
		if err := json.Unmarshal(trimmed, &products); err != nil {
			return Snapshot{}, err
		}
		return Snapshot{Products: products}, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(trimmed, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
