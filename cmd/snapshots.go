package cmd

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/aidensmith24/shopifyscraper/internal/snapshot"
)

// loadSnapshotRef loads a snapshot by canonical name from the data
// directory, by filesystem path, or, with an empty ref, the newest
// snapshot in the store. The returned name is what output should call
// the snapshot.
func loadSnapshotRef(dataDir, ref string) (snapshot.Snapshot, string, error) {
	store, err := snapshot.NewStore(dataDir)
	if err != nil {
		return snapshot.Snapshot{}, "", err
	}

	if ref == "" {
		entry, err := store.Latest()
		if err != nil {
			return snapshot.Snapshot{}, "", err
		}
		snap, err := snapshot.Read(entry.Path)
		return snap, entry.Name, err
	}

	if path, resolveErr := store.Resolve(ref); resolveErr == nil {
		snap, err := snapshot.Read(path)
		switch {
		case err == nil:
			return snap, ref, nil
		case !errors.Is(err, os.ErrNotExist):
			return snapshot.Snapshot{}, "", err
		}
		// Canonical name without a stored file; try it as a path below.
	}

	snap, err := snapshot.Read(ref)
	return snap, filepath.Base(ref), err
}
