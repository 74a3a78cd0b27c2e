// snapshot.go - RAM snapshot file I/O.
//
// Grounded on the teacher's file_io.go: a narrow host-file read/write
// surface returning a plain error from its outward-facing entry points.
// Narrowed here from FileIODevice's sandboxed, MMIO-driven read/write pair
// to the two fixed-format files this core persists (raw RAM image, raw
// ROM image) with no MMIO indirection, since the core has no guest-facing
// file API of its own — only the host CLI loads and saves these files.

package z180emu

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileSnapshotStore implements SnapshotStore by writing to path, using a
// write-to-temp-then-rename so a crash mid-write never corrupts the file a
// concurrent load might be reading.
type FileSnapshotStore struct {
	Path string
}

func (s *FileSnapshotStore) Save(data []byte) error {
	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("snapshot: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("snapshot: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("snapshot: rename into place: %w", err)
	}
	return nil
}

// LoadRAMSnapshot reads path and returns its contents, or nil if the file
// is absent or not exactly ramSize bytes — callers treat either case as
// "start with zeroed RAM" per the snapshot-size-mismatch policy.
func LoadRAMSnapshot(path string) []byte {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	if len(data) != ramSize {
		return nil
	}
	return data
}
