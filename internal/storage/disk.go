package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DiskStore persists uploaded files under a single directory on local disk.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the upload directory if needed and returns a store.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the upload directory path.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Path resolves the on-disk location for a stored filename.
func (s *DiskStore) Path(filename string) string {
	return filepath.Join(s.dir, filename)
}

// Save writes the reader's contents under filename and returns the stored
// byte count. The bytes go to a temporary file first and are renamed into
// place, so a partially written file never appears under its final name.
func (s *DiskStore) Save(filename string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	written, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("write upload: %w", err)
	}

	final := s.Path(filename)
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("rename upload into place: %w", err)
	}

	// Report the size the filesystem sees rather than trusting the client.
	info, err := os.Stat(final)
	if err != nil {
		return written, nil
	}
	return info.Size(), nil
}

// Remove deletes a stored file by its resolved path.
func (s *DiskStore) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove stored file: %w", err)
	}
	return nil
}
