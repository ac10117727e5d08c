package storage

import (
	"fmt"

	"github.com/arthur-debert/listings/types"
	"github.com/google/uuid"
)

// WriteFileAtomic replaces name with data. The bytes go to a uniquely
// named sibling first and are renamed into place, so readers see either
// the old file or the new one, never a partial write.
func WriteFileAtomic(fsys FileSystem, name string, data []byte) error {
	tmp := fmt.Sprintf("%s.tmp-%s", name, uuid.NewString())

	if err := fsys.WriteFile(tmp, data, 0o644); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("%w: write %s: %w", types.ErrFileUnavailable, name, err)
	}
	if err := fsys.Rename(tmp, name); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("%w: replace %s: %w", types.ErrFileUnavailable, name, err)
	}
	return nil
}

// ReadFile reads name, reporting failures as ErrFileUnavailable. A
// missing file also matches fs.ErrNotExist.
func ReadFile(fsys FileSystem, name string) ([]byte, error) {
	data, err := fsys.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", types.ErrFileUnavailable, name, err)
	}
	return data, nil
}

// EnsureDir creates dir and its parents when missing.
func EnsureDir(fsys FileSystem, dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create directory %s: %w", types.ErrFileUnavailable, dir, err)
	}
	return nil
}

// Exists reports whether name is present.
func Exists(fsys FileSystem, name string) bool {
	_, err := fsys.Stat(name)
	return err == nil
}
