package platform

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Replaceable for testing error paths.
var (
	osRename = os.Rename
)

// WriteFileAtomic creates the parent directory if needed, then writes data
// to a temp file beside path and renames it into place. On failure path is
// left untouched.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("write %s: mkdir: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, ".daemon-tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: create temp: %w", path, err)
	}
	tmpName := tmp.Name()

	done := false
	defer func() {
		if !done {
			os.Remove(tmpName)
		}
	}()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		return fmt.Errorf("write %s: %w", path, writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("write %s: close: %w", path, closeErr)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("write %s: chmod: %w", path, err)
	}
	if err := osRename(tmpName, path); err != nil {
		return fmt.Errorf("write %s: rename: %w", path, err)
	}

	done = true
	slog.Debug("file written",
		"component", "platform",
		"operation", "write_file_atomic",
		"path", path,
		"bytes", len(data))
	return nil
}
