package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// subtitleMode lets media servers running as another user read the subtitle.
const subtitleMode os.FileMode = 0o644

// SubtitleWriter writes subtitle files so that a reader never sees a
// partial file: content goes to a hidden sibling which is renamed into place.
type SubtitleWriter struct {
	fs afero.Fs
}

func NewSubtitleWriter(fs afero.Fs) *SubtitleWriter {
	return &SubtitleWriter{fs: fs}
}

// Write replaces path with content. On failure the temporary file is removed
// and path is left as it was.
func (w *SubtitleWriter) Write(path string, content []byte) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := afero.TempFile(w.fs, dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = w.fs.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err = w.fs.Chmod(tmpName, subtitleMode); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}
	if err = w.fs.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move subtitle into place at %s: %w", path, err)
	}
	return nil
}
