package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/seogen/internal/foundation/errors"
)

// Result tells what a write did.
type Result int

const (
	ResultWritten Result = iota
	ResultUnchanged
)

func (r Result) String() string {
	if r == ResultUnchanged {
		return "unchanged"
	}
	return "written"
}

// Writer stores one document at a slash-separated path relative to its root.
type Writer interface {
	Write(rel string, content []byte) (Result, error)
}

// FSWriter writes into a directory on the local filesystem. Writes are plain
// overwrites unless Atomic is set, in which case content goes to a temp file in
// the target directory and is renamed into place.
type FSWriter struct {
	Root          string
	Atomic        bool
	SkipUnchanged bool
}

const (
	dirMode  = 0o755
	fileMode = 0o644
)

// NewFSWriter returns a writer rooted at root.
func NewFSWriter(root string, atomic, skipUnchanged bool) *FSWriter {
	return &FSWriter{Root: root, Atomic: atomic, SkipUnchanged: skipUnchanged}
}

// Resolve maps rel onto the filesystem, refusing paths that leave Root.
func (w *FSWriter) Resolve(rel string) (string, error) {
	if rel == "" || strings.HasPrefix(rel, "/") || strings.Contains(rel, "\\") {
		return "", fmt.Errorf("invalid output path %q", rel)
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("output path %q escapes the output directory", rel)
	}
	return filepath.Join(w.Root, clean), nil
}

func (w *FSWriter) Write(rel string, content []byte) (Result, error) {
	target, err := w.Resolve(rel)
	if err != nil {
		return ResultWritten, errors.WriteFailure(rel, err)
	}
	if w.SkipUnchanged {
		if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, content) {
			return ResultUnchanged, nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(target), dirMode); err != nil {
		return ResultWritten, errors.WriteFailure(rel, fmt.Errorf("create directory: %w", err))
	}
	if w.Atomic {
		err = writeAtomic(target, content)
	} else {
		err = os.WriteFile(target, content, fileMode)
	}
	if err != nil {
		return ResultWritten, errors.WriteFailure(rel, err)
	}
	return ResultWritten, nil
}

func writeAtomic(target string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}
