// Package artifact writes result files so that a failed run never leaves a
// half-written file at the destination path.
package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"csreport/internal/domain"
)

// WriteAtomic streams write into a temp file next to path and renames it
// into place. Errors are *domain.OutputError.
func WriteAtomic(path string, write func(io.Writer) error) error {
	var b Batch
	if err := b.Stage(path, write); err != nil {
		return err
	}
	return b.Commit()
}

// Batch collects the outputs of one run under temp names and moves them
// into place together. A failed Commit leaves every destination as it was.
type Batch struct {
	staged []*staged
}

type staged struct {
	path   string
	tmp    string
	backup string // previous destination, moved aside during Commit
}

// Stage writes one output to a temp file in the destination directory.
func (b *Batch) Stage(path string, write func(io.Writer) error) error {
	return b.StageFile(path, func(tmpPath string) error {
		f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return err
		}
		if err := write(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
}

// StageFile hands build the path of an empty temp file to fill, for writers
// that open files by name.
func (b *Batch) StageFile(path string, build func(tmpPath string) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &domain.OutputError{Path: path, Err: err}
	}
	tmp, err := os.CreateTemp(dir, "."+SanitizeFilename(filepath.Base(path))+".*.tmp")
	if err != nil {
		return &domain.OutputError{Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &domain.OutputError{Path: path, Err: err}
	}
	if err := build(tmpPath); err != nil {
		os.Remove(tmpPath)
		return &domain.OutputError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return &domain.OutputError{Path: path, Err: err}
	}
	b.staged = append(b.staged, &staged{path: path, tmp: tmpPath})
	return nil
}

// Commit renames every staged file into place. Existing destinations are
// moved aside first and restored if any rename fails.
func (b *Batch) Commit() error {
	defer b.Discard()
	for _, s := range b.staged {
		if fi, err := os.Lstat(s.path); err == nil && !fi.Mode().IsRegular() {
			return &domain.OutputError{Path: s.path, Err: errors.New("destination exists and is not a regular file")}
		}
	}
	for i, s := range b.staged {
		if err := s.commit(); err != nil {
			b.rollback(i)
			return &domain.OutputError{Path: s.path, Err: fmt.Errorf("move into place: %w", err)}
		}
	}
	for _, s := range b.staged {
		if s.backup != "" {
			os.Remove(s.backup)
		}
	}
	b.staged = nil
	return nil
}

// Discard removes every temp file not yet committed.
func (b *Batch) Discard() {
	for _, s := range b.staged {
		os.Remove(s.tmp)
	}
	b.staged = nil
}

func (s *staged) commit() error {
	if _, err := os.Lstat(s.path); err == nil {
		s.backup = s.tmp + ".bak"
		if err := os.Rename(s.path, s.backup); err != nil {
			s.backup = ""
			return err
		}
	}
	if err := os.Rename(s.tmp, s.path); err != nil {
		if s.backup != "" {
			os.Rename(s.backup, s.path)
			s.backup = ""
		}
		return err
	}
	return nil
}

// rollback undoes the first n commits, newest first.
func (b *Batch) rollback(n int) {
	for i := n - 1; i >= 0; i-- {
		s := b.staged[i]
		os.Remove(s.path)
		if s.backup != "" {
			os.Rename(s.backup, s.path)
		}
	}
}

func WriteBytes(path string, data []byte) error {
	return WriteAtomic(path, func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(data))
		return err
	})
}

func SanitizeFilename(s string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	return replacer.Replace(s)
}
