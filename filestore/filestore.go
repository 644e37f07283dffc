package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store is where uploaded binaries (exam submissions) live. Only the
// returned opaque path is persisted with the owning record.
type Store interface {
	Save(name string, r io.Reader) (path string, err error)
	Open(path string) (io.ReadCloser, error)
	Remove(path string) error
}

type Local struct {
	dir string
}

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &Local{dir: dir}, nil
}

// Save stores the content under a fresh name; the client-supplied one
// only contributes its extension.
func (l *Local) Save(name string, r io.Reader) (string, error) {
	ext := filepath.Ext(filepath.Base(name))
	stored := uuid.NewString() + ext

	f, err := os.Create(filepath.Join(l.dir, stored))
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("writing upload file: %w", err)
	}

	return stored, nil
}

func (l *Local) Open(path string) (io.ReadCloser, error) {
	if strings.Contains(path, "/") || strings.Contains(path, "\\") || strings.Contains(path, "..") {
		return nil, errors.New("invalid stored path")
	}
	return os.Open(filepath.Join(l.dir, path))
}

func (l *Local) Remove(path string) error {
	if strings.Contains(path, "/") || strings.Contains(path, "\\") || strings.Contains(path, "..") {
		return errors.New("invalid stored path")
	}
	return os.Remove(filepath.Join(l.dir, path))
}
