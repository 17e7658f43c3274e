package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// File stores one document per file in Dir, named by Key.
type File struct {
	Dir string
	// TTL of an entry, measured from the file's modification time; zero
	// keeps entries forever.
	TTL time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// NewFile creates dir when missing.
func NewFile(dir string, ttl time.Duration) (*File, error) {
	if dir == "" {
		return nil, errors.New("file cache: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file cache: %w", err)
	}
	return &File{Dir: dir, TTL: ttl}, nil
}

func (f *File) path(url string) string { return filepath.Join(f.Dir, Key(url)) }

func (f *File) Get(_ context.Context, url string) ([]byte, bool, error) {
	p := f.path(url)
	info, err := os.Stat(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("file cache: %w", err)
	}
	if expired(info.ModTime(), nowFunc(f.Clock), f.TTL) {
		return nil, false, nil
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, false, fmt.Errorf("file cache: %w", err)
	}
	return data, true, nil
}

// Set writes through a temporary file so readers never see partial documents.
func (f *File) Set(_ context.Context, url string, data []byte) error {
	tmp, err := os.CreateTemp(f.Dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("file cache: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("file cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path(url)); err != nil {
		return fmt.Errorf("file cache: %w", err)
	}
	return nil
}
