package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Local stores artifacts on the filesystem. Used when Cloudinary is not
// configured, matching single-host deployments.
type Local struct {
	dir string
}

// NewLocal creates the directory if needed.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blob dir: %w", err)
	}
	return &Local{dir: dir}, nil
}

// Put writes the artifact and returns its path. Key prefixes ("qr/",
// "photos/") become subdirectories, created on demand.
func (l *Local) Put(_ context.Context, key string, data []byte) (string, error) {
	path := filepath.Join(l.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("blob dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

// Delete removes the artifact if present.
func (l *Local) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(l.dir, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
