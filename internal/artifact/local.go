package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Local stores artifacts as files under a base directory. Keys may contain
// path separators; intermediate directories are created on save.
type Local struct {
	base string
}

// NewLocal returns a Local rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{base: dir}
}

func (l *Local) path(key string, format Format) string {
	return filepath.Join(l.base, key+extension(format))
}

// Save writes the table under key and returns the file path.
func (l *Local) Save(_ context.Context, key string, tbl *Table, format Format) (string, error) {
	data, err := encode(tbl, format)
	if err != nil {
		return "", fmt.Errorf("save artifact %q: %w", key, err)
	}
	path := l.path(key, format)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("save artifact %q: %w", key, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save artifact %q: %w", key, err)
	}
	return path, nil
}

// Load reads the table stored under key.
func (l *Local) Load(_ context.Context, key string, format Format) (*Table, error) {
	data, err := os.ReadFile(l.path(key, format))
	if err != nil {
		return nil, fmt.Errorf("load artifact %q: %w", key, err)
	}
	tbl, err := decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("load artifact %q: %w", key, err)
	}
	return tbl, nil
}

// Exists reports whether key was saved in any format.
func (l *Local) Exists(_ context.Context, key string) (bool, error) {
	for _, format := range []Format{FormatColumnar, FormatDelimited} {
		if _, err := os.Stat(l.path(key, format)); err == nil {
			return true, nil
		} else if !os.IsNotExist(err) {
			return false, fmt.Errorf("stat artifact %q: %w", key, err)
		}
	}
	return false, nil
}
