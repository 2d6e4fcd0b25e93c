package reader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
)

// FSReader reads repository files from an fs.FS, typically a bundled
// fixture tree or a local checkout opened with os.DirFS.
type FSReader struct {
	fsys   fs.FS
	logger *slog.Logger
}

// NewFSReader creates an FSReader rooted at fsys.
func NewFSReader(fsys fs.FS, logger *slog.Logger) *FSReader {
	return &FSReader{fsys: fsys, logger: logger.With("component", "fs-reader")}
}

// ReadFile returns the content of path. A leading slash is ignored.
func (r *FSReader) ReadFile(ctx context.Context, p string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name, err := fsName(p)
	if err != nil {
		return "", err
	}

	data, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("fs reader: %s: %w", p, ErrNotFound)
		}
		return "", fmt.Errorf("fs reader: %s: %w", p, err)
	}
	r.logger.Debug("file read", "path", p, "bytes", len(data))
	return string(data), nil
}

// ListFiles returns the regular files directly inside dir, as paths in the
// same form as dir.
func (r *FSReader) ListFiles(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := fsName(dir)
	if err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(r.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("fs reader: %s: %w", dir, ErrNotFound)
		}
		return nil, fmt.Errorf("fs reader: list %s: %w", dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		files = append(files, joinListed(dir, e.Name()))
	}
	return files, nil
}

// fsName converts a repository path into a valid fs.FS name.
func fsName(p string) (string, error) {
	name := path.Clean(relPath(p))
	if name == "" || name == "/" {
		name = "."
	}
	if !fs.ValidPath(name) {
		return "", fmt.Errorf("fs reader: invalid path %q", p)
	}
	return name, nil
}

func joinListed(dir, name string) string {
	if dir == "" || dir == "." {
		return name
	}
	if dir == "/" {
		return "/" + name
	}
	return path.Join(dir, name)
}
