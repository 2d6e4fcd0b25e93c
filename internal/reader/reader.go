// Package reader provides the FileReader implementations a host can hand to
// a language plugin: raw-content HTTP and fs.FS backed.
package reader

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/me/smkplugin/internal/config"
	"github.com/me/smkplugin/internal/language"
)

// ErrNotFound is matched by errors for paths that do not exist.
var ErrNotFound = errors.New("file not found")

// New builds the FileReader selected by cfg.Kind.
func New(cfg config.ReaderConfig, logger *slog.Logger) (language.FileReader, error) {
	switch strings.ToLower(cfg.Kind) {
	case config.ReaderHTTP:
		return NewHTTPReader(cfg.HTTP, logger)
	case config.ReaderFS:
		if cfg.Root == "" {
			return nil, errors.New("fs reader: root is required")
		}
		info, err := os.Stat(cfg.Root)
		if err != nil {
			return nil, fmt.Errorf("fs reader: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("fs reader: %s is not a directory", cfg.Root)
		}
		return NewFSReader(os.DirFS(cfg.Root), logger), nil
	default:
		return nil, fmt.Errorf("unknown reader kind %q", cfg.Kind)
	}
}

// relPath turns a repository path into an fs.FS / URL relative path.
func relPath(p string) string {
	return strings.TrimLeft(p, "/")
}
