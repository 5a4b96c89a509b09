// Package archive extracts the nested input archives into the temporary workspace.
package archive

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned by an Extractor that cannot open the archive's format.
var ErrUnsupportedFormat = errors.New("unsupported archive format")

// Extensions are the archive suffixes picked up by ExtractAll.
var Extensions = []string{".zip", ".7z", ".rar"}

// Extractor extracts the archive at path into dir, overwriting existing files.
type Extractor interface {
	Extract(ctx context.Context, path, dir string) error
	Name() string
}

// IsArchive reports whether name has one of Extensions, case-insensitively.
func IsArchive(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
