package app

import (
	"fmt"
	"strings"

	"nfo-ohlc/internal/archive"
)

// CreateExtractor creates the archive Extractor from config (7z or builtin).
func CreateExtractor(cfg *Config) (archive.Extractor, error) {
	switch strings.ToLower(cfg.Archiver) {
	case "7z":
		return archive.NewSevenZip(cfg.ArchiverPath), nil
	case "builtin":
		return archive.Zip{}, nil
	default:
		return nil, fmt.Errorf("unsupported archiver: %s. Options: 7z, builtin", cfg.Archiver)
	}
}
