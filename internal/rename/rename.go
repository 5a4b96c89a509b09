// Package rename moves the trading date in extracted file names to the front:
// NAME_YYYY-MM-DD.ext becomes YYYY-MM-DD_NAME.
package rename

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DateLayout is the trading date format embedded in file names.
const DateLayout = "2006-01-02"

// Result summarizes one Dir call.
type Result struct {
	Renamed []string // new names
	Skipped []string // original names left untouched
}

// Target returns the date-first name for name, and false when name does not carry a
// trailing _YYYY-MM-DD part.
func Target(name string) (string, bool) {
	i := strings.LastIndex(name, "_")
	if i <= 0 {
		return "", false
	}
	rest, datePart := name[:i], name[i+1:]
	datePart = strings.TrimSuffix(datePart, filepath.Ext(datePart))
	if _, err := time.Parse(DateLayout, datePart); err != nil {
		return "", false
	}
	return datePart + "_" + rest, true
}

// Dir renames the regular files of dir in name order. Names without a date part are
// skipped, and an existing target is never overwritten.
func Dir(dir string, logger *slog.Logger) (Result, error) {
	var res Result
	entries, err := os.ReadDir(dir)
	if err != nil {
		return res, fmt.Errorf("rename: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		target, ok := Target(name)
		if !ok {
			logger.Debug("skip rename, unexpected name", "file", name)
			res.Skipped = append(res.Skipped, name)
			continue
		}
		newPath := filepath.Join(dir, target)
		if _, err := os.Lstat(newPath); err == nil {
			logger.Warn("skip rename, target exists", "file", name, "target", target)
			res.Skipped = append(res.Skipped, name)
			continue
		}
		if err := os.Rename(filepath.Join(dir, name), newPath); err != nil {
			return res, fmt.Errorf("rename %s: %w", name, err)
		}
		logger.Debug("renamed", "from", name, "to", target)
		res.Renamed = append(res.Renamed, target)
	}
	logger.Info("renaming complete", "dir", dir, "renamed", len(res.Renamed), "skipped", len(res.Skipped))
	return res, nil
}
