package archive

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// StageResult summarizes one extraction stage.
type StageResult struct {
	Name      string
	Archives  int
	Extracted []string
}

// ExtractAll extracts every archive directly inside src into dst, in name order.
//
// A missing src is an error; a src without archives is not. The first failing archive
// aborts the stage.
func ExtractAll(ctx context.Context, ex Extractor, stage, src, dst string, logger *slog.Logger) (StageResult, error) {
	res := StageResult{Name: stage}
	logger = logger.With("stage", stage)
	logger.Info("extraction stage start", "src", src, "dst", dst, "extractor", ex.Name())

	info, err := os.Stat(src)
	if err != nil {
		return res, fmt.Errorf("stage %s: source folder: %w", stage, err)
	}
	if !info.IsDir() {
		return res, fmt.Errorf("stage %s: source %s is not a directory", stage, src)
	}
	if err := os.MkdirAll(dst, 0755); err != nil {
		return res, fmt.Errorf("stage %s: create target: %w", stage, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return res, fmt.Errorf("stage %s: %w", stage, err)
	}
	var archives []string
	for _, e := range entries {
		if !e.IsDir() && IsArchive(e.Name()) {
			archives = append(archives, e.Name())
		}
	}
	sort.Strings(archives)
	res.Archives = len(archives)

	if len(archives) == 0 {
		logger.Warn("no archive files found", "src", src)
		return res, nil
	}
	for _, name := range archives {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		logger.Info("extracting", "archive", name)
		if err := ex.Extract(ctx, filepath.Join(src, name), dst); err != nil {
			logger.Error("extraction failed", "archive", name, "error", err)
			return res, fmt.Errorf("stage %s: extract %s: %w", stage, name, err)
		}
		res.Extracted = append(res.Extracted, name)
	}
	logger.Info("extraction stage complete", "archives", len(res.Extracted))
	return res, nil
}
