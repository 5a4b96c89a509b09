package process

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
)

// ProgressUpdate is sent when every instrument of a date was written.
type ProgressUpdate struct {
	Date        string
	CompletedAt string
}

// ProgressPath returns path to .processed.json under the output root.
func ProgressPath(outputDir string) string {
	return filepath.Join(outputDir, ".processed.json")
}

func loadProgress(path string) map[string]string {
	data, err := os.ReadFile(path)
	if err != nil {
		return make(map[string]string)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return make(map[string]string)
	}
	return m
}

// RunProgressWriter receives updates and persists date -> completion time (run as goroutine).
func RunProgressWriter(path string, updates <-chan ProgressUpdate, logger *slog.Logger) {
	m := loadProgress(path)
	for u := range updates {
		m[u.Date] = u.CompletedAt
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			logger.Warn("progress marshal error", "error", err)
			continue
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			logger.Warn("progress write error", "error", err)
		}
	}
}
