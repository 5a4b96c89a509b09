package process

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	successReportName = ".lastrun.success.json"
	failedReportName  = ".lastrun.failed.json"
)

// FailedEntry is one instrument (or whole date when Symbol is empty) that could not be written.
type FailedEntry struct {
	Date   string `json:"date"`
	Symbol string `json:"symbol,omitempty"`
	Reason string `json:"reason"`
}

type successReport struct {
	RunID   string             `json:"run_id"`
	Dates   []string           `json:"dates"`
	Skipped []string           `json:"skipped,omitempty"`
	Missing []string           `json:"missing_tick_data,omitempty"`
	NoIndex []string           `json:"no_index_data,omitempty"`
	Files   []InstrumentResult `json:"files"`
}

type failedReport struct {
	RunID  string        `json:"run_id"`
	Failed []FailedEntry `json:"failed"`
}

// writeRunReport writes the success report and, when anything failed, the failed report.
// A failed report left by an earlier run is removed when this run has no failures.
func writeRunReport(outputDir string, sum *Summary) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}
	p := filepath.Join(outputDir, successReportName)
	if err := writeJSON(p, successReport{
		RunID:   sum.RunID,
		Dates:   sum.Dates,
		Skipped: sum.Skipped,
		Missing: sum.Missing,
		NoIndex: sum.NoIndex,
		Files:   sum.Success,
	}); err != nil {
		return err
	}
	slog.Debug("report wrote success", "path", p, "files", len(sum.Success))

	fp := filepath.Join(outputDir, failedReportName)
	if len(sum.Failed) == 0 {
		if err := os.Remove(fp); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	if err := writeJSON(fp, failedReport{RunID: sum.RunID, Failed: sum.Failed}); err != nil {
		return err
	}
	slog.Debug("report wrote failed", "path", fp, "count", len(sum.Failed))
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func joinFailedReasons(failedList []FailedEntry) string {
	if len(failedList) == 0 {
		return ""
	}
	var b strings.Builder
	for i, f := range failedList {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f.Date)
		if f.Symbol != "" {
			b.WriteString("/")
			b.WriteString(f.Symbol)
		}
		b.WriteString(": ")
		b.WriteString(f.Reason)
		if i >= 4 && len(failedList) > 6 {
			b.WriteString(fmt.Sprintf(" (+%d more)", len(failedList)-5))
			break
		}
	}
	return b.String()
}
