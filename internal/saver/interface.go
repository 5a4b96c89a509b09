package saver

import (
	"strings"

	"nfo-ohlc/internal/model"
)

// BarSaver writes the bars of one instrument to a file.
// Processor chỉ phụ thuộc interface; format được chọn ở app (csv, json, parquet).
type BarSaver interface {
	Save(bars []model.Bar, path string) error
	Extension() string
}

// Formats lists the supported output formats.
var Formats = []string{"csv", "json", "parquet"}

// NewBarSaver creates implementation by format (csv, json, parquet).
// Returns nil if format not supported.
func NewBarSaver(format string) BarSaver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}
	case "parquet":
		return ParquetSaver{}
	case "json":
		return JSONSaver{}
	default:
		return nil
	}
}
