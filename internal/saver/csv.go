package saver

import (
	"encoding/csv"
	"os"

	"nfo-ohlc/internal/model"
)

// CSVHeader is the header row of CSV output.
var CSVHeader = []string{"Timestamp", "Open", "High", "Low", "Close"}

// CSVSaver lưu bars dưới dạng CSV (header: Timestamp,Open,High,Low,Close).
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

func (CSVSaver) Save(bars []model.Bar, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	w := csv.NewWriter(f)

	if err := w.Write(CSVHeader); err != nil {
		return err
	}
	for _, b := range bars {
		if err := w.Write([]string{
			b.Timestamp.Format(model.TimestampLayout),
			b.Open.String(),
			b.High.String(),
			b.Low.String(),
			b.Close.String(),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
