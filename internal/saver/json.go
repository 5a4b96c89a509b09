package saver

import (
	"encoding/json"
	"os"

	"nfo-ohlc/internal/model"
)

type jsonBar struct {
	Timestamp string `json:"Timestamp"`
	Open      string `json:"Open"`
	High      string `json:"High"`
	Low       string `json:"Low"`
	Close     string `json:"Close"`
}

// JSONSaver lưu bars dưới dạng JSON (array, indent). Prices are strings to keep them exact.
type JSONSaver struct{}

func (JSONSaver) Extension() string { return "json" }

func (JSONSaver) Save(bars []model.Bar, path string) (err error) {
	rows := make([]jsonBar, len(bars))
	for i, b := range bars {
		rows[i] = jsonBar{
			Timestamp: b.Timestamp.Format(model.TimestampLayout),
			Open:      b.Open.String(),
			High:      b.High.String(),
			Low:       b.Low.String(),
			Close:     b.Close.String(),
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
