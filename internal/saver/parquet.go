package saver

import (
	"github.com/parquet-go/parquet-go"

	"nfo-ohlc/internal/model"
)

// parquetBar is the on-disk row: Timestamp in Unix milliseconds, prices as float64.
type parquetBar struct {
	Timestamp int64   `parquet:"Timestamp"`
	Open      float64 `parquet:"Open"`
	High      float64 `parquet:"High"`
	Low       float64 `parquet:"Low"`
	Close     float64 `parquet:"Close"`
}

// ParquetSaver lưu bars dưới dạng Parquet.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Save(bars []model.Bar, path string) error {
	rows := make([]parquetBar, len(bars))
	for i, b := range bars {
		rows[i] = parquetBar{
			Timestamp: b.Timestamp.UnixMilli(),
			Open:      b.Open.InexactFloat64(),
			High:      b.High.InexactFloat64(),
			Low:       b.Low.InexactFloat64(),
			Close:     b.Close.InexactFloat64(),
		}
	}
	return parquet.WriteFile(path, rows)
}
