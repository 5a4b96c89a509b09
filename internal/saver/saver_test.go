package saver

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nfo-ohlc/internal/model"
)

func sampleBars() []model.Bar {
	ts := time.Date(2025, 9, 19, 9, 15, 0, 0, time.UTC)
	d := decimal.RequireFromString
	return []model.Bar{
		{Timestamp: ts, Open: d("101"), High: d("103"), Low: d("99"), Close: d("100")},
		{Timestamp: ts.Add(2 * time.Second), Open: d("100.05"), High: d("100.05"), Low: d("100.05"), Close: d("100.05")},
	}
}

func TestNewBarSaver(t *testing.T) {
	for _, f := range Formats {
		s := NewBarSaver(f)
		require.NotNil(t, s, f)
		assert.Equal(t, f, s.Extension())
	}
	assert.NotNil(t, NewBarSaver(" CSV "))
	assert.Nil(t, NewBarSaver("xlsx"))
}

func TestCSVSaver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "NIFTYBANK.csv")

	require.NoError(t, CSVSaver{}.Save(sampleBars(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"Timestamp,Open,High,Low,Close\n"+
			"2025-09-19 09:15:00,101,103,99,100\n"+
			"2025-09-19 09:15:02,100.05,100.05,100.05,100.05\n",
		string(data))
}

func TestCSVSaver_EmptyWritesHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	require.NoError(t, CSVSaver{}.Save(nil, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Timestamp,Open,High,Low,Close\n", string(data))
}

func TestJSONSaver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "NIFTYBANK.json")

	require.NoError(t, JSONSaver{}.Save(sampleBars(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rows []map[string]string
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-09-19 09:15:02", rows[1]["Timestamp"])
	assert.Equal(t, "99", rows[0]["Low"])
}

func TestSavers_ReportWriteErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "NIFTYBANK")
	for _, f := range Formats {
		t.Run(f, func(t *testing.T) {
			assert.Error(t, NewBarSaver(f).Save(sampleBars(), path+"."+f))
		})
	}
}

func TestParquetSaver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "NIFTYBANK.parquet")

	require.NoError(t, ParquetSaver{}.Save(sampleBars(), path))

	rows, err := parquet.ReadFile[parquetBar](path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, sampleBars()[0].Timestamp.UnixMilli(), rows[0].Timestamp)
	assert.Equal(t, 103.0, rows[0].High)
	assert.Equal(t, 100.05, rows[1].Close)
}
