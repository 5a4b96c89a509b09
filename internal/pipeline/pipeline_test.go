package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nfo-ohlc/internal/archive"
	"nfo-ohlc/internal/process"
	"nfo-ohlc/internal/saver"
	"nfo-ohlc/internal/selector"
	"nfo-ohlc/internal/slogx"
)

var rules = selector.Rules{
	IndexSymbol:     "NIFTY BANK",
	IndexOutput:     "NIFTYBANK",
	OptionsName:     "BANKNIFTY",
	OptionsExchange: "NFO",
	StrikeStep:      100,
	StrikePadding:   200,
}

const instruments = `instrument_token,tradingsymbol,name,expiry,strike,instrument_type,segment,exchange
260105,NIFTY BANK,NIFTY BANK,,0,EQ,INDICES,NSE
11,BANKNIFTY25SEP54000CE,BANKNIFTY,2025-09-30,54000,CE,NFO-OPT,NFO
`

const ticks = `instrument_token,timestamp,price,quantity
260105,2025-09-19 09:15:00.100,54010,0
11,2025-09-19 09:15:00.300,400,35
260105,2025-09-19 09:15:00.600,54060,0
11,2025-09-19 09:15:00.800,395,35
`

func zipBytes(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// inputDir holds one outer archive wrapping the per-day archive.
func inputDir(t *testing.T) string {
	t.Helper()
	inner := zipBytes(t, map[string][]byte{
		"instrument_df_2025-09-19": []byte(instruments),
		"tick_data_2025-09-19":     []byte(ticks),
	})
	outer := zipBytes(t, map[string][]byte{"2025-09-19.zip": inner})
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Sep2025.zip"), outer, 0644))
	return dir
}

func newPipeline(opts Options, ex archive.Extractor) *Pipeline {
	logger := slogx.Discard()
	proc := process.New(process.Options{Rules: rules}, saver.CSVSaver{}, logger)
	return New(opts, ex, proc, logger)
}

func TestRun_EndToEnd(t *testing.T) {
	out := filepath.Join(t.TempDir(), "Output_CSV")
	opts := Options{InputPath: inputDir(t), OutputPath: out, TempDir: t.TempDir()}

	res, err := newPipeline(opts, archive.Zip{}).Run(context.Background())

	require.NoError(t, err)
	require.Len(t, res.Stages, 2)
	assert.Equal(t, 1, res.Stages[0].Archives)
	assert.Equal(t, 1, res.Stages[1].Archives)
	assert.ElementsMatch(t, []string{"2025-09-19_instrument_df", "2025-09-19_tick_data"}, res.Renamed.Renamed)
	assert.NoDirExists(t, res.Workspace)

	data, err := os.ReadFile(filepath.Join(out, "2025-09-19", "NIFTYBANK.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Timestamp,Open,High,Low,Close\n2025-09-19 09:15:00,54010,54060,54010,54060\n", string(data))
	data, err = os.ReadFile(filepath.Join(out, "2025-09-19", "BANKNIFTY25SEP54000CE.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Timestamp,Open,High,Low,Close\n2025-09-19 09:15:00,400,400,395,395\n", string(data))
}

func TestRun_KeepTemp(t *testing.T) {
	opts := Options{InputPath: inputDir(t), OutputPath: t.TempDir(), TempDir: t.TempDir(), KeepTemp: true}

	res, err := newPipeline(opts, archive.Zip{}).Run(context.Background())

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(res.Workspace, intermediateDir, "2025-09-19_tick_data"))
}

type failingExtractor struct{}

func (failingExtractor) Name() string { return "failing" }

func (failingExtractor) Extract(context.Context, string, string) error {
	return errors.New("archiver exited with status 2")
}

func TestRun_ExtractionFailureCleansUp(t *testing.T) {
	tmp := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	opts := Options{InputPath: inputDir(t), OutputPath: out, TempDir: tmp}

	res, err := newPipeline(opts, failingExtractor{}).Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 2")
	assert.Nil(t, res.Summary)
	assert.NoDirExists(t, res.Workspace)
	assert.NoDirExists(t, out)
	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_MissingInput(t *testing.T) {
	opts := Options{InputPath: filepath.Join(t.TempDir(), "Input_Zip"), OutputPath: t.TempDir(), TempDir: t.TempDir()}

	res, err := newPipeline(opts, archive.Zip{}).Run(context.Background())

	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "source folder"))
	assert.NoDirExists(t, res.Workspace)
}

func TestRun_NoDataFiles(t *testing.T) {
	opts := Options{InputPath: t.TempDir(), OutputPath: t.TempDir(), TempDir: t.TempDir()}

	_, err := newPipeline(opts, archive.Zip{}).Run(context.Background())

	assert.ErrorIs(t, err, process.ErrNoInputFiles)
}
