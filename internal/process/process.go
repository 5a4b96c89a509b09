// Package process turns a renamed workspace of per-date instrument and tick files into
// per-instrument OHLC files under <output>/<date>/.
package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"nfo-ohlc/internal/model"
	"nfo-ohlc/internal/ohlc"
	"nfo-ohlc/internal/saver"
	"nfo-ohlc/internal/selector"
	"nfo-ohlc/internal/source"
)

const (
	// InstrumentSuffix marks the instrument master of a date: <date>_instrument_df.
	InstrumentSuffix = "_instrument_df"
	// TickSuffix marks the tick file of a date: <date>_tick_data.
	TickSuffix = "_tick_data"
	// DateLayout is the date prefix of workspace files and the output folder name.
	DateLayout = "2006-01-02"
)

// ErrNoInputFiles is returned when the workspace lacks instrument or tick files.
var ErrNoInputFiles = errors.New("no instrument or tick data files found")

// errNoIndex marks a date whose index instrument is absent or untraded.
var errNoIndex = errors.New("no index data")

// Options configures a Processor.
type Options struct {
	Rules    selector.Rules
	Workers  int
	Strict   bool           // a malformed record fails its instrument
	Resume   bool           // skip dates already recorded in the progress file
	Session  *ohlc.Session  // nil disables session fill
	Location *time.Location // zone of naive tick timestamps
}

// Processor runs the aggregation stage.
type Processor struct {
	opts   Options
	saver  saver.BarSaver
	logger *slog.Logger
}

// New creates a Processor.
func New(opts Options, s saver.BarSaver, logger *slog.Logger) *Processor {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Processor{opts: opts, saver: s, logger: logger}
}

// Summary is the outcome of one Run.
type Summary struct {
	RunID   string
	Dates   []string
	Skipped []string // dates skipped by Resume
	Missing []string // dates with an instrument file but no tick file
	NoIndex []string // dates without index instrument or index ticks
	Success []InstrumentResult
	Failed  []FailedEntry
}

// Err returns a non-nil error when any instrument or date failed.
func (s *Summary) Err() error {
	if len(s.Failed) == 0 {
		return nil
	}
	return fmt.Errorf("%d failed: %s", len(s.Failed), joinFailedReasons(s.Failed))
}

// InstrumentResult describes one written file.
type InstrumentResult struct {
	Date     string `json:"date"`
	Symbol   string `json:"symbol"`
	Token    string `json:"token"`
	Ticks    int    `json:"ticks"`
	Rejected int    `json:"rejected,omitempty"`
	Bars     int    `json:"bars"`
	Path     string `json:"path"`
}

type datePair struct {
	date           string
	instrumentPath string
	tickPath       string
}

// Run processes every date found in dataDir and writes results under outputDir.
func (p *Processor) Run(ctx context.Context, dataDir, outputDir string) (*Summary, error) {
	p.logger.Info("processing start", "data_dir", dataDir, "output_dir", outputDir, "format", p.saver.Extension(), "workers", p.opts.Workers)

	pairs, missing, err := discover(dataDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	sum := &Summary{RunID: uuid.NewString()}
	for _, date := range missing {
		p.logger.Warn("no corresponding tick data file", "date", date)
	}
	sum.Missing = missing

	progressPath := ProgressPath(outputDir)
	done := make(map[string]string)
	if p.opts.Resume {
		done = loadProgress(progressPath)
	}
	updates := make(chan ProgressUpdate, len(pairs))
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		RunProgressWriter(progressPath, updates, p.logger)
	}()

	defer func() {
		if err := writeRunReport(outputDir, sum); err != nil {
			p.logger.Warn("could not write run report", "error", err)
		} else {
			p.logger.Info("run report saved", "run_id", sum.RunID, "success", len(sum.Success), "failed", len(sum.Failed))
		}
	}()

	var runErr error
	for _, pair := range pairs {
		if _, ok := done[pair.date]; ok {
			p.logger.Info("date already processed, skip", "date", pair.date)
			sum.Skipped = append(sum.Skipped, pair.date)
			continue
		}
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		ok, failed, err := p.processDate(ctx, pair, outputDir)
		sum.Success = append(sum.Success, ok...)
		sum.Failed = append(sum.Failed, failed...)
		if errors.Is(err, errNoIndex) {
			p.logger.Warn("date produced no files", "date", pair.date, "reason", err)
			sum.NoIndex = append(sum.NoIndex, pair.date)
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				runErr = ctx.Err()
				break
			}
			p.logger.Error("date failed", "date", pair.date, "error", err)
			sum.Failed = append(sum.Failed, FailedEntry{Date: pair.date, Reason: err.Error()})
			continue
		}
		sum.Dates = append(sum.Dates, pair.date)
		if len(failed) == 0 {
			updates <- ProgressUpdate{Date: pair.date, CompletedAt: time.Now().UTC().Format(time.RFC3339)}
		}
	}
	close(updates)
	<-writerDone

	p.logger.Info("processing done", "dates", len(sum.Dates), "files", len(sum.Success), "failed", len(sum.Failed))
	return sum, runErr
}

// discover pairs <date>_instrument_df with <date>_tick_data, ascending by date.
// missing lists dates with an instrument file but no tick file.
func discover(dataDir string) (pairs []datePair, missing []string, err error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("data directory: %w", err)
	}
	instruments := make(map[string]string)
	ticks := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		switch {
		case strings.HasSuffix(name, InstrumentSuffix):
			instruments[datePrefix(name)] = filepath.Join(dataDir, name)
		case strings.HasSuffix(name, TickSuffix):
			ticks[datePrefix(name)] = filepath.Join(dataDir, name)
		}
	}
	if len(instruments) == 0 || len(ticks) == 0 {
		return nil, nil, fmt.Errorf("%w in %s", ErrNoInputFiles, dataDir)
	}

	dates := make([]string, 0, len(instruments))
	for d := range instruments {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for _, d := range dates {
		tp, ok := ticks[d]
		if !ok {
			missing = append(missing, d)
			continue
		}
		pairs = append(pairs, datePair{date: d, instrumentPath: instruments[d], tickPath: tp})
	}
	return pairs, missing, nil
}

func datePrefix(name string) string {
	if i := strings.Index(name, "_"); i >= 0 {
		return name[:i]
	}
	return name
}

// processDate writes the index and its option chain for one date. A returned error
// means the whole date failed.
func (p *Processor) processDate(ctx context.Context, pair datePair, outputDir string) ([]InstrumentResult, []FailedEntry, error) {
	logger := p.logger.With("date", pair.date)
	logger.Info("processing date")

	day, err := time.ParseInLocation(DateLayout, pair.date, p.opts.Location)
	if err != nil {
		return nil, nil, fmt.Errorf("date prefix %q: %w", pair.date, err)
	}
	instruments, err := source.ReadInstrumentFile(pair.instrumentPath)
	if err != nil {
		return nil, nil, err
	}
	ticks, err := source.ReadTickFile(pair.tickPath, p.opts.Location)
	if err != nil {
		return nil, nil, err
	}
	if n := ticks.RejectedTotal(); n > 0 {
		logger.Warn("malformed tick records", "count", n, "strict", p.opts.Strict)
	}
	if rej := ticks.Rejected(source.UnattributedToken); rej != nil && p.opts.Strict {
		return nil, nil, fmt.Errorf("%d records without a readable token: %w", rej.Count, rej.First)
	}

	dateDir := filepath.Join(outputDir, pair.date)

	var results []InstrumentResult
	var failed []FailedEntry

	index, err := p.opts.Rules.Index(instruments)
	if err != nil {
		logger.Warn("index instrument not found, skip options", "symbol", p.opts.Rules.IndexSymbol)
		return nil, nil, fmt.Errorf("%w: %w", errNoIndex, err)
	}
	indexBars, res, err := p.writeInstrument(index, ticks, day, dateDir, logger)
	if err != nil {
		failed = append(failed, FailedEntry{Date: pair.date, Symbol: index.Output, Reason: err.Error()})
		return nil, failed, nil
	}
	if res == nil {
		logger.Warn("no index ticks, skip options", "symbol", index.Output, "token", index.Instrument.Token)
		return nil, nil, fmt.Errorf("%w: no ticks for %s", errNoIndex, index.Output)
	}
	results = append(results, *res)

	lo, hi, _ := p.opts.Rules.StrikeWindow(indexBars)
	options := p.opts.Rules.Options(instruments, p.opts.Rules.StrikeSuffixes(lo, hi))
	logger.Info("options selected", "count", len(options), "strike_lo", lo, "strike_hi", hi)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for _, target := range options {
		target := target
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, res, err := p.writeInstrument(target, ticks, day, dateDir, logger)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, FailedEntry{Date: pair.date, Symbol: target.Output, Reason: err.Error()})
			} else if res != nil {
				results = append(results, *res)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, failed, err
	}
	if err := ctx.Err(); err != nil {
		return results, failed, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Symbol < results[j].Symbol })
	sort.Slice(failed, func(i, j int) bool { return failed[i].Symbol < failed[j].Symbol })
	logger.Info("date complete", "files", len(results), "failed", len(failed))
	return results, failed, nil
}

// writeInstrument aggregates and saves one instrument and returns the bars it wrote. A nil
// result with a nil error means the instrument had nothing to write.
func (p *Processor) writeInstrument(target selector.Target, ticks *source.TickSet, day time.Time, dateDir string, logger *slog.Logger) ([]model.Bar, *InstrumentResult, error) {
	token := target.Instrument.Token
	logger = logger.With("symbol", target.Output, "token", token)

	tt := ticks.Ticks(token)
	var rejected int
	if rej := ticks.Rejected(token); rej != nil {
		if p.opts.Strict {
			return nil, nil, fmt.Errorf("%d malformed records: %w", rej.Count, rej.First)
		}
		rejected = rej.Count
		logger.Warn("skipped malformed records", "count", rej.Count, "first", rej.First)
	}
	if len(tt) == 0 {
		logger.Debug("no ticks, nothing written")
		return nil, nil, nil
	}

	bars := ohlc.Aggregate(tt)
	written := bars
	if p.opts.Session != nil {
		start, end := p.opts.Session.On(day)
		written = ohlc.FillSession(bars, start, end)
		if len(written) == 0 {
			logger.Debug("no ticks inside session, nothing written")
			return nil, nil, nil
		}
	}

	if err := os.MkdirAll(dateDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create date dir: %w", err)
	}
	path := filepath.Join(dateDir, fileStem(target.Output)+"."+p.saver.Extension())
	if err := p.saver.Save(written, path); err != nil {
		return nil, nil, fmt.Errorf("save %s: %w", filepath.Base(path), err)
	}
	logger.Info("saved", "path", path, "ticks", len(tt), "bars", len(written))
	return written, &InstrumentResult{
		Date:     day.Format(DateLayout),
		Symbol:   target.Output,
		Token:    token,
		Ticks:    len(tt),
		Rejected: rejected,
		Bars:     len(written),
		Path:     path,
	}, nil
}

// fileStem keeps symbols usable as file names.
func fileStem(symbol string) string {
	return strings.NewReplacer("/", "_", "\\", "_", " ", "").Replace(symbol)
}
