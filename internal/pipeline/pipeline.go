// Package pipeline runs the end-to-end conversion: extract the input archives in two stages
// into a temporary workspace, rename the extracted files date-first, aggregate, and clean up.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"nfo-ohlc/internal/archive"
	"nfo-ohlc/internal/process"
	"nfo-ohlc/internal/rename"
)

const (
	// InitialStage unpacks the input archives into the first workspace folder.
	InitialStage = "initial"
	// IntermediateStage unpacks the archives found after the initial stage.
	IntermediateStage = "intermediate"

	initialDir      = "data2"
	intermediateDir = "data3"
)

// Options configures a Pipeline.
type Options struct {
	InputPath  string
	OutputPath string
	TempDir    string // parent of the temporary workspace; empty uses the OS default
	KeepTemp   bool
}

// Pipeline wires the stages together.
type Pipeline struct {
	opts      Options
	extractor archive.Extractor
	processor *process.Processor
	logger    *slog.Logger
}

// New creates a Pipeline.
func New(opts Options, ex archive.Extractor, p *process.Processor, logger *slog.Logger) *Pipeline {
	return &Pipeline{opts: opts, extractor: ex, processor: p, logger: logger}
}

// Result is the outcome of one Run.
type Result struct {
	Workspace string
	Stages    []archive.StageResult
	Renamed   rename.Result
	Summary   *process.Summary
}

// Run executes every step. The workspace is removed on return, whatever the outcome,
// unless KeepTemp is set.
func (p *Pipeline) Run(ctx context.Context) (res *Result, err error) {
	p.logger.Info("pipeline start", "input", p.opts.InputPath, "output", p.opts.OutputPath, "extractor", p.extractor.Name())

	ws, err := os.MkdirTemp(p.opts.TempDir, "nfo-ohlc-*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	res = &Result{Workspace: ws}
	defer func() {
		if p.opts.KeepTemp {
			p.logger.Info("keeping workspace", "dir", ws)
			return
		}
		if rerr := os.RemoveAll(ws); rerr != nil {
			p.logger.Warn("could not remove workspace", "dir", ws, "error", rerr)
			return
		}
		p.logger.Debug("workspace removed", "dir", ws)
	}()

	data2 := filepath.Join(ws, initialDir)
	data3 := filepath.Join(ws, intermediateDir)

	st, err := archive.ExtractAll(ctx, p.extractor, InitialStage, p.opts.InputPath, data2, p.logger)
	res.Stages = append(res.Stages, st)
	if err != nil {
		return res, err
	}
	st, err = archive.ExtractAll(ctx, p.extractor, IntermediateStage, data2, data3, p.logger)
	res.Stages = append(res.Stages, st)
	if err != nil {
		return res, err
	}

	res.Renamed, err = rename.Dir(data3, p.logger)
	if err != nil {
		return res, fmt.Errorf("rename: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	res.Summary, err = p.processor.Run(ctx, data3, p.opts.OutputPath)
	if err != nil {
		return res, err
	}
	p.logger.Info("pipeline done", "run_id", res.Summary.RunID, "files", len(res.Summary.Success), "failed", len(res.Summary.Failed))
	return res, res.Summary.Err()
}
