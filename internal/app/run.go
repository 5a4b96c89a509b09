package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nfo-ohlc/internal/pipeline"
)

// RunFlow runs the pipeline once. SIGINT/SIGTERM cancel the run; the workspace is still
// cleaned up before RunFlow returns.
func RunFlow(ctx context.Context, p *pipeline.Pipeline, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	res, err := p.Run(ctx)
	elapsed := time.Since(started).Round(time.Millisecond)

	switch {
	case errors.Is(err, context.Canceled):
		logger.Warn("received signal, run cancelled", "elapsed", elapsed)
	case err != nil:
		logger.Error("run failed", "error", err, "elapsed", elapsed)
	default:
		logger.Info("run complete", "elapsed", elapsed)
	}
	if res != nil && res.Summary != nil {
		sum := res.Summary
		logger.Info("summary",
			"run_id", sum.RunID,
			"dates", len(sum.Dates),
			"skipped", len(sum.Skipped),
			"missing_tick_data", len(sum.Missing),
			"no_index_data", len(sum.NoIndex),
			"files", len(sum.Success),
			"failed", len(sum.Failed))
	}
	return err
}

// ExitCode maps a RunFlow error to the process exit status.
func ExitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}
