package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"nfo-ohlc/internal/app"
	"nfo-ohlc/internal/slogx"
)

func init() {
	slog.SetDefault(slogx.NewDefault("info"))
}

func main() {
	var flags app.Flags
	flag.StringVar(&flags.InputPath, "in", "", "folder holding the input archives (overrides NFO_INPUT_PATH)")
	flag.StringVar(&flags.OutputPath, "out", "", "output root (overrides NFO_OUTPUT_PATH)")
	flag.StringVar(&flags.ArchiverPath, "archiver", "", "7-Zip executable (overrides NFO_ARCHIVER_PATH)")
	flag.StringVar(&flags.SaveFormat, "format", "", "output format: csv, json, parquet (overrides NFO_SAVE_FORMAT)")
	flag.Parse()

	a, err := InitializeApp(flags)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}

	cfg := a.Config
	a.Logger.Info("config",
		"input", cfg.InputPath,
		"output", cfg.OutputPath,
		"archiver", cfg.Archiver,
		"format", cfg.SaveFormat,
		"workers", cfg.Workers,
		"strict", cfg.Strict,
		"session_fill", cfg.SessionFill)

	err = app.RunFlow(context.Background(), a.Pipeline, a.Logger)
	os.Exit(app.ExitCode(err))
}
