package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"nfo-ohlc/internal/archive"
	"nfo-ohlc/internal/pipeline"
	"nfo-ohlc/internal/process"
	"nfo-ohlc/internal/saver"
	"nfo-ohlc/internal/slogx"
)

// ProvideConfig loads config from environment and flags (for Wire).
func ProvideConfig(flags Flags) (*Config, error) {
	return LoadConfig(flags)
}

// ProvideLogger creates the run logger and makes it the slog default (for Wire).
func ProvideLogger(cfg *Config) *slog.Logger {
	logger := slogx.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	return logger
}

// ProvideBarSaver creates BarSaver from config (for Wire).
// Returns error if SaveFormat is not supported.
func ProvideBarSaver(cfg *Config) (saver.BarSaver, error) {
	s := saver.NewBarSaver(cfg.SaveFormat)
	if s == nil {
		return nil, fmt.Errorf("unsupported SAVE_FORMAT %q (use: %s)", cfg.SaveFormat, strings.Join(saver.Formats, ", "))
	}
	return s, nil
}

// ProvideExtractor creates the archive Extractor (for Wire).
func ProvideExtractor(cfg *Config) (archive.Extractor, error) {
	return CreateExtractor(cfg)
}

// ProvideProcessor creates the aggregation stage (for Wire).
func ProvideProcessor(cfg *Config, s saver.BarSaver, logger *slog.Logger) (*process.Processor, error) {
	session, err := cfg.Session()
	if err != nil {
		return nil, err
	}
	return process.New(process.Options{
		Rules:   cfg.Rules(),
		Workers: cfg.Workers,
		Strict:  cfg.Strict,
		Resume:  cfg.Resume,
		Session: session,
	}, s, logger), nil
}

// ProvidePipeline wires the extractor and processor into a Pipeline (for Wire).
func ProvidePipeline(cfg *Config, ex archive.Extractor, p *process.Processor, logger *slog.Logger) *pipeline.Pipeline {
	return pipeline.New(pipeline.Options{
		InputPath:  cfg.InputPath,
		OutputPath: cfg.OutputPath,
		TempDir:    cfg.TempDir,
		KeepTemp:   cfg.KeepTemp,
	}, ex, p, logger)
}
