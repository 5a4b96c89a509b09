//go:build wireinject
// +build wireinject

package main

import (
	"log/slog"

	"nfo-ohlc/internal/app"
	"nfo-ohlc/internal/pipeline"

	"github.com/google/wire"
)

// App holds application dependencies built by Wire.
type App struct {
	Config   *app.Config
	Logger   *slog.Logger
	Pipeline *pipeline.Pipeline
}

// InitializeApp builds App (Config + Logger + Pipeline) via Wire.
func InitializeApp(flags app.Flags) (*App, error) {
	wire.Build(
		app.ProvideConfig,
		app.ProvideLogger,
		app.ProvideBarSaver,
		app.ProvideExtractor,
		app.ProvideProcessor,
		app.ProvidePipeline,
		wire.Struct(new(App), "Config", "Logger", "Pipeline"),
	)
	return nil, nil
}
