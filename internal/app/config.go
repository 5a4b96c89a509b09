package app

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"

	"nfo-ohlc/internal/ohlc"
	"nfo-ohlc/internal/selector"
)

// EnvPrefix prefixes every environment variable, e.g. NFO_INPUT_PATH.
const EnvPrefix = "NFO"

// Config holds application configuration from env
type Config struct {
	InputPath    string `envconfig:"INPUT_PATH" default:"Input_Zip" validate:"required"`
	OutputPath   string `envconfig:"OUTPUT_PATH" default:"Output_CSV" validate:"required"`
	ArchiverPath string `envconfig:"ARCHIVER_PATH" default:"7z"`
	Archiver     string `envconfig:"ARCHIVER" default:"7z" validate:"oneof=7z builtin"`
	SaveFormat   string `envconfig:"SAVE_FORMAT" default:"csv" validate:"oneof=csv json parquet"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn warning error"` // debug | info | warn | error
	LogFormat    string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`

	Workers  int    `envconfig:"WORKERS" default:"1" validate:"min=1,max=256"`
	Strict   bool   `envconfig:"STRICT"`
	Resume   bool   `envconfig:"RESUME"`
	KeepTemp bool   `envconfig:"KEEP_TEMP"`
	TempDir  string `envconfig:"TEMP_DIR"`

	SessionFill  bool   `envconfig:"SESSION_FILL"`
	SessionStart string `envconfig:"SESSION_START" default:"09:15:00" validate:"required"`
	SessionEnd   string `envconfig:"SESSION_END" default:"15:29:59" validate:"required"`

	IndexSymbol     string `envconfig:"INDEX_SYMBOL" default:"NIFTY BANK" validate:"required"`
	IndexOutput     string `envconfig:"INDEX_OUTPUT" default:"NIFTYBANK" validate:"required"`
	OptionsName     string `envconfig:"OPTIONS_NAME" default:"BANKNIFTY" validate:"required"`
	OptionsExchange string `envconfig:"OPTIONS_EXCHANGE" default:"NFO" validate:"required"`
	StrikeStep      int64  `envconfig:"STRIKE_STEP" default:"100" validate:"gt=0"`
	StrikePadding   int64  `envconfig:"STRIKE_PADDING" default:"200" validate:"gte=0"`
}

// Flags are command-line overrides. Empty values keep the environment's.
type Flags struct {
	InputPath    string
	OutputPath   string
	ArchiverPath string
	SaveFormat   string
}

// LoadConfig reads config from environment, applies flags and validates the result.
func LoadConfig(flags Flags) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	cfg.apply(flags)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) apply(f Flags) {
	if f.InputPath != "" {
		c.InputPath = f.InputPath
	}
	if f.OutputPath != "" {
		c.OutputPath = f.OutputPath
	}
	if f.ArchiverPath != "" {
		c.ArchiverPath = f.ArchiverPath
	}
	if f.SaveFormat != "" {
		c.SaveFormat = f.SaveFormat
	}
}

// Validate checks field constraints and the session bounds.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if _, err := ohlc.ParseSession(c.SessionStart, c.SessionEnd); err != nil {
		return err
	}
	return nil
}

// Rules returns the instrument selection rules.
func (c *Config) Rules() selector.Rules {
	return selector.Rules{
		IndexSymbol:     c.IndexSymbol,
		IndexOutput:     c.IndexOutput,
		OptionsName:     c.OptionsName,
		OptionsExchange: c.OptionsExchange,
		StrikeStep:      c.StrikeStep,
		StrikePadding:   c.StrikePadding,
	}
}

// Session returns the fill session, nil when SessionFill is off.
func (c *Config) Session() (*ohlc.Session, error) {
	if !c.SessionFill {
		return nil, nil
	}
	s, err := ohlc.ParseSession(c.SessionStart, c.SessionEnd)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
