package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Instrument is one row of the daily instrument master.
type Instrument struct {
	Token          string
	TradingSymbol  string
	Name           string
	InstrumentType string
	Segment        string
	Exchange       string
	Expiry         time.Time // zero when the instrument has no expiry
	Strike         decimal.Decimal
}

// HasExpiry reports whether the instrument carries an expiry date.
func (i Instrument) HasExpiry() bool { return !i.Expiry.IsZero() }
