package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar represents one 1-second OHLC row of a single instrument.
// Dùng chung cho ohlc, saver và serialization (csv, json, parquet).
type Bar struct {
	Timestamp time.Time       `json:"timestamp"` // bucket start, whole second
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
}

// TimestampLayout is the second-precision layout used in output files.
const TimestampLayout = "2006-01-02 15:04:05"
