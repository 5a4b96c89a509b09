package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tick is a single trade/quote event of one instrument, immutable once read.
type Tick struct {
	Token     string
	Timestamp time.Time
	Price     decimal.Decimal
	Quantity  int64 // 0 when the source has no quantity column
}
