// Package selector picks the instruments written for a trading date: the index and the
// nearest-expiry options whose strikes bracket the index's traded range.
package selector

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"nfo-ohlc/internal/model"
)

// ErrIndexNotFound is returned when the instrument master has no matching index row.
var ErrIndexNotFound = errors.New("index instrument not found")

// Rules configures selection.
type Rules struct {
	IndexSymbol     string // tradingsymbol and name of the index, e.g. "NIFTY BANK"
	IndexOutput     string // file stem of the index output, e.g. "NIFTYBANK"
	OptionsName     string // underlying name of the options, e.g. "BANKNIFTY"
	OptionsExchange string // e.g. "NFO"
	StrikeStep      int64
	StrikePadding   int64
}

// Target is an instrument and the file stem its bars are written under.
type Target struct {
	Instrument model.Instrument
	Output     string
}

// Index finds the index instrument.
func (r Rules) Index(instruments []model.Instrument) (Target, error) {
	for _, in := range instruments {
		if in.TradingSymbol == r.IndexSymbol &&
			in.Name == r.IndexSymbol &&
			in.InstrumentType == "EQ" &&
			in.Segment == "INDICES" {
			return Target{Instrument: in, Output: r.IndexOutput}, nil
		}
	}
	return Target{}, fmt.Errorf("%w: %q", ErrIndexNotFound, r.IndexSymbol)
}

// StrikeWindow derives the inclusive strike range from the index bars:
// round(min low) - padding .. round(max high) + padding, rounded half-to-even on StrikeStep.
// ok is false when bars is empty.
func (r Rules) StrikeWindow(bars []model.Bar) (lo, hi int64, ok bool) {
	if len(bars) == 0 || r.StrikeStep <= 0 {
		return 0, 0, false
	}
	maxHigh, minLow := bars[0].High, bars[0].Low
	for _, b := range bars[1:] {
		maxHigh = decimal.Max(maxHigh, b.High)
		minLow = decimal.Min(minLow, b.Low)
	}
	step := decimal.NewFromInt(r.StrikeStep)
	roundTo := func(d decimal.Decimal) int64 {
		return d.Div(step).RoundBank(0).Mul(step).IntPart()
	}
	return roundTo(minLow) - r.StrikePadding, roundTo(maxHigh) + r.StrikePadding, true
}

// StrikeSuffixes returns "<strike>CE" and "<strike>PE" for every strike in [lo, hi].
func (r Rules) StrikeSuffixes(lo, hi int64) []string {
	if r.StrikeStep <= 0 || hi < lo {
		return nil
	}
	out := make([]string, 0, 2*((hi-lo)/r.StrikeStep+1))
	for s := lo; s <= hi; s += r.StrikeStep {
		out = append(out, fmt.Sprintf("%dCE", s), fmt.Sprintf("%dPE", s))
	}
	return out
}

// Options returns the nearest-expiry options of the underlying whose trading symbol ends
// with one of suffixes, ordered by trading symbol.
func (r Rules) Options(instruments []model.Instrument, suffixes []string) []Target {
	var chain []model.Instrument
	for _, in := range instruments {
		if in.Name == r.OptionsName && in.Exchange == r.OptionsExchange && in.HasExpiry() {
			chain = append(chain, in)
		}
	}
	if len(chain) == 0 {
		return nil
	}
	nearest := chain[0].Expiry
	for _, in := range chain[1:] {
		if in.Expiry.Before(nearest) {
			nearest = in.Expiry
		}
	}

	var out []Target
	seen := make(map[string]bool)
	for _, in := range chain {
		if !in.Expiry.Equal(nearest) || seen[in.Token] || !hasAnySuffix(in.TradingSymbol, suffixes) {
			continue
		}
		seen[in.Token] = true
		out = append(out, Target{Instrument: in, Output: in.TradingSymbol})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Output < out[j].Output })
	return out
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
