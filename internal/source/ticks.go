// Package source reads the per-date tick and instrument files produced by extraction.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"nfo-ohlc/internal/model"
)

// TimestampLayouts are tried in order when parsing tick timestamps.
var TimestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
}

// UnattributedToken keys rejects whose instrument token could not be read.
const UnattributedToken = ""

// Reject counts the malformed records of one token.
type Reject struct {
	Count int
	First error
}

// TickSet holds one file's ticks split by instrument token, in file order.
type TickSet struct {
	ByToken map[string][]model.Tick
	Rejects map[string]*Reject
	Total   int
}

// Ticks returns the ticks of token in file order.
func (s *TickSet) Ticks(token string) []model.Tick {
	return s.ByToken[token]
}

// Rejected returns the malformed record summary of token, nil when none.
func (s *TickSet) Rejected(token string) *Reject {
	return s.Rejects[token]
}

// RejectedTotal returns the number of malformed records across all tokens.
func (s *TickSet) RejectedTotal() int {
	var n int
	for _, r := range s.Rejects {
		n += r.Count
	}
	return n
}

// Tokens returns every token with at least one tick, sorted.
func (s *TickSet) Tokens() []string {
	tokens := make([]string, 0, len(s.ByToken))
	for t := range s.ByToken {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return tokens
}

func (s *TickSet) reject(token string, err error) {
	r, ok := s.Rejects[token]
	if !ok {
		r = &Reject{First: err}
		s.Rejects[token] = r
	}
	r.Count++
}

// ReadTickFile reads a tick file. Naive timestamps are interpreted in loc.
func ReadTickFile(path string, loc *time.Location) (*TickSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tick file: %w", err)
	}
	defer f.Close()
	return ReadTicks(f, filepath.Base(path), loc)
}

// ReadTicks parses delimited tick records from r. name labels errors.
//
// Malformed records never fail the read; they are counted in TickSet.Rejects under their
// token, or under UnattributedToken when the token itself is unreadable.
func ReadTicks(r io.Reader, name string, loc *time.Location) (*TickSet, error) {
	if loc == nil {
		loc = time.UTC
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty tick file", name)
		}
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}
	h := newHeader(head)
	tokenCol, err := h.require(name, "instrument_token", "token")
	if err != nil {
		return nil, err
	}
	tsCol, err := h.require(name, "timestamp", "exchange_timestamp", "time")
	if err != nil {
		return nil, err
	}
	priceCol, err := h.require(name, "price", "last_price", "ltp")
	if err != nil {
		return nil, err
	}
	qtyCol := h.find("quantity", "volume", "last_quantity", "last_traded_quantity")

	set := &TickSet{
		ByToken: make(map[string][]model.Tick),
		Rejects: make(map[string]*Reject),
	}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			set.reject(UnattributedToken, &RecordError{File: name, Line: pe.Line, Field: "row", Err: pe.Err})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		line, _ := cr.FieldPos(0)

		token := field(row, tokenCol)
		if token == "" {
			set.reject(UnattributedToken, &RecordError{File: name, Line: line, Field: "instrument_token", Err: errors.New("empty")})
			continue
		}
		if _, err := strconv.ParseUint(token, 10, 64); err != nil {
			set.reject(UnattributedToken, &RecordError{File: name, Line: line, Field: "instrument_token", Value: token, Err: err})
			continue
		}
		tick, err := parseTick(row, token, tsCol, priceCol, qtyCol, loc)
		if err != nil {
			var re *RecordError
			if errors.As(err, &re) {
				re.File, re.Line = name, line
			}
			set.reject(token, err)
			continue
		}
		set.ByToken[token] = append(set.ByToken[token], tick)
		set.Total++
	}
	return set, nil
}

func parseTick(row []string, token string, tsCol, priceCol, qtyCol int, loc *time.Location) (model.Tick, error) {
	rawTS := field(row, tsCol)
	ts, err := ParseTimestamp(rawTS, loc)
	if err != nil {
		return model.Tick{}, &RecordError{Field: "timestamp", Value: rawTS, Err: err}
	}
	rawPrice := field(row, priceCol)
	price, err := decimal.NewFromString(rawPrice)
	if err != nil {
		return model.Tick{}, &RecordError{Field: "price", Value: rawPrice, Err: err}
	}
	// quantity is informational; exported as "75" or "75.0", unreadable values count as 0
	var qty int64
	if q, err := decimal.NewFromString(field(row, qtyCol)); err == nil {
		qty = q.IntPart()
	}
	return model.Tick{Token: token, Timestamp: ts, Price: price, Quantity: qty}, nil
}

// ParseTimestamp parses a tick timestamp with TimestampLayouts. Naive timestamps are read
// in loc; timestamps carrying an offset are converted to loc.
func ParseTimestamp(v string, loc *time.Location) (time.Time, error) {
	if v == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	var firstErr error
	for _, layout := range TimestampLayouts {
		ts, err := time.ParseInLocation(layout, v, loc)
		if err == nil {
			return ts.In(loc), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
