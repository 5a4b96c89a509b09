package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"nfo-ohlc/internal/model"
)

// ExpiryLayout is the instrument master expiry format.
const ExpiryLayout = "2006-01-02"

// ReadInstrumentFile reads an instrument master file.
func ReadInstrumentFile(path string) ([]model.Instrument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open instrument file: %w", err)
	}
	defer f.Close()
	return ReadInstruments(f, filepath.Base(path))
}

// ReadInstruments parses the instrument master. Rows without a token are skipped;
// an unreadable expiry or strike leaves the field zero.
func ReadInstruments(r io.Reader, name string) ([]model.Instrument, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty instrument file", name)
		}
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}
	h := newHeader(head)
	tokenCol, err := h.require(name, "instrument_token", "token")
	if err != nil {
		return nil, err
	}
	symbolCol, err := h.require(name, "tradingsymbol", "trading_symbol")
	if err != nil {
		return nil, err
	}
	nameCol := h.find("name")
	typeCol := h.find("instrument_type")
	segmentCol := h.find("segment")
	exchangeCol := h.find("exchange")
	expiryCol := h.find("expiry")
	strikeCol := h.find("strike")

	var out []model.Instrument
	var skipped int
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		inst := model.Instrument{
			Token:          field(row, tokenCol),
			TradingSymbol:  field(row, symbolCol),
			Name:           field(row, nameCol),
			InstrumentType: field(row, typeCol),
			Segment:        field(row, segmentCol),
			Exchange:       field(row, exchangeCol),
		}
		if inst.Token == "" {
			skipped++
			continue
		}
		if raw := field(row, expiryCol); raw != "" {
			if exp, err := parseExpiry(raw); err == nil {
				inst.Expiry = exp
			}
		}
		if s, err := decimal.NewFromString(field(row, strikeCol)); err == nil {
			inst.Strike = s
		}
		out = append(out, inst)
	}
	if skipped > 0 {
		slog.Debug("instrument rows skipped", "file", name, "count", skipped)
	}
	return out, nil
}

// parseExpiry accepts a bare date or a pandas-style timestamp.
func parseExpiry(v string) (time.Time, error) {
	if len(v) > len(ExpiryLayout) {
		v = v[:len(ExpiryLayout)]
	}
	return time.ParseInLocation(ExpiryLayout, v, time.UTC)
}
