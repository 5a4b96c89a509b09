package ohlc

import (
	"fmt"
	"time"

	"nfo-ohlc/internal/model"
)

// SessionLayout is the clock layout of session bounds.
const SessionLayout = "15:04:05"

// Session is a trading session expressed as wall-clock bounds, both inclusive.
type Session struct {
	Start time.Duration // offset from midnight
	End   time.Duration
}

// ParseSession parses "HH:MM:SS" bounds.
func ParseSession(start, end string) (Session, error) {
	s, err := parseClock(start)
	if err != nil {
		return Session{}, fmt.Errorf("session start: %w", err)
	}
	e, err := parseClock(end)
	if err != nil {
		return Session{}, fmt.Errorf("session end: %w", err)
	}
	if e < s {
		return Session{}, fmt.Errorf("session end %s before start %s", end, start)
	}
	return Session{Start: s, End: e}, nil
}

func parseClock(v string) (time.Duration, error) {
	t, err := time.Parse(SessionLayout, v)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second, nil
}

// On returns the absolute session bounds for a trading day, in the day's location.
func (s Session) On(day time.Time) (start, end time.Time) {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return midnight.Add(s.Start), midnight.Add(s.End)
}

// FillSession lays bars onto a one-per-second grid over [start, end].
//
// Seconds without a bar repeat the previous bar's prices; seconds before the first
// in-session bar take the first in-session bar's prices. Bars outside the session are
// dropped. bars must be ascending, as returned by Aggregate. No bars in the session
// yields no bars.
func FillSession(bars []model.Bar, start, end time.Time) []model.Bar {
	start, end = BucketKey(start), BucketKey(end)
	inSession := make([]model.Bar, 0, len(bars))
	for _, b := range bars {
		if b.Timestamp.Before(start) || b.Timestamp.After(end) {
			continue
		}
		inSession = append(inSession, b)
	}
	if len(inSession) == 0 {
		return nil
	}

	n := int(end.Sub(start)/Bucket) + 1
	out := make([]model.Bar, 0, n)
	prev := inSession[0]
	next := 0
	for ts := start; !ts.After(end); ts = ts.Add(Bucket) {
		if next < len(inSession) && inSession[next].Timestamp.Equal(ts) {
			prev = inSession[next]
			next++
			out = append(out, prev)
			continue
		}
		filled := prev
		filled.Timestamp = ts
		out = append(out, filled)
	}
	return out
}
