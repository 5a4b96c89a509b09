// Package ohlc turns raw ticks into 1-second OHLC bars.
package ohlc

import (
	"slices"
	"time"

	"nfo-ohlc/internal/model"
)

// Bucket is the bar width.
const Bucket = time.Second

// BucketKey returns the start of the bucket a timestamp falls into.
func BucketKey(ts time.Time) time.Time {
	return ts.Truncate(Bucket)
}

// Aggregate builds one bar per distinct bucket present in ticks, ascending by bucket.
//
// Ticks need not be sorted. They are stably sorted by timestamp first, so open and close
// are resolved by timestamp and ties keep arrival order. The input slice is not modified.
// Seconds without ticks produce no bar.
func Aggregate(ticks []model.Tick) []model.Bar {
	if len(ticks) == 0 {
		return nil
	}

	sorted := slices.Clone(ticks)
	slices.SortStableFunc(sorted, func(a, b model.Tick) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	bars := make([]model.Bar, 0, estimateBars(sorted))
	var cur *model.Bar
	for _, t := range sorted {
		key := BucketKey(t.Timestamp)
		if cur == nil || !cur.Timestamp.Equal(key) {
			bars = append(bars, model.Bar{
				Timestamp: key,
				Open:      t.Price,
				High:      t.Price,
				Low:       t.Price,
				Close:     t.Price,
			})
			cur = &bars[len(bars)-1]
			continue
		}
		if t.Price.GreaterThan(cur.High) {
			cur.High = t.Price
		}
		if t.Price.LessThan(cur.Low) {
			cur.Low = t.Price
		}
		cur.Close = t.Price
	}
	return bars
}

// estimateBars returns the number of seconds spanned by sorted ticks, capped by the tick count.
func estimateBars(sorted []model.Tick) int {
	span := int(BucketKey(sorted[len(sorted)-1].Timestamp).Sub(BucketKey(sorted[0].Timestamp))/Bucket) + 1
	if span > len(sorted) || span <= 0 {
		return len(sorted)
	}
	return span
}
