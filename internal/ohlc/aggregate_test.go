package ohlc

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nfo-ohlc/internal/model"
)

var base = time.Date(2025, 9, 19, 9, 15, 0, 0, time.UTC)

func tick(offset time.Duration, price string) model.Tick {
	return model.Tick{Token: "260105", Timestamp: base.Add(offset), Price: decimal.RequireFromString(price)}
}

func assertPrices(t *testing.T, b model.Bar, open, high, low, close string) {
	t.Helper()
	assert.Equal(t, open, b.Open.String(), "open")
	assert.Equal(t, high, b.High.String(), "high")
	assert.Equal(t, low, b.Low.String(), "low")
	assert.Equal(t, close, b.Close.String(), "close")
}

func TestAggregate_BucketPrices(t *testing.T) {
	ticks := []model.Tick{
		tick(100*time.Millisecond, "101"),
		tick(300*time.Millisecond, "99"),
		tick(500*time.Millisecond, "103"),
		tick(900*time.Millisecond, "100"),
	}

	bars := Aggregate(ticks)

	require.Len(t, bars, 1)
	assert.True(t, bars[0].Timestamp.Equal(base))
	assertPrices(t, bars[0], "101", "103", "99", "100")
}

func TestAggregate_SingleTick(t *testing.T) {
	bars := Aggregate([]model.Tick{tick(250*time.Millisecond, "100")})

	require.Len(t, bars, 1)
	assertPrices(t, bars[0], "100", "100", "100", "100")
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
	assert.Empty(t, Aggregate([]model.Tick{}))
}

func TestAggregate_GapsAreNotFilled(t *testing.T) {
	bars := Aggregate([]model.Tick{
		tick(0, "10"),
		tick(5*time.Second, "11"),
	})

	require.Len(t, bars, 2)
	assert.True(t, bars[0].Timestamp.Equal(base))
	assert.True(t, bars[1].Timestamp.Equal(base.Add(5*time.Second)))
}

func TestAggregate_OutOfOrderMatchesSorted(t *testing.T) {
	sorted := []model.Tick{
		tick(10*time.Millisecond, "50"),
		tick(400*time.Millisecond, "52"),
		tick(800*time.Millisecond, "49"),
		tick(1200*time.Millisecond, "51"),
		tick(1900*time.Millisecond, "53"),
		tick(3050*time.Millisecond, "48"),
	}
	shuffled := []model.Tick{sorted[4], sorted[1], sorted[5], sorted[0], sorted[3], sorted[2]}

	assert.Equal(t, Aggregate(sorted), Aggregate(shuffled))

	bars := Aggregate(shuffled)
	require.Len(t, bars, 3)
	assertPrices(t, bars[0], "50", "52", "49", "49")
	assertPrices(t, bars[1], "51", "53", "51", "53")
	assertPrices(t, bars[2], "48", "48", "48", "48")
}

func TestAggregate_EqualTimestampsKeepArrivalOrder(t *testing.T) {
	bars := Aggregate([]model.Tick{
		tick(500*time.Millisecond, "7"),
		tick(100*time.Millisecond, "5"),
		tick(500*time.Millisecond, "8"),
	})

	require.Len(t, bars, 1)
	assertPrices(t, bars[0], "5", "8", "5", "8")
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	ticks := []model.Tick{tick(2*time.Second, "2"), tick(time.Second, "1")}
	before := append([]model.Tick(nil), ticks...)

	Aggregate(ticks)

	assert.Equal(t, before, ticks)
}

func TestAggregate_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		n := rng.Intn(400)
		ticks := make([]model.Tick, n)
		for i := range ticks {
			offset := time.Duration(rng.Int63n(int64(90 * time.Second)))
			price := decimal.NewFromInt(int64(45000 + rng.Intn(500))).Div(decimal.NewFromInt(20))
			ticks[i] = model.Tick{Timestamp: base.Add(offset), Price: price}
		}

		bars := Aggregate(ticks)
		again := Aggregate(ticks)
		assert.Equal(t, bars, again, "deterministic")

		for i, b := range bars {
			assert.True(t, b.Low.LessThanOrEqual(b.Open) && b.Open.LessThanOrEqual(b.High), "open within range")
			assert.True(t, b.Low.LessThanOrEqual(b.Close) && b.Close.LessThanOrEqual(b.High), "close within range")
			assert.Equal(t, 0, b.Timestamp.Nanosecond(), "whole second")
			if i > 0 {
				assert.True(t, bars[i-1].Timestamp.Before(b.Timestamp), "strictly ascending")
			}
		}
	}
}

func BenchmarkAggregate(b *testing.B) {
	ticks := make([]model.Tick, 0, 200_000)
	for i := 0; i < cap(ticks); i++ {
		ticks = append(ticks, model.Tick{
			Timestamp: base.Add(time.Duration(i) * 110 * time.Millisecond),
			Price:     decimal.NewFromInt(int64(48000 + i%300)),
		})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Aggregate(ticks)
	}
}
