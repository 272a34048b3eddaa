package market

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Interval tags the duration a Bar covers.
type Interval string

const (
	OneMinute     Interval = "1m"
	FiveMinute    Interval = "5m"
	TenMinute     Interval = "10m"
	FifteenMinute Interval = "15m"
	ThirtyMinute  Interval = "30m"
	OneHour       Interval = "1h"
	OneDay        Interval = "1d"
)

var intervals = map[Interval]time.Duration{
	OneMinute:     time.Minute,
	FiveMinute:    5 * time.Minute,
	TenMinute:     10 * time.Minute,
	FifteenMinute: 15 * time.Minute,
	ThirtyMinute:  30 * time.Minute,
	OneHour:       time.Hour,
	OneDay:        24 * time.Hour,
}

// ParseInterval accepts the short tags ("5m", "1h") case-insensitively.
func ParseInterval(s string) (Interval, error) {
	iv := Interval(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := intervals[iv]; !ok {
		return "", fmt.Errorf("market: unknown interval %q", s)
	}
	return iv, nil
}

// Duration returns the wall-clock length of the interval, 0 if unknown.
func (iv Interval) Duration() time.Duration {
	return intervals[iv]
}

// Bar represents one OHLC quote for a fixed interval starting at Time.
// Bars are supplied by the caller and never mutated.
type Bar struct {
	Time     time.Time
	Interval Interval

	Open  float64
	High  float64
	Low   float64
	Close float64
}

// IsBullish reports a close above the open.
func (b Bar) IsBullish() bool {
	return b.Close > b.Open
}

// IsBearish reports a close below the open.
func (b Bar) IsBearish() bool {
	return b.Close < b.Open
}

// Range is the high-low span, always non-negative.
func (b Bar) Range() float64 {
	return math.Abs(b.High - b.Low)
}

// IsHammer is true when both open and close sit in the upper half of the range.
func (b Bar) IsHammer() bool {
	top := b.High - b.Range()/2
	return b.Open >= top && b.Close >= top
}

// IsTombstone is the inverse of IsHammer.
func (b Bar) IsTombstone() bool {
	bottom := b.Low + b.Range()/2
	return b.Open <= bottom && b.Close <= bottom
}

func (b Bar) HasBullishIndication() bool {
	return b.IsBullish() || b.IsHammer()
}

func (b Bar) HasBearishIndication() bool {
	return b.IsBearish() || b.IsTombstone()
}

// IsMutuallyExclusive reports whether b strictly engulfs other, i.e. it
// trades both above other's high and below other's low.
func (b Bar) IsMutuallyExclusive(other Bar) bool {
	return b.High > other.High && b.Low < other.Low
}

// At reports whether the bar opens at the given hour and minute.
func (b Bar) At(hour, minute int) bool {
	return b.Time.Hour() == hour && b.Time.Minute() == minute
}
