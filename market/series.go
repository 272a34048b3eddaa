package market

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"
)

// Series maps a calendar date to that day's bars. The supplier guarantees
// each day's bars are sorted ascending by Time and deduplicated.
type Series map[civil.Date][]Bar

// DateRange is the half-open interval [Start, End).
type DateRange struct {
	Start civil.Date
	End   civil.Date
}

// NewDateRange converts two timestamps into a DateRange on their calendar days.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: civil.DateOf(start), End: civil.DateOf(end)}
}

// Contains reports Start <= d < End. Invalid dates are never contained.
func (r DateRange) Contains(d civil.Date) bool {
	if !d.IsValid() {
		return false
	}
	return !d.Before(r.Start) && d.Before(r.End)
}

// Days returns every calendar day in the range in order. An empty or
// inverted range yields nil.
func (r DateRange) Days() []civil.Date {
	if !r.Start.IsValid() || !r.End.IsValid() {
		return nil
	}
	var out []civil.Date
	for d := r.Start; d.Before(r.End); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

// Dates returns the series' dates that fall inside r, ascending.
func (s Series) Dates(r DateRange) []civil.Date {
	out := make([]civil.Date, 0, len(s))
	for d := range s {
		if r.Contains(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Add appends bars to their calendar days. Callers feeding Add are still
// responsible for ordering; Normalize can be used afterwards.
func (s Series) Add(bars ...Bar) {
	for _, b := range bars {
		d := civil.DateOf(b.Time)
		s[d] = append(s[d], b)
	}
}

// Normalize sorts each day ascending and drops bars repeating a
// (Time, Interval) pair, keeping the first seen.
func (s Series) Normalize() {
	for d, bars := range s {
		sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
		out := bars[:0]
		for i, b := range bars {
			if i > 0 && b.Time.Equal(out[len(out)-1].Time) && b.Interval == out[len(out)-1].Interval {
				continue
			}
			out = append(out, b)
		}
		s[d] = out
	}
}
