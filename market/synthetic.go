package market

import (
	"math"
	"math/rand"
	"time"

	"cloud.google.com/go/civil"
)

// Synthetic generates a seeded random walk of five-minute session bars
// from 09:30 to 16:00 on the weekdays of r, in loc. The same seed always
// yields the same bars.
func Synthetic(r DateRange, start float64, seed int64, loc *time.Location) []Bar {
	if loc == nil {
		loc = time.UTC
	}
	rng := rand.New(rand.NewSource(seed))
	price := start

	var out []Bar
	for _, d := range r.Days() {
		if wd := d.In(loc).Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		out = append(out, session(d, &price, rng, loc)...)
	}
	return out
}

func session(d civil.Date, price *float64, rng *rand.Rand, loc *time.Location) []Bar {
	open := d.In(loc).Add(9*time.Hour + 30*time.Minute)
	var out []Bar
	for t := open; !t.After(open.Add(390 * time.Minute)); t = t.Add(5 * time.Minute) {
		o := *price
		c := o + rng.NormFloat64()*4
		hi := math.Max(o, c) + rng.Float64()*3
		lo := math.Min(o, c) - rng.Float64()*3
		out = append(out, Bar{
			Time:     t,
			Interval: FiveMinute,
			Open:     round2(o),
			High:     round2(hi),
			Low:      round2(lo),
			Close:    round2(c),
		})
		*price = c
	}
	return out
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
