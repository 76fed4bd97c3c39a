package chart

import (
	"math"
	"time"

	"github.com/rewired-gh/arbdash/internal/models"
)

// padFraction is the share of the raw extent added to each end of a domain.
const padFraction = 0.1

// Placeholder domains for series without samples.
var (
	placeholderTime  = TimeDomain{Min: time.Unix(0, 0).UTC(), Max: time.Unix(0, 0).UTC().Add(time.Hour)}
	placeholderPrice = PriceDomain{Min: 0, Max: 1}
)

// TimeDomain is a closed time interval.
type TimeDomain struct {
	Min, Max time.Time
}

// Contains reports whether t lies strictly inside the domain.
func (d TimeDomain) Contains(t time.Time) bool {
	return d.Min.Before(t) && t.Before(d.Max)
}

// Span is the length of the domain.
func (d TimeDomain) Span() time.Duration {
	return d.Max.Sub(d.Min)
}

// PriceDomain is a closed price interval.
type PriceDomain struct {
	Min, Max float64
}

// Contains reports whether p lies strictly inside the domain.
func (d PriceDomain) Contains(p float64) bool {
	return d.Min < p && p < d.Max
}

// timeExtent pads [min(timestamp), max(timestamp)] by 10% of its span at each
// end. A series whose samples share one timestamp gets a minute either side.
func timeExtent(samples []models.Sample) TimeDomain {
	lo, hi := samples[0].Timestamp, samples[0].Timestamp
	for _, s := range samples[1:] {
		if s.Timestamp.Before(lo) {
			lo = s.Timestamp
		}
		if s.Timestamp.After(hi) {
			hi = s.Timestamp
		}
	}

	delta := time.Duration(float64(hi.Sub(lo)) * padFraction)
	if delta <= 0 {
		delta = time.Minute
	}
	return TimeDomain{Min: lo.Add(-delta), Max: hi.Add(delta)}
}

// priceExtent pads the range covering every bid and ask by 10% at each end.
// A flat series, or one whose spread is too narrow for the padding to
// survive rounding, is padded by 10% of its level, or by 1 at zero.
func priceExtent(samples []models.Sample) PriceDomain {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range samples {
		lo = math.Min(lo, math.Min(s.BidPrice, s.AskPrice))
		hi = math.Max(hi, math.Max(s.BidPrice, s.AskPrice))
	}

	delta := (hi - lo) * padFraction
	if !(delta > 0) || lo-delta >= lo || hi+delta <= hi {
		delta = math.Max(math.Abs(lo), math.Abs(hi)) * padFraction
		if delta == 0 {
			delta = 1
		}
	}
	return PriceDomain{Min: lo - delta, Max: hi + delta}
}

// LinearScale maps [D0, D1] onto [R0, R1]. R1 < R0 gives an inverted scale.
type LinearScale struct {
	D0, D1 float64
	R0, R1 float64
}

func (s LinearScale) Map(v float64) float64 {
	if s.D1 == s.D0 {
		return (s.R0 + s.R1) / 2
	}
	return s.R0 + (v-s.D0)/(s.D1-s.D0)*(s.R1-s.R0)
}

// TimeScale maps instants onto a pixel range.
type TimeScale struct {
	Domain TimeDomain
	linear LinearScale
}

func NewTimeScale(d TimeDomain, r0, r1 float64) TimeScale {
	return TimeScale{
		Domain: d,
		linear: LinearScale{D0: 0, D1: d.Span().Seconds(), R0: r0, R1: r1},
	}
}

func (s TimeScale) Map(t time.Time) float64 {
	return s.linear.Map(t.Sub(s.Domain.Min).Seconds())
}

// NewPriceScale maps prices onto [height, 0] so larger prices sit higher.
func NewPriceScale(d PriceDomain, height float64) LinearScale {
	return LinearScale{D0: d.Min, D1: d.Max, R0: height, R1: 0}
}
