package chart

import (
	"math"
	"strconv"
	"time"
)

// Tick is an axis mark at a pixel offset along its axis.
type Tick struct {
	Pos   float64
	Label string
}

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// niceStep returns a step of 1, 2 or 5 times a power of ten that splits
// [lo, hi] into roughly count intervals, and the number of decimals needed
// to print multiples of it.
func niceStep(lo, hi float64, count int) (float64, int) {
	raw := (hi - lo) / float64(count)
	power := math.Floor(math.Log10(raw))
	ratio := raw / math.Pow(10, power)

	factor := 1.0
	switch {
	case ratio >= e10:
		factor = 10
	case ratio >= e5:
		factor = 5
	case ratio >= e2:
		factor = 2
	}

	step := factor * math.Pow(10, power)
	decimals := 0
	if step > 0 && step < 1 {
		decimals = int(math.Ceil(-math.Log10(step) - 1e-9))
	}
	return step, decimals
}

// maxTickFactor bounds the tick count relative to the requested count. More
// than that means the step has fallen below float64 resolution.
const maxTickFactor = 10

// maxDecimals caps label precision.
const maxDecimals = 12

// priceValues lists the multiples of a nice step inside [lo, hi]. When no
// usable step exists it falls back to the two end points.
func priceValues(lo, hi float64, count int) ([]float64, int) {
	if count < 1 || !(hi > lo) {
		return nil, 0
	}
	step, decimals := niceStep(lo, hi, count)

	first := math.Ceil(lo / step)
	last := math.Floor(hi / step)
	span := last - first
	if math.IsNaN(span) || math.IsInf(span, 0) || span > float64(maxTickFactor*count) {
		return []float64{lo, hi}, min(max(decimals, 0), maxDecimals)
	}

	n := int(span) + 1
	values := make([]float64, 0, max(n, 0))
	for i := 0; i < n; i++ {
		// Rounding to the label precision keeps 0.30000000000000004 out of the labels.
		v, _ := strconv.ParseFloat(strconv.FormatFloat((first+float64(i))*step, 'f', decimals, 64), 64)
		values = append(values, v)
	}
	return values, decimals
}

// PriceTicks places about count ticks on a price scale.
func PriceTicks(s LinearScale, count int) []Tick {
	values, decimals := priceValues(math.Min(s.D0, s.D1), math.Max(s.D0, s.D1), count)
	ticks := make([]Tick, 0, len(values))
	for _, v := range values {
		ticks = append(ticks, Tick{
			Pos:   s.Map(v),
			Label: strconv.FormatFloat(v, 'f', decimals, 64),
		})
	}
	return ticks
}

// timeIntervals are the candidate spacings for time ticks, smallest first.
var timeIntervals = []time.Duration{
	time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
	time.Hour,
	3 * time.Hour,
	6 * time.Hour,
	12 * time.Hour,
	24 * time.Hour,
}

// timeInterval picks the smallest candidate that yields at most count ticks.
// Spans beyond the table use whole days.
func timeInterval(span time.Duration, count int) time.Duration {
	target := span / time.Duration(count)
	for _, iv := range timeIntervals {
		if iv >= target {
			return iv
		}
	}
	days := (target + 24*time.Hour - 1) / (24 * time.Hour)
	return days * 24 * time.Hour
}

// TimeTicks places about count ticks on a time scale, aligned to whole
// minutes, hours or days and labelled "15:04" (or "Jan 02" for day steps).
func TimeTicks(s TimeScale, count int) []Tick {
	if count < 1 || s.Domain.Span() <= 0 {
		return nil
	}
	iv := timeInterval(s.Domain.Span(), count)
	layout := "15:04"
	if iv >= 24*time.Hour {
		layout = "Jan 02"
	}

	t := s.Domain.Min.Truncate(iv)
	if t.Before(s.Domain.Min) {
		t = t.Add(iv)
	}

	var ticks []Tick
	for ; !t.After(s.Domain.Max); t = t.Add(iv) {
		ticks = append(ticks, Tick{Pos: s.Map(t), Label: t.Format(layout)})
	}
	return ticks
}
