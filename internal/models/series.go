package models

import (
	"sort"
	"time"
)

// Sample is one point of a bid/ask time series.
type Sample struct {
	Timestamp time.Time
	BidPrice  float64
	AskPrice  float64
}

// ChartSeries is one exchanger's samples ordered by timestamp ascending.
type ChartSeries struct {
	Exchanger string
	Samples   []Sample
}

// Latest returns the sample with the greatest timestamp.
func (s ChartSeries) Latest() (Sample, bool) {
	if len(s.Samples) == 0 {
		return Sample{}, false
	}
	return s.Samples[len(s.Samples)-1], true
}

// Partition groups samples by exchanger. Series appear in first-seen order;
// within a series samples are stably sorted by timestamp, so every input
// sample lands in exactly one series exactly once.
func Partition(samples []BidAskSample) []ChartSeries {
	index := make(map[string]int)
	var series []ChartSeries

	for _, s := range samples {
		i, ok := index[s.Exchanger]
		if !ok {
			i = len(series)
			index[s.Exchanger] = i
			series = append(series, ChartSeries{Exchanger: s.Exchanger})
		}
		series[i].Samples = append(series[i].Samples, Sample{
			Timestamp: s.Timestamp,
			BidPrice:  s.BidPrice,
			AskPrice:  s.AskPrice,
		})
	}

	for i := range series {
		pts := series[i].Samples
		sort.SliceStable(pts, func(a, b int) bool {
			return pts[a].Timestamp.Before(pts[b].Timestamp)
		})
	}

	return series
}

// BidAskSamples extracts the bid/ask samples from a row set, skipping rows
// of any other shape.
func BidAskSamples(rows []Record) []BidAskSample {
	out := make([]BidAskSample, 0, len(rows))
	for _, r := range rows {
		if s, ok := r.(BidAskSample); ok {
			out = append(out, s)
		}
	}
	return out
}
