// Package chart turns one exchanger's bid/ask samples into a two-line time
// series plot with auto-scaled time and price axes, and draws it as SVG.
package chart

import (
	"fmt"
	"strings"

	"github.com/rewired-gh/arbdash/internal/models"
)

// Line colours.
const (
	BidColor = "steelblue"
	AskColor = "#FC9E27"
)

// Margins around the plot area, in pixels.
type Margins struct {
	Top, Right, Bottom, Left int
}

// Layout is the viewport geometry and axis density of a chart.
type Layout struct {
	Width, Height int
	Margins       Margins
	TimeTicks     int
	PriceTicks    int
}

// DefaultLayout is the 600x140 chart of the bid/ask table.
func DefaultLayout() Layout {
	return Layout{
		Width:      600,
		Height:     140,
		Margins:    Margins{Top: 20, Right: 20, Bottom: 30, Left: 50},
		TimeTicks:  10,
		PriceTicks: 4,
	}
}

// InnerWidth is the width of the plot area inside the margins.
func (l Layout) InnerWidth() float64 {
	return float64(l.Width - l.Margins.Left - l.Margins.Right)
}

// InnerHeight is the height of the plot area inside the margins.
func (l Layout) InnerHeight() float64 {
	return float64(l.Height - l.Margins.Top - l.Margins.Bottom)
}

// Point is a position inside the plot area.
type Point struct {
	X, Y float64
}

// Plot is a fully computed chart: domains, axes and the two polylines.
// Empty plots carry placeholder domains and no lines.
type Plot struct {
	Layout    Layout
	Exchanger string
	Empty     bool

	Time  TimeDomain
	Price PriceDomain

	TimeTicks  []Tick
	PriceTicks []Tick

	Bid []Point
	Ask []Point
}

// Render computes the plot of one series. Samples are drawn in the order
// given; Partition already sorts them by timestamp.
func Render(series models.ChartSeries, layout Layout) Plot {
	p := Plot{
		Layout:    layout,
		Exchanger: series.Exchanger,
		Empty:     len(series.Samples) == 0,
		Time:      placeholderTime,
		Price:     placeholderPrice,
	}
	if !p.Empty {
		p.Time = timeExtent(series.Samples)
		p.Price = priceExtent(series.Samples)
	}

	x := NewTimeScale(p.Time, 0, layout.InnerWidth())
	y := NewPriceScale(p.Price, layout.InnerHeight())

	p.TimeTicks = TimeTicks(x, layout.TimeTicks)
	p.PriceTicks = PriceTicks(y, layout.PriceTicks)

	p.Bid = make([]Point, 0, len(series.Samples))
	p.Ask = make([]Point, 0, len(series.Samples))
	for _, s := range series.Samples {
		px := x.Map(s.Timestamp)
		p.Bid = append(p.Bid, Point{X: px, Y: y.Map(s.BidPrice)})
		p.Ask = append(p.Ask, Point{X: px, Y: y.Map(s.AskPrice)})
	}
	return p
}

// RenderAll renders every series with the same layout.
func RenderAll(series []models.ChartSeries, layout Layout) []Plot {
	plots := make([]Plot, 0, len(series))
	for _, s := range series {
		plots = append(plots, Render(s, layout))
	}
	return plots
}

// PathData is the SVG path "d" attribute for a polyline, or "" for no points.
func PathData(points []Point) string {
	if len(points) == 0 {
		return ""
	}
	var b strings.Builder
	for i, pt := range points {
		if i == 0 {
			b.WriteString("M")
		} else {
			b.WriteString("L")
		}
		fmt.Fprintf(&b, "%.2f,%.2f", pt.X, pt.Y)
	}
	return b.String()
}
