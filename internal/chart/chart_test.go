package chart

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rewired-gh/arbdash/internal/models"
)

func at(hour, min, sec int) time.Time {
	return time.Date(2017, 3, 1, hour, min, sec, 0, time.UTC)
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRender_BidAskScenario(t *testing.T) {
	series := models.ChartSeries{
		Exchanger: "cex",
		Samples: []models.Sample{
			{Timestamp: at(10, 0, 0), BidPrice: 100, AskPrice: 101},
			{Timestamp: at(10, 5, 0), BidPrice: 102, AskPrice: 103},
		},
	}

	p := Render(series, DefaultLayout())

	if p.Empty {
		t.Fatal("plot marked empty")
	}
	if !p.Time.Min.Equal(at(9, 59, 30)) || !p.Time.Max.Equal(at(10, 5, 30)) {
		t.Errorf("time domain = [%v, %v], want [09:59:30, 10:05:30]", p.Time.Min, p.Time.Max)
	}
	if !approx(p.Price.Min, 99.7) || !approx(p.Price.Max, 103.3) {
		t.Errorf("price domain = [%v, %v], want [99.7, 103.3]", p.Price.Min, p.Price.Max)
	}
	if len(p.Bid) != 2 || len(p.Ask) != 2 {
		t.Fatalf("got %d bid and %d ask points, want 2 each", len(p.Bid), len(p.Ask))
	}

	// 530px wide plot over a 360s domain; the first sample is 30s in.
	if !approx(p.Bid[0].X, 530.0/12) {
		t.Errorf("first x = %v, want %v", p.Bid[0].X, 530.0/12)
	}
	if p.Bid[0].X != p.Ask[0].X {
		t.Errorf("bid and ask of one sample at different x")
	}
	if p.Ask[1].Y >= p.Bid[1].Y {
		t.Errorf("ask (higher price) should be drawn above bid: ask y=%v bid y=%v", p.Ask[1].Y, p.Bid[1].Y)
	}

	wantLabels := []string{"10:00", "10:01", "10:02", "10:03", "10:04", "10:05"}
	if len(p.TimeTicks) != len(wantLabels) {
		t.Fatalf("time ticks = %v", p.TimeTicks)
	}
	for i, tick := range p.TimeTicks {
		if tick.Label != wantLabels[i] {
			t.Errorf("tick %d = %q, want %q", i, tick.Label, wantLabels[i])
		}
	}
}

func TestRender_PaddingInvariant(t *testing.T) {
	tests := []struct {
		name    string
		samples []models.Sample
	}{
		{"single sample", []models.Sample{{Timestamp: at(10, 0, 0), BidPrice: 100, AskPrice: 101}}},
		{"flat prices", []models.Sample{
			{Timestamp: at(10, 0, 0), BidPrice: 5, AskPrice: 5},
			{Timestamp: at(10, 1, 0), BidPrice: 5, AskPrice: 5},
		}},
		{"zero prices", []models.Sample{{Timestamp: at(10, 0, 0)}}},
		{"crossed book", []models.Sample{
			{Timestamp: at(10, 0, 0), BidPrice: 101, AskPrice: 100},
			{Timestamp: at(10, 2, 0), BidPrice: 99, AskPrice: 98},
		}},
		{"same timestamp", []models.Sample{
			{Timestamp: at(10, 0, 0), BidPrice: 0.012, AskPrice: 0.013},
			{Timestamp: at(10, 0, 0), BidPrice: 0.011, AskPrice: 0.014},
		}},
		{"spread of two ulps", []models.Sample{
			{Timestamp: at(10, 0, 0), BidPrice: 1e6, AskPrice: math.Nextafter(math.Nextafter(1e6, math.Inf(1)), math.Inf(1))},
			{Timestamp: at(10, 1, 0), BidPrice: 1e6, AskPrice: math.Nextafter(math.Nextafter(1e6, math.Inf(1)), math.Inf(1))},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Render(models.ChartSeries{Exchanger: "x", Samples: tt.samples}, DefaultLayout())
			for _, s := range tt.samples {
				if !p.Price.Contains(s.BidPrice) || !p.Price.Contains(s.AskPrice) {
					t.Errorf("price domain [%v, %v] does not strictly contain %+v", p.Price.Min, p.Price.Max, s)
				}
				if !p.Time.Contains(s.Timestamp) {
					t.Errorf("time domain [%v, %v] does not strictly contain %v", p.Time.Min, p.Time.Max, s.Timestamp)
				}
			}
			if limit := maxTickFactor * p.Layout.PriceTicks; len(p.PriceTicks) > limit {
				t.Errorf("%d price ticks, want at most %d", len(p.PriceTicks), limit)
			}
			for _, pt := range append(p.Bid, p.Ask...) {
				if pt.X < 0 || pt.X > p.Layout.InnerWidth() || pt.Y < 0 || pt.Y > p.Layout.InnerHeight() {
					t.Errorf("point %+v outside the plot area", pt)
				}
			}
		})
	}
}

func TestRender_EmptySeries(t *testing.T) {
	p := Render(models.ChartSeries{Exchanger: "kraken"}, DefaultLayout())

	if !p.Empty {
		t.Error("plot not marked empty")
	}
	if len(p.Bid) != 0 || len(p.Ask) != 0 {
		t.Error("empty series produced line points")
	}
	if len(p.TimeTicks) == 0 || len(p.PriceTicks) == 0 {
		t.Error("empty plot should still draw placeholder axes")
	}

	out := p.InlineSVG()
	if !strings.HasPrefix(out, "<svg") {
		t.Errorf("inline svg starts with %q", out[:min(len(out), 20)])
	}
	if !strings.Contains(out, `width="600"`) || !strings.Contains(out, `height="140"`) {
		t.Error("empty plot not drawn at full size")
	}
	if strings.Contains(out, "<path") {
		t.Error("empty plot should not contain lines")
	}
}

func TestInlineSVG_DrawsBothLines(t *testing.T) {
	p := Render(models.ChartSeries{Exchanger: "cex", Samples: []models.Sample{
		{Timestamp: at(10, 0, 0), BidPrice: 100, AskPrice: 101},
		{Timestamp: at(10, 5, 0), BidPrice: 102, AskPrice: 103},
	}}, DefaultLayout())

	out := p.InlineSVG()
	if strings.Count(out, "<path") != 2 {
		t.Errorf("want 2 paths in %s", out)
	}
	if !strings.Contains(out, BidColor) || !strings.Contains(out, AskColor) {
		t.Error("line colours missing")
	}
	if !strings.Contains(out, ">10:00<") {
		t.Error("time tick label missing")
	}
}

func TestPathData(t *testing.T) {
	if got := PathData(nil); got != "" {
		t.Errorf("PathData(nil) = %q", got)
	}
	got := PathData([]Point{{0, 1}, {2.5, 3.333}})
	if got != "M0.00,1.00L2.50,3.33" {
		t.Errorf("PathData = %q", got)
	}
}

func TestPriceValues_BeyondFloatResolution(t *testing.T) {
	// Every multiple of the step between lo and hi rounds to the same float.
	lo := float64(1 << 60)
	hi := math.Nextafter(lo, math.Inf(1))

	values, _ := priceValues(lo, hi, 4)
	if len(values) == 0 || len(values) > maxTickFactor*4 {
		t.Errorf("priceValues returned %d values", len(values))
	}
}

func TestPriceTicks(t *testing.T) {
	tests := []struct {
		lo, hi float64
		count  int
		want   []string
	}{
		{0, 1, 4, []string{"0.0", "0.2", "0.4", "0.6", "0.8", "1.0"}},
		{99.7, 103.3, 4, []string{"100", "101", "102", "103"}},
		{0, 100, 4, []string{"0", "20", "40", "60", "80", "100"}},
		{0.0118, 0.0142, 4, []string{"0.0120", "0.0125", "0.0130", "0.0135", "0.0140"}},
	}

	for _, tt := range tests {
		ticks := PriceTicks(NewPriceScale(PriceDomain{Min: tt.lo, Max: tt.hi}, 90), tt.count)
		var labels []string
		for _, tick := range ticks {
			labels = append(labels, tick.Label)
		}
		if strings.Join(labels, " ") != strings.Join(tt.want, " ") {
			t.Errorf("PriceTicks(%v, %v) = %v, want %v", tt.lo, tt.hi, labels, tt.want)
		}
		for i := 1; i < len(ticks); i++ {
			if ticks[i].Pos >= ticks[i-1].Pos {
				t.Errorf("price ticks not moving up the plot: %v", ticks)
			}
		}
	}
}

func TestTimeInterval(t *testing.T) {
	tests := []struct {
		span  time.Duration
		count int
		want  time.Duration
	}{
		{6 * time.Minute, 10, time.Minute},
		{time.Hour, 10, 15 * time.Minute},
		{24 * time.Hour, 10, 3 * time.Hour},
		{30 * 24 * time.Hour, 10, 3 * 24 * time.Hour},
	}
	for _, tt := range tests {
		if got := timeInterval(tt.span, tt.count); got != tt.want {
			t.Errorf("timeInterval(%v, %d) = %v, want %v", tt.span, tt.count, got, tt.want)
		}
	}
}

func TestLinearScale(t *testing.T) {
	s := NewPriceScale(PriceDomain{Min: 0, Max: 10}, 100)
	if s.Map(0) != 100 || s.Map(10) != 0 || s.Map(5) != 50 {
		t.Errorf("inverted scale maps 0,5,10 to %v,%v,%v", s.Map(0), s.Map(5), s.Map(10))
	}
}
