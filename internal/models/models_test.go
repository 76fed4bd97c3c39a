package models

import (
	"testing"
	"time"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		raw       string
		wantPath  string
		wantQuery map[string]string
	}{
		{"/bid_ask/btc_usd", "/bid_ask/btc_usd", map[string]string{}},
		{"#/opportunity/ltc_btc?min_profit=2&limit=50", "/opportunity/ltc_btc", map[string]string{"min_profit": "2", "limit": "50"}},
		{"opportunity?limit=1&limit=2", "/opportunity", map[string]string{"limit": "1"}},
		{"", "/", map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			loc := ParseLocation(tt.raw)
			if loc.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", loc.Path, tt.wantPath)
			}
			if !FiltersEqual(loc.Query(), tt.wantQuery) {
				t.Errorf("Query = %v, want %v", loc.Query(), tt.wantQuery)
			}
		})
	}
}

func TestLocationString_CanonicalOrder(t *testing.T) {
	loc := NewLocation("/opportunity/ltc_btc", map[string]string{
		"limit":      "50",
		"zeta":       "z",
		"min_profit": "2",
		"alpha":      "a b",
	})
	want := "/opportunity/ltc_btc?min_profit=2&limit=50&alpha=a+b&zeta=z"
	if got := loc.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestNewLocation_CopiesQuery(t *testing.T) {
	q := map[string]string{"limit": "10"}
	loc := NewLocation("/trade", q)
	q["limit"] = "20"
	if v, _ := loc.Get("limit"); v != "10" {
		t.Errorf("location mutated through caller map: limit = %q", v)
	}
}

func TestViewRequestEqual(t *testing.T) {
	btc := "btc_usd"
	btc2 := "btc_usd"
	ltc := "ltc_btc"

	tests := []struct {
		name string
		a, b ViewRequest
		want bool
	}{
		{"same pair different pointers", ViewRequest{Kind: BidAsk, Pair: &btc}, ViewRequest{Kind: BidAsk, Pair: &btc2}, true},
		{"different kind", ViewRequest{Kind: BidAsk, Pair: &btc}, ViewRequest{Kind: Opportunity, Pair: &btc}, false},
		{"different pair", ViewRequest{Kind: BidAsk, Pair: &btc}, ViewRequest{Kind: BidAsk, Pair: &ltc}, false},
		{"pair vs none", ViewRequest{Kind: Trade, Pair: &btc}, ViewRequest{Kind: Trade}, false},
		{"nil vs empty filters", ViewRequest{Kind: Trade}, ViewRequest{Kind: Trade, Filters: map[string]string{}}, true},
		{"filter value differs", ViewRequest{Kind: Trade, Filters: map[string]string{"limit": "1"}}, ViewRequest{Kind: Trade, Filters: map[string]string{"limit": "2"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPartition(t *testing.T) {
	base := time.Date(2017, 3, 1, 10, 0, 0, 0, time.UTC)
	samples := []BidAskSample{
		{Timestamp: base.Add(5 * time.Minute), Exchanger: "cex", BidPrice: 102, AskPrice: 103},
		{Timestamp: base.Add(5 * time.Minute), Exchanger: "kraken", BidPrice: 99, AskPrice: 100},
		{Timestamp: base, Exchanger: "cex", BidPrice: 100, AskPrice: 101},
		{Timestamp: base, Exchanger: "kraken", BidPrice: 98, AskPrice: 99},
		{Timestamp: base.Add(time.Minute), Exchanger: "bitfinex", BidPrice: 97, AskPrice: 98},
	}

	series := Partition(samples)

	if len(series) != 3 {
		t.Fatalf("got %d series, want 3", len(series))
	}
	wantOrder := []string{"cex", "kraken", "bitfinex"}
	total := 0
	for i, s := range series {
		if s.Exchanger != wantOrder[i] {
			t.Errorf("series[%d] = %s, want %s", i, s.Exchanger, wantOrder[i])
		}
		for j := 1; j < len(s.Samples); j++ {
			if s.Samples[j].Timestamp.Before(s.Samples[j-1].Timestamp) {
				t.Errorf("series %s not ordered at %d", s.Exchanger, j)
			}
		}
		total += len(s.Samples)
	}
	if total != len(samples) {
		t.Errorf("partition holds %d samples, want %d", total, len(samples))
	}

	latest, ok := series[0].Latest()
	if !ok || latest.BidPrice != 102 {
		t.Errorf("cex latest = %+v, want bid 102", latest)
	}
}

func TestPartition_Empty(t *testing.T) {
	if got := Partition(nil); len(got) != 0 {
		t.Errorf("Partition(nil) = %v, want empty", got)
	}
}

func TestBidAskSampleValidate(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		sample  BidAskSample
		wantErr bool
	}{
		{"valid", BidAskSample{Timestamp: now, Exchanger: "cex", BidPrice: 1, AskPrice: 2}, false},
		{"no exchanger", BidAskSample{Timestamp: now, BidPrice: 1, AskPrice: 2}, true},
		{"no timestamp", BidAskSample{Exchanger: "cex", BidPrice: 1, AskPrice: 2}, true},
		{"negative price", BidAskSample{Timestamp: now, Exchanger: "cex", BidPrice: -1, AskPrice: 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sample.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadyResult_NeverNilRows(t *testing.T) {
	r := ReadyResult(nil)
	if r.Rows == nil || r.Status != Ready {
		t.Errorf("ReadyResult(nil) = %+v", r)
	}
}
