package models

import "fmt"

// ViewKind identifies which dataset a view shows.
type ViewKind int

const (
	NotFound ViewKind = iota
	BidAsk
	Opportunity
	Arbitrage
	Trade
)

var kindNames = map[ViewKind]string{
	BidAsk:      "bid_ask",
	Opportunity: "opportunity",
	Arbitrage:   "arbitrage",
	Trade:       "trade",
}

// ViewKinds lists the routable kinds in navigation order.
var ViewKinds = []ViewKind{BidAsk, Opportunity, Arbitrage, Trade}

// String returns the path segment used for the kind, or "not_found".
func (k ViewKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "not_found"
}

// Title is the human heading of a view.
func (k ViewKind) Title() string {
	switch k {
	case BidAsk:
		return "Bid/Ask"
	case Opportunity:
		return "Search for opportunities"
	case Arbitrage:
		return "Arbitrage"
	case Trade:
		return "Trades"
	default:
		return "Not found"
	}
}

// RequiresPair reports whether the backend endpoint for the kind needs a
// pair segment.
func (k ViewKind) RequiresPair() bool {
	return k == BidAsk || k == Opportunity
}

// KindFromString maps a path segment to its kind. Unknown names map to
// NotFound.
func KindFromString(s string) ViewKind {
	for k, name := range kindNames {
		if name == s {
			return k
		}
	}
	return NotFound
}

// ViewRequest is the normalized, route-independent description of what data
// to display.
type ViewRequest struct {
	Kind    ViewKind
	Pair    *string
	Filters map[string]string
}

// PairValue returns the pair or "" when unset.
func (r ViewRequest) PairValue() string {
	if r.Pair == nil {
		return ""
	}
	return *r.Pair
}

// Equal compares kind, pair and filters structurally.
func (r ViewRequest) Equal(o ViewRequest) bool {
	if r.Kind != o.Kind {
		return false
	}
	if (r.Pair == nil) != (o.Pair == nil) {
		return false
	}
	if r.Pair != nil && *r.Pair != *o.Pair {
		return false
	}
	return FiltersEqual(r.Filters, o.Filters)
}

// FiltersEqual compares two filter maps, treating nil and empty as equal.
func FiltersEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}

func (r ViewRequest) String() string {
	return fmt.Sprintf("%s pair=%q filters=%s", r.Kind, r.PairValue(), EncodeQuery(r.Filters))
}
