// Package models defines the dashboard's domain entities: locations, view
// requests, fetched records and chart series.
package models

import (
	"net/url"
	"sort"
	"strings"
)

// Filter keys understood by the backend and the search forms.
const (
	FilterMinProfit      = "min_profit"
	FilterMinVolume      = "min_vol"
	FilterMinVolumeAlias = "min_volume"
	FilterBuyExchanger   = "buy_ex"
	FilterSellExchanger  = "sell_ex"
	FilterLimit          = "limit"
)

// filterOrder is the canonical order of known keys in a rendered query string.
var filterOrder = []string{
	FilterMinProfit,
	FilterMinVolume,
	FilterBuyExchanger,
	FilterSellExchanger,
	FilterLimit,
}

// Location is an immutable snapshot of a navigable address: a path plus a
// flat query mapping.
type Location struct {
	Path  string
	query map[string]string
}

// NewLocation copies query so later changes to the caller's map cannot
// leak into the location.
func NewLocation(path string, query map[string]string) Location {
	q := make(map[string]string, len(query))
	for k, v := range query {
		q[k] = v
	}
	return Location{Path: path, query: q}
}

// ParseLocation reads "/path?query", tolerating a leading '#' as found in
// hash-router addresses. Repeated keys keep their first value. Malformed
// escapes are kept as far as the standard parser gets.
func ParseLocation(raw string) Location {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "#")

	path, rawQuery, _ := strings.Cut(raw, "?")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	// ParseQuery keeps every pair it could decode even when it returns an error.
	values, _ := url.ParseQuery(rawQuery)
	query := make(map[string]string, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			query[k] = vs[0]
		}
	}
	return Location{Path: path, query: query}
}

// Query returns a copy of the query mapping.
func (l Location) Query() map[string]string {
	q := make(map[string]string, len(l.query))
	for k, v := range l.query {
		q[k] = v
	}
	return q
}

// Get returns the raw value of a query key.
func (l Location) Get(key string) (string, bool) {
	v, ok := l.query[key]
	return v, ok
}

// String renders the location with known filter keys first, in a fixed
// order, followed by any other keys sorted alphabetically.
func (l Location) String() string {
	if len(l.query) == 0 {
		return l.Path
	}
	return l.Path + "?" + EncodeQuery(l.query)
}

// EncodeQuery renders a query mapping in canonical key order.
func EncodeQuery(query map[string]string) string {
	seen := make(map[string]bool, len(filterOrder))
	parts := make([]string, 0, len(query))

	for _, k := range filterOrder {
		if v, ok := query[k]; ok {
			parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(v))
			seen[k] = true
		}
	}

	rest := make([]string, 0, len(query))
	for k := range query {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(query[k]))
	}

	return strings.Join(parts, "&")
}
