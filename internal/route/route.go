// Package route turns navigable locations into view requests and back.
package route

import (
	"net/url"
	"strings"

	"github.com/rewired-gh/arbdash/internal/models"
)

// Parse derives the view request for a location. It never fails: anything
// it cannot route becomes a NotFound request.
//
// The first path segment selects the view kind and the optional second one
// is the pair. Query keys are kept as filters after normalization; numeric
// text is recorded as-is, validation belongs to the search forms.
func Parse(loc models.Location) models.ViewRequest {
	segments := splitPath(loc.Path)
	if len(segments) == 0 || len(segments) > 2 {
		return models.ViewRequest{Kind: models.NotFound}
	}

	kind := models.KindFromString(segments[0])
	if kind == models.NotFound {
		return models.ViewRequest{Kind: models.NotFound}
	}

	req := models.ViewRequest{
		Kind:    kind,
		Filters: NormalizeFilters(loc.Query()),
	}
	if len(segments) == 2 {
		pair := segments[1]
		req.Pair = &pair
	}
	return req
}

// Location is the inverse of Parse: the canonical location for a request.
func Location(req models.ViewRequest) models.Location {
	if req.Kind == models.NotFound {
		return models.NewLocation("/", nil)
	}
	path := "/" + req.Kind.String()
	if req.Pair != nil && *req.Pair != "" {
		path += "/" + url.PathEscape(*req.Pair)
	}
	return models.NewLocation(path, req.Filters)
}

// NormalizeFilters trims keys and values, drops empty values and folds the
// min_volume alias onto min_vol. An explicit min_vol wins over the alias.
func NormalizeFilters(query map[string]string) map[string]string {
	out := make(map[string]string, len(query))
	var alias string

	for k, v := range query {
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		if k == models.FilterMinVolumeAlias {
			alias = v
			continue
		}
		out[k] = v
	}

	if _, ok := out[models.FilterMinVolume]; !ok && alias != "" {
		out[models.FilterMinVolume] = alias
	}
	return out
}

// splitPath returns the unescaped, non-empty segments of path. A segment
// with a malformed escape is kept as written.
func splitPath(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if u, err := url.PathUnescape(s); err == nil {
			s = u
		}
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
