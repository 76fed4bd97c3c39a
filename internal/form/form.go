// Package form keeps the search form fields and the current view request in
// step: incoming requests overwrite the fields, submitted fields become a
// new location.
package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rewired-gh/arbdash/internal/models"
	"github.com/rewired-gh/arbdash/internal/route"
)

// Field names, as sent by the browser.
const (
	FieldPair          = "pair"
	FieldMinProfit     = models.FilterMinProfit
	FieldMinVolume     = models.FilterMinVolume
	FieldBuyExchanger  = models.FilterBuyExchanger
	FieldSellExchanger = models.FilterSellExchanger
	FieldLimit         = models.FilterLimit
)

// AnyExchanger is the exchanger choice that means "no filter".
const AnyExchanger = "All"

// ErrUnknownField is returned by SetField for names no form carries.
var ErrUnknownField = errors.New("unknown form field")

// ValidationError rejects a submission before any navigation happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// FormState holds the raw text of every search field.
type FormState struct {
	Pair          string
	MinProfit     string
	MinVolume     string
	BuyExchanger  string
	SellExchanger string
	Limit         string
}

// FromRequest reflects a view request into field values. Absent exchanger
// filters show as AnyExchanger.
func FromRequest(req models.ViewRequest) FormState {
	f := req.Filters
	s := FormState{
		Pair:          req.PairValue(),
		MinProfit:     f[models.FilterMinProfit],
		MinVolume:     f[models.FilterMinVolume],
		BuyExchanger:  f[models.FilterBuyExchanger],
		SellExchanger: f[models.FilterSellExchanger],
		Limit:         f[models.FilterLimit],
	}
	if s.BuyExchanger == "" {
		s.BuyExchanger = AnyExchanger
	}
	if s.SellExchanger == "" {
		s.SellExchanger = AnyExchanger
	}
	return s
}

// Fields lists the fields the form of a view kind shows.
func Fields(kind models.ViewKind) []string {
	switch kind {
	case models.BidAsk:
		return []string{FieldPair}
	case models.Opportunity:
		return []string{FieldPair, FieldMinProfit, FieldMinVolume, FieldBuyExchanger, FieldSellExchanger, FieldLimit}
	case models.Arbitrage, models.Trade:
		return []string{FieldPair, FieldLimit}
	default:
		return nil
	}
}

// Controller owns the fields of the active view's search form.
type Controller struct {
	kind    models.ViewKind
	state   FormState
	synced  models.ViewRequest
	invalid *ValidationError
}

// New returns a controller with no request synced yet.
func New() *Controller {
	return &Controller{state: FromRequest(models.ViewRequest{})}
}

func (c *Controller) Kind() models.ViewKind { return c.kind }

func (c *Controller) State() FormState { return c.state }

// Invalid returns the error of the last rejected submission, if it still
// applies.
func (c *Controller) Invalid() *ValidationError { return c.invalid }

// Sync reflects an incoming request into the fields. Fields are overwritten
// only when the request differs from the last one synced, so edits survive
// navigations that land on the same data. It reports whether the fields
// were overwritten.
func (c *Controller) Sync(req models.ViewRequest) bool {
	if req.Kind == c.kind && req.Equal(c.synced) {
		return false
	}
	c.kind = req.Kind
	c.synced = req
	c.state = FromRequest(req)
	c.invalid = nil
	return true
}

// SetField records one edit. It reports whether the edit should submit the
// form straight away, which is the case for the pair selector.
func (c *Controller) SetField(name, value string) (bool, error) {
	switch name {
	case FieldPair:
		c.state.Pair = value
	case FieldMinProfit:
		c.state.MinProfit = value
	case FieldMinVolume, models.FilterMinVolumeAlias:
		name = FieldMinVolume
		c.state.MinVolume = value
	case FieldBuyExchanger:
		c.state.BuyExchanger = value
	case FieldSellExchanger:
		c.state.SellExchanger = value
	case FieldLimit:
		c.state.Limit = value
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	if c.invalid != nil && c.invalid.Field == name {
		c.invalid = nil
	}
	return name == FieldPair, nil
}

// Submit validates the fields and builds the location to navigate to. Keys
// of the current query that the form does not own are carried over. On a
// validation error no location is produced and the offending field is
// remembered for highlighting.
func (c *Controller) Submit() (models.Location, error) {
	req, err := c.request()
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			c.invalid = verr
		}
		return models.Location{}, err
	}
	c.invalid = nil
	return route.Location(req), nil
}

func (c *Controller) request() (models.ViewRequest, error) {
	if c.kind == models.NotFound {
		return models.ViewRequest{}, &ValidationError{Reason: "this page has no search form"}
	}

	owned := make(map[string]bool)
	for _, f := range Fields(c.kind) {
		owned[f] = true
	}

	filters := make(map[string]string)
	for k, v := range c.synced.Filters {
		if !owned[k] {
			filters[k] = v
		}
	}

	req := models.ViewRequest{Kind: c.kind, Filters: filters}

	pair := strings.TrimSpace(c.state.Pair)
	if pair == "" && c.kind.RequiresPair() {
		return req, &ValidationError{Field: FieldPair, Reason: "select a pair"}
	}
	if pair != "" {
		req.Pair = &pair
	}

	if owned[FieldMinProfit] {
		if err := putNumber(filters, FieldMinProfit, c.state.MinProfit); err != nil {
			return req, err
		}
	}
	if owned[FieldMinVolume] {
		if err := putNumber(filters, FieldMinVolume, c.state.MinVolume); err != nil {
			return req, err
		}
	}
	if owned[FieldBuyExchanger] {
		putExchanger(filters, FieldBuyExchanger, c.state.BuyExchanger)
	}
	if owned[FieldSellExchanger] {
		putExchanger(filters, FieldSellExchanger, c.state.SellExchanger)
	}
	if owned[FieldLimit] {
		if err := putLimit(filters, c.state.Limit); err != nil {
			return req, err
		}
	}

	req.Filters = route.NormalizeFilters(filters)
	return req, nil
}

func putNumber(filters map[string]string, key, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if _, err := decimal.NewFromString(raw); err != nil {
		return &ValidationError{Field: key, Reason: "must be a number"}
	}
	filters[key] = raw
	return nil
}

func putExchanger(filters map[string]string, key, raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, AnyExchanger) {
		return
	}
	filters[key] = raw
}

func putLimit(filters map[string]string, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return &ValidationError{Field: FieldLimit, Reason: "must be a positive whole number"}
	}
	filters[FieldLimit] = raw
	return nil
}
