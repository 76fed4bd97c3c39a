// Package view renders the dashboard's result area: the search form, status
// lines, flat result tables and the bid/ask table with one chart per
// exchanger.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/rewired-gh/arbdash/internal/chart"
	"github.com/rewired-gh/arbdash/internal/form"
	"github.com/rewired-gh/arbdash/internal/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("views").ParseFS(templateFS, "templates/*.tmpl"))

const (
	placeholder = "-"
	dateLayout  = "2006-01-02 15:04"
	idLength    = 10
)

// Options are the fixed choices and geometry shared by every render.
type Options struct {
	Pairs      []string
	Exchangers []string
	Layout     chart.Layout
}

// State is everything a render needs. Shown holds the rows of the last
// ready result, which stay on screen while a newer request is pending or
// after it failed.
type State struct {
	Request models.ViewRequest
	Result  models.FetchResult
	Shown   []models.Record
	Form    form.FormState
	Invalid *form.ValidationError
	Notice  string
}

// Renderer turns a State into an HTML fragment.
type Renderer struct {
	opts Options
}

func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

type page struct {
	Kind      string
	Title     string
	NotFound  bool
	Form      formData
	Loading   bool
	Error     string
	Notice    string
	NoResults bool
	BidAsk    []bidAskRow
	Table     *table
}

type formData struct {
	Kind       string
	Show       map[string]bool
	State      form.FormState
	Invalid    string
	Reason     string
	Pairs      []string
	Exchangers []string
}

type bidAskRow struct {
	Exchanger string
	Bid       string
	Ask       string
	Chart     template.HTML
}

type table struct {
	Head []string
	Rows [][]string
}

// Render draws the view for s.
func (r *Renderer) Render(s State) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "view", r.page(s)); err != nil {
		return "", fmt.Errorf("failed to render %s view: %w", s.Request.Kind, err)
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) page(s State) page {
	kind := s.Request.Kind
	p := page{
		Kind:  kind.String(),
		Title: kind.Title(),
	}
	if kind == models.NotFound {
		p.NotFound = true
		return p
	}

	p.Form = r.formData(kind, s)
	p.Notice = s.Notice

	var rows []models.Record
	switch s.Result.Status {
	case models.Pending:
		p.Loading = p.Notice == ""
		rows = ofKind(s.Shown, kind)
	case models.Failed:
		p.Error = s.Result.Reason
		rows = ofKind(s.Shown, kind)
	case models.Ready:
		rows = ofKind(s.Result.Rows, kind)
		p.NoResults = len(rows) == 0
	}

	if len(rows) == 0 {
		return p
	}
	if kind == models.BidAsk {
		p.BidAsk = r.bidAskRows(rows)
	} else {
		p.Table = flatTable(kind, rows)
	}
	return p
}

func (r *Renderer) formData(kind models.ViewKind, s State) formData {
	show := make(map[string]bool)
	for _, f := range form.Fields(kind) {
		show[f] = true
	}

	pairs := r.opts.Pairs
	if cur := s.Form.Pair; cur != "" && !slices.Contains(pairs, cur) {
		pairs = append(append([]string{}, pairs...), cur)
	}

	fd := formData{
		Kind:       kind.String(),
		Show:       show,
		State:      s.Form,
		Pairs:      pairs,
		Exchangers: append([]string{form.AnyExchanger}, r.opts.Exchangers...),
	}
	if s.Invalid != nil {
		fd.Invalid = s.Invalid.Field
		fd.Reason = s.Invalid.Error()
	}
	return fd
}

// bidAskRows lists the configured exchangers followed by any others present
// in the data. Exchangers without samples get placeholders and an empty
// chart.
func (r *Renderer) bidAskRows(rows []models.Record) []bidAskRow {
	series := models.Partition(models.BidAskSamples(rows))
	byName := make(map[string]models.ChartSeries, len(series))
	for _, s := range series {
		byName[s.Exchanger] = s
	}

	names := append([]string{}, r.opts.Exchangers...)
	for _, s := range series {
		if !slices.Contains(names, s.Exchanger) {
			names = append(names, s.Exchanger)
		}
	}

	out := make([]bidAskRow, 0, len(names))
	for _, name := range names {
		s, ok := byName[name]
		if !ok {
			s = models.ChartSeries{Exchanger: name}
		}
		row := bidAskRow{
			Exchanger: name,
			Bid:       placeholder,
			Ask:       placeholder,
			Chart:     template.HTML(chart.Render(s, r.opts.Layout).InlineSVG()),
		}
		if latest, ok := s.Latest(); ok {
			row.Bid = formatFloat(latest.BidPrice)
			row.Ask = formatFloat(latest.AskPrice)
		}
		out = append(out, row)
	}
	return out
}

func flatTable(kind models.ViewKind, rows []models.Record) *table {
	t := &table{}
	switch kind {
	case models.Opportunity:
		t.Head = []string{"Date", "Spread", "Volume", "Buy Ex", "Buy Price", "Sell Ex", "Sell Price"}
	case models.Arbitrage:
		t.Head = []string{"Id", "Date", "Buy Ex", "Sell Ex", "Buy Price", "Real Buy Price", "Sell Price",
			"Real Sell Price", "Margin (%)", "Real Margin (%)", "Vol", "Buy Vol", "Sell Vol"}
	case models.Trade:
		t.Head = []string{"Arbitrage Id", "Trade Id", "Price", "Quantity", "Pair", "Side", "Fee", "Fee Currency"}
	}

	for _, rec := range rows {
		switch row := rec.(type) {
		case models.OpportunityRow:
			t.Rows = append(t.Rows, []string{
				row.Timestamp.Format(dateLayout),
				row.Spread.String() + "%",
				row.Volume.String(),
				row.BuyExchanger,
				row.BuyPrice.String(),
				row.SellExchanger,
				row.SellPrice.String(),
			})
		case models.ArbitrageRow:
			t.Rows = append(t.Rows, []string{
				shortID(row.ArbitrageID),
				row.Timestamp.Format(dateLayout),
				row.BuyExchanger,
				row.SellExchanger,
				row.BuyPrice.String(),
				nullFixed(row.RealBuyPrice, 6, ""),
				row.SellPrice.String(),
				nullFixed(row.RealSellPrice, 6, ""),
				row.Spread.StringFixed(2) + "%",
				nullFixed(row.RealSpread, 2, "%"),
				row.Volume.String(),
				nullFixed(row.RealBuyVol, 6, ""),
				nullFixed(row.RealSellVol, 6, ""),
			})
		case models.TradeRow:
			t.Rows = append(t.Rows, []string{
				shortID(row.ArbitrageID),
				row.TradeID,
				row.Price.String(),
				row.Quantity.String(),
				row.Pair,
				row.Side,
				row.Fee.String(),
				row.FeeCurrency,
			})
		}
	}
	return t
}

func ofKind(rows []models.Record, kind models.ViewKind) []models.Record {
	out := make([]models.Record, 0, len(rows))
	for _, r := range rows {
		if r.Kind() == kind {
			out = append(out, r)
		}
	}
	return out
}

func nullFixed(d decimal.NullDecimal, places int32, suffix string) string {
	if !d.Valid {
		return placeholder
	}
	return d.Decimal.StringFixed(places) + suffix
}

func shortID(id string) string {
	if len(id) <= idLength {
		return id
	}
	return id[:idLength] + "..."
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
