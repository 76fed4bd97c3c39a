package backend

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rewired-gh/arbdash/internal/models"
)

// Layouts the backend has used for the Date column, most common first.
var dateLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
	time.RFC3339Nano,
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// bidAskWire is a row of GET /bid_ask/<pair>
type bidAskWire struct {
	Exchanger string  `json:"Exchanger"`
	Date      string  `json:"Date"`
	BidPrice  float64 `json:"BidPrice"`
	AskPrice  float64 `json:"AskPrice"`
	BidVol    float64 `json:"BidVol"`
	AskVol    float64 `json:"AskVol"`
}

func (w bidAskWire) record() (models.Record, error) {
	ts, err := parseDate(w.Date)
	if err != nil {
		return nil, err
	}
	s := models.BidAskSample{
		Timestamp: ts,
		Exchanger: w.Exchanger,
		BidPrice:  w.BidPrice,
		AskPrice:  w.AskPrice,
		BidVolume: w.BidVol,
		AskVolume: w.AskVol,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// opportunityWire is a row of GET /opportunity/<pair>
type opportunityWire struct {
	Date          string          `json:"Date"`
	BuyPrice      decimal.Decimal `json:"BuyPrice"`
	BuyExchanger  string          `json:"BuyExchanger"`
	SellPrice     decimal.Decimal `json:"SellPrice"`
	SellExchanger string          `json:"SellExchanger"`
	Volume        decimal.Decimal `json:"Volume"`
	Spread        decimal.Decimal `json:"Spread"`
}

func (w opportunityWire) record() (models.Record, error) {
	ts, err := parseDate(w.Date)
	if err != nil {
		return nil, err
	}
	return models.OpportunityRow{
		Timestamp:     ts,
		Spread:        w.Spread,
		Volume:        w.Volume,
		BuyExchanger:  w.BuyExchanger,
		BuyPrice:      w.BuyPrice,
		SellExchanger: w.SellExchanger,
		SellPrice:     w.SellPrice,
	}, nil
}

// arbitrageWire is a row of GET /arbitrage
type arbitrageWire struct {
	ArbitrageID   string              `json:"ArbitrageId"`
	BuyEx         string              `json:"BuyEx"`
	SellEx        string              `json:"SellEx"`
	Pair          string              `json:"Pair"`
	Date          string              `json:"Date"`
	BuyPrice      decimal.Decimal     `json:"BuyPrice"`
	SellPrice     decimal.Decimal     `json:"SellPrice"`
	Vol           decimal.Decimal     `json:"Vol"`
	Spread        decimal.Decimal     `json:"Spread"`
	RealBuyPrice  decimal.NullDecimal `json:"RealBuyPrice"`
	RealSellPrice decimal.NullDecimal `json:"RealSellPrice"`
	RealSpread    decimal.NullDecimal `json:"RealSpread"`
	RealBuyVol    decimal.NullDecimal `json:"RealBuyVol"`
	RealSellVol   decimal.NullDecimal `json:"RealSellVol"`
}

func (w arbitrageWire) record() (models.Record, error) {
	ts, err := parseDate(w.Date)
	if err != nil {
		return nil, err
	}
	return models.ArbitrageRow{
		ArbitrageID:   w.ArbitrageID,
		Pair:          w.Pair,
		Timestamp:     ts,
		BuyExchanger:  w.BuyEx,
		SellExchanger: w.SellEx,
		BuyPrice:      w.BuyPrice,
		SellPrice:     w.SellPrice,
		Spread:        w.Spread,
		Volume:        w.Vol,
		RealBuyPrice:  w.RealBuyPrice,
		RealSellPrice: w.RealSellPrice,
		RealSpread:    w.RealSpread,
		RealBuyVol:    w.RealBuyVol,
		RealSellVol:   w.RealSellVol,
	}, nil
}

// tradeWire is a row of GET /trade
type tradeWire struct {
	ArbitrageID string          `json:"ArbitrageId"`
	TradeID     string          `json:"TradeId"`
	Price       decimal.Decimal `json:"Price"`
	Quantity    decimal.Decimal `json:"Quantity"`
	Pair        string          `json:"Pair"`
	Side        string          `json:"Side"`
	Fee         decimal.Decimal `json:"Fee"`
	FeeCurrency string          `json:"FeeCurrency"`
}

func (w tradeWire) record() (models.Record, error) {
	return models.TradeRow{
		ArbitrageID: w.ArbitrageID,
		TradeID:     w.TradeID,
		Price:       w.Price,
		Quantity:    w.Quantity,
		Pair:        w.Pair,
		Side:        w.Side,
		Fee:         w.Fee,
		FeeCurrency: w.FeeCurrency,
	}, nil
}
