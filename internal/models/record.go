package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one fetched row. Each view kind has exactly one concrete shape.
type Record interface {
	Kind() ViewKind
}

// BidAskSample is the best bid and ask of one exchanger at one instant.
type BidAskSample struct {
	Timestamp time.Time
	Exchanger string
	BidPrice  float64
	AskPrice  float64
	BidVolume float64
	AskVolume float64
}

func (BidAskSample) Kind() ViewKind { return BidAsk }

// Validate checks sample field constraints.
func (s BidAskSample) Validate() error {
	if s.Exchanger == "" {
		return errors.New("exchanger must not be empty")
	}
	if s.Timestamp.IsZero() {
		return errors.New("timestamp must be set")
	}
	if s.BidPrice < 0 || s.AskPrice < 0 {
		return errors.New("prices must not be negative")
	}
	return nil
}

// OpportunityRow is a detected price gap between two exchangers.
type OpportunityRow struct {
	Timestamp     time.Time
	Spread        decimal.Decimal // percent
	Volume        decimal.Decimal
	BuyExchanger  string
	BuyPrice      decimal.Decimal
	SellExchanger string
	SellPrice     decimal.Decimal
}

func (OpportunityRow) Kind() ViewKind { return Opportunity }

// ArbitrageRow is an opportunity that was acted upon. The realised columns are
// only known once the matching trades have been synced.
type ArbitrageRow struct {
	ArbitrageID   string
	Pair          string
	Timestamp     time.Time
	BuyExchanger  string
	SellExchanger string
	BuyPrice      decimal.Decimal
	SellPrice     decimal.Decimal
	Spread        decimal.Decimal
	Volume        decimal.Decimal

	RealBuyPrice  decimal.NullDecimal
	RealSellPrice decimal.NullDecimal
	RealSpread    decimal.NullDecimal
	RealBuyVol    decimal.NullDecimal
	RealSellVol   decimal.NullDecimal
}

func (ArbitrageRow) Kind() ViewKind { return Arbitrage }

// TradeRow is one executed order belonging to an arbitrage.
type TradeRow struct {
	ArbitrageID string
	TradeID     string
	Price       decimal.Decimal
	Quantity    decimal.Decimal
	Pair        string
	Side        string
	Fee         decimal.Decimal
	FeeCurrency string
}

func (TradeRow) Kind() ViewKind { return Trade }
