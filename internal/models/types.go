package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is a CoinGecko vs_currency code, always lower case on the wire.
type Currency string

const (
	ZAR Currency = "zar"
	USD Currency = "usd"
)

// ParseCurrency normalises a user or config supplied currency code.
func ParseCurrency(s string) Currency {
	return Currency(strings.ToLower(strings.TrimSpace(s)))
}

func (c Currency) String() string {
	return string(c)
}

// Label is the display form used in titles, e.g. "USD".
func (c Currency) Label() string {
	return strings.ToUpper(string(c))
}

// ChangeWindow is a price_change_percentage window on the markets endpoint.
type ChangeWindow string

const (
	Window1h  ChangeWindow = "1h"
	Window24h ChangeWindow = "24h"
	Window7d  ChangeWindow = "7d"
)

// DefaultWindows are the windows the list view displays.
var DefaultWindows = []ChangeWindow{Window1h, Window24h, Window7d}

// CoinSummary is one row of the ranked list. JSON names follow the
// CoinGecko markets response so a cached snapshot has the same shape.
type CoinSummary struct {
	ID           string          `json:"id"`
	Rank         int             `json:"market_cap_rank"`
	ImageURL     string          `json:"image"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"current_price"`
	PctChange1h  decimal.Decimal `json:"price_change_percentage_1h_in_currency"`
	PctChange24h decimal.Decimal `json:"price_change_percentage_24h_in_currency"`
	PctChange7d  decimal.Decimal `json:"price_change_percentage_7d_in_currency"`
}

// Valid reports whether the summary carries its identity fields.
func (c CoinSummary) Valid() bool {
	return c.ID != "" && c.Name != ""
}

// CoinDetail is the single-asset view for one identifier, with monetary
// values expressed in Currency.
type CoinDetail struct {
	ID                    string
	Name                  string
	ImageURL              *string
	MarketRank            int
	Currency              Currency
	Price                 decimal.Decimal
	MarketCap             decimal.Decimal
	Volume24h             decimal.Decimal
	FullyDilutedValuation decimal.Decimal
	CirculatingSupply     decimal.Decimal
	TotalSupply           decimal.Decimal
	MaxSupply             *decimal.Decimal
	PctChange7dByCurrency map[Currency]decimal.Decimal
	SparklinePrices       []decimal.Decimal
}

// PctChange7d returns the 7 day change relative to currency c.
func (d CoinDetail) PctChange7d(c Currency) (decimal.Decimal, bool) {
	v, ok := d.PctChange7dByCurrency[c]
	return v, ok
}
