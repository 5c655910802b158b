package coingecko

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"coin-dashboard/internal/models"
)

// Wire shapes use pointers so an absent or null field can be told apart
// from a zero value.

type marketRow struct {
	ID            *string          `json:"id"`
	MarketCapRank *int             `json:"market_cap_rank"`
	Image         *string          `json:"image"`
	Name          *string          `json:"name"`
	CurrentPrice  *decimal.Decimal `json:"current_price"`
	Change1h      *decimal.Decimal `json:"price_change_percentage_1h_in_currency"`
	Change24h     *decimal.Decimal `json:"price_change_percentage_24h_in_currency"`
	Change7d      *decimal.Decimal `json:"price_change_percentage_7d_in_currency"`
}

type currencyMap map[string]*decimal.Decimal

func (m currencyMap) get(c models.Currency) (decimal.Decimal, bool) {
	v, ok := m[c.String()]
	if !ok || v == nil {
		return decimal.Zero, false
	}
	return *v, true
}

type coinResponse struct {
	Name  *string `json:"name"`
	Image *struct {
		Small *string `json:"small"`
	} `json:"image"`
	MarketData *struct {
		MarketCapRank         *int             `json:"market_cap_rank"`
		CurrentPrice          currencyMap      `json:"current_price"`
		MarketCap             currencyMap      `json:"market_cap"`
		TotalVolume           currencyMap      `json:"total_volume"`
		FullyDilutedValuation currencyMap      `json:"fully_diluted_valuation"`
		CirculatingSupply     *decimal.Decimal `json:"circulating_supply"`
		TotalSupply           *decimal.Decimal `json:"total_supply"`
		MaxSupply             *decimal.Decimal `json:"max_supply"`
		Change7dInCurrency    currencyMap      `json:"price_change_percentage_7d_in_currency"`
		Sparkline7d           *struct {
			Price []*decimal.Decimal `json:"price"`
		} `json:"sparkline_7d"`
	} `json:"market_data"`
}

// validator records the first missing field.
type validator struct {
	prefix string
	err    error
}

func (v *validator) need(path string, present bool) {
	if v.err == nil && !present {
		v.err = fmt.Errorf("missing or null field %s%s", v.prefix, path)
	}
}

func (v *validator) amount(path string, m currencyMap, c models.Currency) decimal.Decimal {
	d, ok := m.get(c)
	v.need(path+"."+c.String(), ok)
	return d
}

func decodeMarkets(body []byte, windows []models.ChangeWindow) ([]models.CoinSummary, error) {
	var rows []marketRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		return nil, errors.New("expected a JSON array")
	}

	want := make(map[models.ChangeWindow]bool, len(windows))
	for _, w := range windows {
		want[w] = true
	}

	coins := make([]models.CoinSummary, 0, len(rows))
	for i, r := range rows {
		v := validator{prefix: fmt.Sprintf("[%d].", i)}
		v.need("id", r.ID != nil && *r.ID != "")
		v.need("market_cap_rank", r.MarketCapRank != nil)
		v.need("image", r.Image != nil)
		v.need("name", r.Name != nil && *r.Name != "")
		v.need("current_price", r.CurrentPrice != nil)
		if want[models.Window1h] {
			v.need("price_change_percentage_1h_in_currency", r.Change1h != nil)
		}
		if want[models.Window24h] {
			v.need("price_change_percentage_24h_in_currency", r.Change24h != nil)
		}
		if want[models.Window7d] {
			v.need("price_change_percentage_7d_in_currency", r.Change7d != nil)
		}
		if v.err != nil {
			return nil, v.err
		}

		coins = append(coins, models.CoinSummary{
			ID:           *r.ID,
			Rank:         *r.MarketCapRank,
			ImageURL:     *r.Image,
			Name:         *r.Name,
			Price:        *r.CurrentPrice,
			PctChange1h:  valueOrZero(r.Change1h),
			PctChange24h: valueOrZero(r.Change24h),
			PctChange7d:  valueOrZero(r.Change7d),
		})
	}
	return coins, nil
}

func decodeCoin(body []byte, id string, currency models.Currency) (models.CoinDetail, error) {
	var r coinResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return models.CoinDetail{}, err
	}

	v := validator{}
	v.need("name", r.Name != nil && *r.Name != "")
	v.need("market_data", r.MarketData != nil)
	if v.err != nil {
		return models.CoinDetail{}, v.err
	}

	md := r.MarketData
	v.need("market_data.market_cap_rank", md.MarketCapRank != nil)
	detail := models.CoinDetail{
		ID:                    id,
		Name:                  *r.Name,
		Currency:              currency,
		Price:                 v.amount("market_data.current_price", md.CurrentPrice, currency),
		MarketCap:             v.amount("market_data.market_cap", md.MarketCap, currency),
		Volume24h:             v.amount("market_data.total_volume", md.TotalVolume, currency),
		FullyDilutedValuation: v.amount("market_data.fully_diluted_valuation", md.FullyDilutedValuation, currency),
		MaxSupply:             md.MaxSupply,
	}
	v.amount("market_data.price_change_percentage_7d_in_currency", md.Change7dInCurrency, currency)
	v.need("market_data.circulating_supply", md.CirculatingSupply != nil)
	v.need("market_data.total_supply", md.TotalSupply != nil)
	v.need("market_data.sparkline_7d.price", md.Sparkline7d != nil && md.Sparkline7d.Price != nil)
	if v.err != nil {
		return models.CoinDetail{}, v.err
	}

	detail.MarketRank = *md.MarketCapRank
	detail.CirculatingSupply = *md.CirculatingSupply
	detail.TotalSupply = *md.TotalSupply

	if r.Image != nil && r.Image.Small != nil && *r.Image.Small != "" {
		img := *r.Image.Small
		detail.ImageURL = &img
	}

	detail.PctChange7dByCurrency = make(map[models.Currency]decimal.Decimal, len(md.Change7dInCurrency))
	for code, pct := range md.Change7dInCurrency {
		if pct != nil {
			detail.PctChange7dByCurrency[models.ParseCurrency(code)] = *pct
		}
	}

	detail.SparklinePrices = make([]decimal.Decimal, len(md.Sparkline7d.Price))
	for i, p := range md.Sparkline7d.Price {
		if p == nil {
			return models.CoinDetail{}, fmt.Errorf("missing or null field market_data.sparkline_7d.price[%d]", i)
		}
		detail.SparklinePrices[i] = *p
	}

	return detail, nil
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
