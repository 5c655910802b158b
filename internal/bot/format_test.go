package bot

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"coin-dashboard/internal/chart"
	"coin-dashboard/internal/market"
	"coin-dashboard/internal/models"
	"coin-dashboard/internal/sparkline"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "N/A"},
		{"12.345", "12.35"},
		{"1234.5", "1,234.50"},
		{"19700000", "19.70 M"},
		{"27000000000", "27.00 B"},
		{"1280000000000", "1.28 T"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatValue(d(tt.in)), tt.in)
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "N/A", formatPrice(decimal.Zero, models.ZAR))
	assert.Equal(t, "R1,200,000.50", formatPrice(d("1200000.5"), models.ZAR))
	assert.Equal(t, "$65,000.00", formatPrice(d("65000"), models.USD))
	assert.Equal(t, "$0.000012", formatPrice(d("0.0000123"), models.USD))
	assert.Equal(t, "EUR 2.50", formatPrice(d("2.5"), models.Currency("eur")))
}

func TestFormatChange(t *testing.T) {
	assert.Equal(t, "🟢 3.25%", formatChange(d("3.25")))
	assert.Equal(t, "🟢 0.00%", formatChange(decimal.Zero))
	assert.Equal(t, "🔴 -0.20%", formatChange(d("-0.2")))
}

func listState(status market.Status) market.ListState {
	return market.ListState{
		Status: status,
		Coins: []models.CoinSummary{
			{ID: "bitcoin", Rank: 1, Name: "Bitcoin", Price: d("1200000.5"), PctChange1h: d("0.12"), PctChange24h: d("-1.5"), PctChange7d: d("3.25")},
			{ID: "ethereum", Rank: 2, Name: "Ethereum", Price: d("65000"), PctChange1h: d("-0.2"), PctChange24h: decimal.Zero, PctChange7d: d("-4.1")},
		},
	}
}

func TestFormatList_Rows(t *testing.T) {
	out := formatList(listState(market.StatusSuccess), models.ZAR)

	assert.Contains(t, out, "Top 2 coins by market cap (ZAR)")
	assert.Contains(t, out, "1. Bitcoin  R1,200,000.50")
	assert.Contains(t, out, "1h 🟢 0.12%  24h 🔴 -1.50%  7d 🟢 3.25%")
	assert.Contains(t, out, "2. Ethereum  R65,000.00")
	assert.Contains(t, out, "1h 🔴 -0.20%  24h 🟢 0.00%  7d 🔴 -4.10%")
}

func TestFormatList_CachedRendersLikeFresh(t *testing.T) {
	fresh := formatList(listState(market.StatusSuccess), models.ZAR)
	cached := formatList(listState(market.StatusCachedFallback), models.ZAR)
	assert.Equal(t, fresh, cached)
}

func TestFormatList_NonReadyStates(t *testing.T) {
	failed := market.ListState{Status: market.StatusFailure, ErrorMessage: market.ListFailureMessage}
	assert.Equal(t, market.ListFailureMessage, formatList(failed, models.ZAR))
	assert.Equal(t, loadingText, formatList(market.ListState{Status: market.StatusLoading}, models.ZAR))
	assert.Equal(t, loadingText, formatList(market.ListState{}, models.ZAR))
	assert.Equal(t, "No coins to show.", formatList(market.ListState{Status: market.StatusSuccess}, models.ZAR))
}

func bitcoinDetail() *models.CoinDetail {
	maxSupply := d("21000000")
	return &models.CoinDetail{
		ID:                    "bitcoin",
		Name:                  "Bitcoin",
		MarketRank:            1,
		Currency:              models.ZAR,
		Price:                 d("1200000.5"),
		MarketCap:             d("23000000000000"),
		Volume24h:             d("500000000000"),
		FullyDilutedValuation: d("25000000000000"),
		CirculatingSupply:     d("19700000"),
		TotalSupply:           d("21000000"),
		MaxSupply:             &maxSupply,
		PctChange7dByCurrency: map[models.Currency]decimal.Decimal{models.ZAR: d("-2.9"), models.USD: d("-3.2")},
		SparklinePrices:       []decimal.Decimal{d("1"), d("5"), d("8")},
	}
}

func TestFormatDetail_Card(t *testing.T) {
	detail := bitcoinDetail()
	series, err := sparkline.BuildSeries(*detail, models.USD)
	assert.NoError(t, err)

	out := formatDetail(market.DetailState{
		Status: market.StatusSuccess,
		ID:     "bitcoin",
		Detail: detail,
		Series: &series,
	}, models.USD, chart.NewUnicode(28))

	assert.Contains(t, out, "Bitcoin (bitcoin)")
	assert.Contains(t, out, "Rank: #1")
	assert.Contains(t, out, "Price: R1,200,000.50")
	assert.Contains(t, out, "Market cap: R23.00 T")
	assert.Contains(t, out, "24h volume: R500.00 B")
	assert.Contains(t, out, "Fully diluted valuation: R25.00 T")
	assert.Contains(t, out, "Circulating supply: 19.70 M")
	assert.Contains(t, out, "Total supply: 21.00 M")
	assert.Contains(t, out, "Max supply: 21.00 M")
	assert.Contains(t, out, "7d change (ZAR): 🔴 -2.90%")
	assert.Contains(t, out, "7d change (USD): 🔴 -3.20%")
	assert.Contains(t, out, "🔴 Bitcoin 7D Price Change - USD")
	assert.Contains(t, out, "▁▅█")
}

func TestFormatDetail_OptionalPartsOmitted(t *testing.T) {
	detail := bitcoinDetail()
	detail.MaxSupply = nil
	delete(detail.PctChange7dByCurrency, models.USD)

	out := formatDetail(market.DetailState{Status: market.StatusSuccess, ID: "bitcoin", Detail: detail}, models.USD, chart.NewUnicode(28))

	assert.NotContains(t, out, "Max supply")
	assert.NotContains(t, out, "(USD)")
	assert.NotContains(t, out, "7D Price Change")
	assert.Contains(t, out, "7d change (ZAR)")
}

func TestFormatDetail_NonReadyStates(t *testing.T) {
	failed := market.DetailState{Status: market.StatusFailure, ID: "x", ErrorMessage: market.DetailFailureMessage}
	assert.Equal(t, market.DetailFailureMessage, formatDetail(failed, models.USD, nil))
	assert.Equal(t, loadingText, formatDetail(market.DetailState{Status: market.StatusLoading}, models.USD, nil))
	assert.Equal(t, loadingText, formatDetail(market.DetailState{Status: market.StatusSuccess}, models.USD, nil))
}
