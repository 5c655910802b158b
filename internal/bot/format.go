package bot

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"coin-dashboard/internal/market"
	"coin-dashboard/internal/models"
	"coin-dashboard/internal/sparkline"
)

const loadingText = "Loading..."

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
	trillion = decimal.NewFromInt(1_000_000_000_000)
)

// formatList renders the ranked table. Cached rows render exactly like
// fresh ones.
func formatList(state market.ListState, currency models.Currency) string {
	switch state.Status {
	case market.StatusFailure:
		return state.ErrorMessage
	case market.StatusSuccess, market.StatusCachedFallback:
	default:
		return loadingText
	}

	if len(state.Coins) == 0 {
		return "No coins to show."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Top %d coins by market cap (%s)\n", len(state.Coins), currency.Label())
	for _, c := range state.Coins {
		fmt.Fprintf(&sb, "\n%d. %s  %s\n", c.Rank, c.Name, formatPrice(c.Price, currency))
		fmt.Fprintf(&sb, "   1h %s  24h %s  7d %s\n",
			formatChange(c.PctChange1h), formatChange(c.PctChange24h), formatChange(c.PctChange7d))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatDetail renders the coin card followed by its chart, if any.
func formatDetail(state market.DetailState, ref models.Currency, r sparkline.Renderer) string {
	switch state.Status {
	case market.StatusFailure:
		return state.ErrorMessage
	case market.StatusSuccess:
	default:
		return loadingText
	}
	if state.Detail == nil {
		return loadingText
	}

	d := state.Detail
	cur := d.Currency

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)\n", d.Name, d.ID)
	fmt.Fprintf(&sb, "Rank: #%d\n", d.MarketRank)
	fmt.Fprintf(&sb, "Price: %s\n", formatPrice(d.Price, cur))
	fmt.Fprintf(&sb, "Market cap: %s\n", formatMoney(d.MarketCap, cur))
	fmt.Fprintf(&sb, "24h volume: %s\n", formatMoney(d.Volume24h, cur))
	fmt.Fprintf(&sb, "Fully diluted valuation: %s\n", formatMoney(d.FullyDilutedValuation, cur))
	fmt.Fprintf(&sb, "Circulating supply: %s\n", formatValue(d.CirculatingSupply))
	fmt.Fprintf(&sb, "Total supply: %s\n", formatValue(d.TotalSupply))
	if d.MaxSupply != nil {
		fmt.Fprintf(&sb, "Max supply: %s\n", formatValue(*d.MaxSupply))
	}

	for _, c := range changeCurrencies(cur, ref) {
		if pct, ok := d.PctChange7d(c); ok {
			fmt.Fprintf(&sb, "7d change (%s): %s\n", c.Label(), formatChange(pct))
		}
	}

	if state.Series != nil && r != nil {
		var chart strings.Builder
		if err := r.Render(&chart, *state.Series); err == nil {
			sb.WriteString("\n")
			sb.WriteString(chart.String())
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func changeCurrencies(display, ref models.Currency) []models.Currency {
	if ref == "" || ref == display {
		return []models.Currency{display}
	}
	return []models.Currency{display, ref}
}

func currencySymbol(c models.Currency) string {
	switch c {
	case models.ZAR:
		return "R"
	case models.USD:
		return "$"
	default:
		return c.Label() + " "
	}
}

// formatPrice keeps more precision below one unit so small caps stay readable.
func formatPrice(price decimal.Decimal, c models.Currency) string {
	if price.IsZero() {
		return "N/A"
	}
	if price.Abs().LessThan(decimal.NewFromInt(1)) {
		return currencySymbol(c) + price.StringFixed(6)
	}
	return currencySymbol(c) + humanize.FormatFloat("#,###.##", price.InexactFloat64())
}

func formatMoney(value decimal.Decimal, c models.Currency) string {
	v := formatValue(value)
	if v == "N/A" {
		return v
	}
	return currencySymbol(c) + v
}

func formatValue(value decimal.Decimal) string {
	if value.IsZero() {
		return "N/A"
	}
	abs := value.Abs()
	switch {
	case abs.GreaterThanOrEqual(trillion):
		return value.Div(trillion).StringFixed(2) + " T"
	case abs.GreaterThanOrEqual(billion):
		return value.Div(billion).StringFixed(2) + " B"
	case abs.GreaterThanOrEqual(million):
		return value.Div(million).StringFixed(2) + " M"
	case abs.GreaterThanOrEqual(thousand):
		return humanize.FormatFloat("#,###.##", value.InexactFloat64())
	}
	return value.StringFixed(2)
}

func formatChange(pct decimal.Decimal) string {
	marker := "🟢"
	if models.TrendOf(pct) == models.TrendNegative {
		marker = "🔴"
	}
	return fmt.Sprintf("%s %s%%", marker, pct.StringFixed(2))
}
