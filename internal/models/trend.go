package models

import "github.com/shopspring/decimal"

// Trend is the two-valued sign classification of a percentage change.
type Trend int

const (
	TrendPositive Trend = iota
	TrendNegative
)

// TrendOf classifies p; zero counts as positive.
func TrendOf(p decimal.Decimal) Trend {
	if p.Sign() < 0 {
		return TrendNegative
	}
	return TrendPositive
}

func (t Trend) String() string {
	if t == TrendNegative {
		return "negative"
	}
	return "positive"
}
