// Package chart draws sparkline series as text.
package chart

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"coin-dashboard/internal/models"
	"coin-dashboard/internal/sparkline"
)

var blocks = []rune("▁▂▃▄▅▆▇█")

// Unicode renders a series as a titled one-line block sparkline. Points are
// averaged into at most Width buckets for display.
type Unicode struct {
	Width int
}

func NewUnicode(width int) *Unicode {
	if width <= 0 {
		width = 28
	}
	return &Unicode{Width: width}
}

func (u *Unicode) Render(w io.Writer, s sparkline.Series) error {
	marker := "🟢"
	if s.Trend == models.TrendNegative {
		marker = "🔴"
	}

	if len(s.Points) == 0 {
		_, err := fmt.Fprintf(w, "%s %s\nNo history data yet.\n", marker, s.Title)
		return err
	}

	values := bucket(s.Points, u.Width)
	minPrice, maxPrice := values[0], values[0]
	for _, v := range values {
		if v.LessThan(minPrice) {
			minPrice = v
		}
		if v.GreaterThan(maxPrice) {
			maxPrice = v
		}
	}

	priceRange := maxPrice.Sub(minPrice)
	top := decimal.NewFromInt(int64(len(blocks) - 1))

	var line strings.Builder
	for _, v := range values {
		level := len(blocks) / 2
		if !priceRange.IsZero() {
			level = int(v.Sub(minPrice).Div(priceRange).Mul(top).Round(0).IntPart())
		}
		line.WriteRune(blocks[level])
	}

	first := s.Points[0].Price
	last := s.Points[len(s.Points)-1].Price
	_, err := fmt.Fprintf(w, "%s %s\n%s\nlow %s · high %s · %s → %s\n",
		marker, s.Title, line.String(),
		minPrice.StringFixed(2), maxPrice.StringFixed(2),
		first.StringFixed(2), last.StringFixed(2))
	return err
}

// bucket averages points into at most n consecutive groups.
func bucket(points []sparkline.Point, n int) []decimal.Decimal {
	if len(points) <= n {
		out := make([]decimal.Decimal, len(points))
		for i, p := range points {
			out[i] = p.Price
		}
		return out
	}

	out := make([]decimal.Decimal, n)
	for b := 0; b < n; b++ {
		start := b * len(points) / n
		end := (b + 1) * len(points) / n
		sum := decimal.Zero
		for _, p := range points[start:end] {
			sum = sum.Add(p.Price)
		}
		out[b] = sum.Div(decimal.NewFromInt(int64(end - start)))
	}
	return out
}
