package chart

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-dashboard/internal/models"
	"coin-dashboard/internal/sparkline"
)

func series(trend models.Trend, prices ...int64) sparkline.Series {
	s := sparkline.Series{Title: "Bitcoin 7D Price Change - USD", Trend: trend}
	for i, p := range prices {
		s.Points = append(s.Points, sparkline.Point{Index: i, Price: decimal.NewFromInt(p)})
	}
	return s
}

func TestUnicode_RendersMinToMax(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, NewUnicode(10).Render(&sb, series(models.TrendPositive, 1, 5, 8)))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "🟢 Bitcoin 7D Price Change - USD", lines[0])
	assert.Equal(t, "▁▅█", lines[1])
	assert.Equal(t, "low 1.00 · high 8.00 · 1.00 → 8.00", lines[2])
}

func TestUnicode_FlatSeries(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, NewUnicode(10).Render(&sb, series(models.TrendNegative, 3, 3, 3, 3)))

	lines := strings.Split(sb.String(), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "🔴"))
	assert.Equal(t, "▅▅▅▅", lines[1])
}

func TestUnicode_BucketsToWidth(t *testing.T) {
	prices := make([]int64, 168)
	for i := range prices {
		prices[i] = int64(i)
	}

	var sb strings.Builder
	require.NoError(t, NewUnicode(24).Render(&sb, series(models.TrendPositive, prices...)))

	lines := strings.Split(sb.String(), "\n")
	assert.Equal(t, 24, utf8.RuneCountInString(lines[1]))
	assert.True(t, strings.HasPrefix(lines[1], "▁"))
	assert.True(t, strings.HasSuffix(lines[1], "█"))
}

func TestUnicode_NoPoints(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, NewUnicode(0).Render(&sb, series(models.TrendPositive)))
	assert.Contains(t, sb.String(), "No history data yet.")
}

func TestBucket_AveragesGroups(t *testing.T) {
	pts := series(models.TrendPositive, 1, 3, 5, 7).Points
	got := bucket(pts, 2)
	require.Len(t, got, 2)
	assert.True(t, got[0].Equal(decimal.NewFromInt(2)))
	assert.True(t, got[1].Equal(decimal.NewFromInt(6)))
}
