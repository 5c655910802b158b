// Package sparkline turns a coin's 7 day price history into a chart-ready
// series. Drawing belongs to a Renderer.
package sparkline

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/shopspring/decimal"

	"coin-dashboard/internal/models"
)

// ErrNoReference means the detail has no 7 day change for the reference
// currency, so no trend can be derived.
var ErrNoReference = errors.New("sparkline: no 7d change for reference currency")

var (
	positiveLine = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	negativeLine = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

// fillAlpha is the translucency of the area under the line (0.2).
const fillAlpha = 51

// Point is one sample; Index is the x-axis since the source has no timestamps.
type Point struct {
	Index int
	Price decimal.Decimal
}

type Series struct {
	Points    []Point
	Trend     models.Trend
	Title     string
	LineColor color.RGBA
	FillColor color.RGBA
}

// BuildSeries indexes the sparkline prices in order and styles the series
// by the sign of the 7 day change against ref.
func BuildSeries(detail models.CoinDetail, ref models.Currency) (Series, error) {
	pct, ok := detail.PctChange7d(ref)
	if !ok {
		return Series{}, fmt.Errorf("%w %q", ErrNoReference, ref.String())
	}

	points := make([]Point, len(detail.SparklinePrices))
	for i, p := range detail.SparklinePrices {
		points[i] = Point{Index: i, Price: p}
	}

	trend := models.TrendOf(pct)
	line := LineColor(trend)
	return Series{
		Points:    points,
		Trend:     trend,
		Title:     fmt.Sprintf("%s 7D Price Change - %s", detail.Name, ref.Label()),
		LineColor: line,
		FillColor: color.RGBA{R: line.R, G: line.G, B: line.B, A: fillAlpha},
	}, nil
}

func LineColor(t models.Trend) color.RGBA {
	if t == models.TrendNegative {
		return negativeLine
	}
	return positiveLine
}

// Renderer is the charting collaborator. It owns whatever surface it
// draws on.
type Renderer interface {
	Render(w io.Writer, s Series) error
}

// Pipeline builds series against a fixed reference currency and hands
// them to a Renderer.
type Pipeline struct {
	Reference models.Currency
	Renderer  Renderer
}

func NewPipeline(ref models.Currency, r Renderer) *Pipeline {
	return &Pipeline{Reference: ref, Renderer: r}
}

func (p *Pipeline) Build(detail models.CoinDetail) (Series, error) {
	return BuildSeries(detail, p.Reference)
}

// Draw builds the series for detail and renders it to w.
func (p *Pipeline) Draw(w io.Writer, detail models.CoinDetail) error {
	s, err := p.Build(detail)
	if err != nil {
		return err
	}
	return p.Renderer.Render(w, s)
}
