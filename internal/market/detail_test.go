package market

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-dashboard/internal/coingecko"
	"coin-dashboard/internal/metrics"
	"coin-dashboard/internal/models"
	"coin-dashboard/internal/sparkline"
)

type detailFunc func(ctx context.Context, id string, currency models.Currency) (models.CoinDetail, error)

func (f detailFunc) FetchCoinDetail(ctx context.Context, id string, currency models.Currency) (models.CoinDetail, error) {
	return f(ctx, id, currency)
}

func coinDetail(id, name, usd7d string, prices ...int64) models.CoinDetail {
	d := models.CoinDetail{
		ID:         id,
		Name:       name,
		MarketRank: 1,
		Currency:   models.ZAR,
		Price:      decimal.NewFromInt(1200000),
		PctChange7dByCurrency: map[models.Currency]decimal.Decimal{
			models.ZAR: decimal.RequireFromString("-2.9"),
		},
	}
	if usd7d != "" {
		d.PctChange7dByCurrency[models.USD] = decimal.RequireFromString(usd7d)
	}
	for _, p := range prices {
		d.SparklinePrices = append(d.SparklinePrices, decimal.NewFromInt(p))
	}
	return d
}

func pipeline() *sparkline.Pipeline {
	return sparkline.NewPipeline(models.USD, nil)
}

func TestDetailViewModel_InitialStateIsIdle(t *testing.T) {
	vm := NewDetailViewModel(detailFunc(nil), pipeline(), models.ZAR, nil, quietLogger())
	assert.Equal(t, StatusIdle, vm.State().Status)
}

func TestDetailViewModel_SuccessBuildsSparkline(t *testing.T) {
	var gotID string
	var gotCurrency models.Currency
	gw := detailFunc(func(_ context.Context, id string, c models.Currency) (models.CoinDetail, error) {
		gotID, gotCurrency = id, c
		return coinDetail(id, "Bitcoin", "-3.2", 64000, 64500, 63900), nil
	})

	vm := NewDetailViewModel(gw, pipeline(), models.ZAR, nil, quietLogger())
	st := vm.Activate(context.Background(), "bitcoin")

	assert.Equal(t, "bitcoin", gotID)
	assert.Equal(t, models.ZAR, gotCurrency)

	assert.Equal(t, StatusSuccess, st.Status)
	assert.Equal(t, "bitcoin", st.ID)
	assert.Empty(t, st.ErrorMessage)
	require.NotNil(t, st.Detail)
	assert.Equal(t, "Bitcoin", st.Detail.Name)

	require.NotNil(t, st.Series)
	assert.Equal(t, models.TrendNegative, st.Series.Trend)
	assert.Equal(t, "Bitcoin 7D Price Change - USD", st.Series.Title)
	assert.Len(t, st.Series.Points, 3)
}

func TestDetailViewModel_SuccessWithoutReferenceHasNoSeries(t *testing.T) {
	gw := detailFunc(func(_ context.Context, id string, _ models.Currency) (models.CoinDetail, error) {
		return coinDetail(id, "Bitcoin", "", 1, 2), nil
	})

	vm := NewDetailViewModel(gw, pipeline(), models.ZAR, nil, quietLogger())
	st := vm.Activate(context.Background(), "bitcoin")

	assert.Equal(t, StatusSuccess, st.Status)
	assert.NotNil(t, st.Detail)
	assert.Nil(t, st.Series)
}

func TestDetailViewModel_UnknownIDIsFailure(t *testing.T) {
	m := metrics.New("test")
	gw := detailFunc(func(context.Context, string, models.Currency) (models.CoinDetail, error) {
		return models.CoinDetail{}, &coingecko.HTTPStatusError{Op: "coin_detail", StatusCode: http.StatusNotFound}
	})

	vm := NewDetailViewModel(gw, pipeline(), models.ZAR, m, quietLogger())
	st := vm.Activate(context.Background(), "no-such-coin")

	assert.Equal(t, StatusFailure, st.Status)
	assert.Equal(t, "no-such-coin", st.ID)
	assert.Nil(t, st.Detail)
	assert.Nil(t, st.Series)
	assert.Equal(t, DetailFailureMessage, st.ErrorMessage)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("coin_detail", "status")))
}

func TestDetailViewModel_AnyErrorIsFailure(t *testing.T) {
	errs := []error{
		&coingecko.NetworkError{Op: "coin_detail", Err: errors.New("offline")},
		&coingecko.ParseError{Op: "coin_detail", Err: errors.New("missing field name")},
		&coingecko.HTTPStatusError{Op: "coin_detail", StatusCode: http.StatusTooManyRequests},
	}

	for _, fetchErr := range errs {
		gw := detailFunc(func(context.Context, string, models.Currency) (models.CoinDetail, error) {
			return models.CoinDetail{}, fetchErr
		})
		vm := NewDetailViewModel(gw, pipeline(), models.ZAR, nil, quietLogger())
		st := vm.Activate(context.Background(), "bitcoin")
		assert.Equal(t, StatusFailure, st.Status, "error %v", fetchErr)
		assert.NotEmpty(t, st.ErrorMessage)
	}
}

func TestDetailViewModel_NilSeriesBuilder(t *testing.T) {
	gw := detailFunc(func(_ context.Context, id string, _ models.Currency) (models.CoinDetail, error) {
		return coinDetail(id, "Bitcoin", "1", 1), nil
	})

	vm := NewDetailViewModel(gw, nil, models.ZAR, nil, quietLogger())
	st := vm.Activate(context.Background(), "bitcoin")
	assert.Equal(t, StatusSuccess, st.Status)
	assert.Nil(t, st.Series)
}

func TestDetailViewModel_IdentifierChangeDiscardsStaleResult(t *testing.T) {
	ctx := context.Background()
	m := metrics.New("test")

	started := make(chan struct{})
	release := make(chan struct{})
	gw := detailFunc(func(_ context.Context, id string, _ models.Currency) (models.CoinDetail, error) {
		if id == "bitcoin" {
			close(started)
			<-release
			return coinDetail(id, "Bitcoin", "5", 1, 2, 3), nil
		}
		return coinDetail(id, "Ethereum", "-1", 4, 5), nil
	})

	vm := NewDetailViewModel(gw, pipeline(), models.ZAR, m, quietLogger())

	done := make(chan DetailState)
	go func() { done <- vm.Activate(ctx, "bitcoin") }()
	<-started

	eth := vm.Activate(ctx, "ethereum")
	require.Equal(t, StatusSuccess, eth.Status)
	require.Equal(t, "Ethereum", eth.Detail.Name)

	close(release)
	late := <-done

	assert.Equal(t, "ethereum", late.ID)
	assert.Equal(t, "Ethereum", late.Detail.Name)

	cur := vm.State()
	assert.Equal(t, "ethereum", cur.ID)
	assert.Equal(t, "Ethereum", cur.Detail.Name)
	assert.Equal(t, models.TrendNegative, cur.Series.Trend)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StaleResults.WithLabelValues("detail")))
}

func TestDetailViewModel_SameIDReactivationDiscardsOlder(t *testing.T) {
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	n := 0
	gw := detailFunc(func(_ context.Context, id string, _ models.Currency) (models.CoinDetail, error) {
		n++
		if n == 1 {
			close(started)
			<-release
			return models.CoinDetail{}, &coingecko.HTTPStatusError{Op: "coin_detail", StatusCode: http.StatusTooManyRequests}
		}
		return coinDetail(id, "Bitcoin", "2", 1), nil
	})

	vm := NewDetailViewModel(gw, pipeline(), models.ZAR, nil, quietLogger())

	done := make(chan DetailState)
	go func() { done <- vm.Activate(ctx, "bitcoin") }()
	<-started

	second := vm.Activate(ctx, "bitcoin")
	require.Equal(t, StatusSuccess, second.Status)

	close(release)
	first := <-done
	assert.Equal(t, StatusSuccess, first.Status)
	assert.Equal(t, StatusSuccess, vm.State().Status)
}
