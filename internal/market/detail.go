package market

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"coin-dashboard/internal/coingecko"
	"coin-dashboard/internal/metrics"
	"coin-dashboard/internal/models"
	"coin-dashboard/internal/sparkline"
)

// SeriesBuilder turns a detail into a chart series.
type SeriesBuilder interface {
	Build(detail models.CoinDetail) (sparkline.Series, error)
}

// DetailState is what the presentation layer sees of the detail view.
// Series is nil unless Status is Success and a trend could be derived.
type DetailState struct {
	Status       Status
	ID           string
	Detail       *models.CoinDetail
	Series       *sparkline.Series
	ErrorMessage string
}

// DetailViewModel fetches one coin by id. There is no cache fallback.
type DetailViewModel struct {
	gateway  CoinDetailFetcher
	series   SeriesBuilder
	currency models.Currency
	metrics  *metrics.Metrics
	log      logrus.FieldLogger

	mu    sync.Mutex
	seq   uint64
	state DetailState
}

func NewDetailViewModel(gateway CoinDetailFetcher, series SeriesBuilder, currency models.Currency, m *metrics.Metrics, log logrus.FieldLogger) *DetailViewModel {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &DetailViewModel{
		gateway:  gateway,
		series:   series,
		currency: currency,
		metrics:  m,
		log:      log.WithField("view", "detail"),
	}
}

// State returns the current state. Detail and Series are shared, treat
// them as read-only.
func (vm *DetailViewModel) State() DetailState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

// Activate targets id and fetches it. A result that lands after the view
// was re-targeted or re-activated is dropped; the caller then gets the
// current state instead.
func (vm *DetailViewModel) Activate(ctx context.Context, id string) DetailState {
	vm.mu.Lock()
	vm.seq++
	seq := vm.seq
	vm.state = DetailState{Status: StatusLoading, ID: id}
	vm.mu.Unlock()

	log := vm.log.WithField("coin", id)

	start := time.Now()
	detail, err := vm.gateway.FetchCoinDetail(ctx, id, vm.currency)
	vm.metrics.ObserveFetch("coin_detail", coingecko.Kind(err), time.Since(start))

	var next DetailState
	if err != nil {
		log.WithFields(logrus.Fields{
			"source": "coingecko",
			"status": "failed",
			"kind":   coingecko.Kind(err),
			"error":  err,
		}).Warn("failed to fetch coin")
		next = DetailState{Status: StatusFailure, ID: id, ErrorMessage: DetailFailureMessage}
	} else {
		next = DetailState{Status: StatusSuccess, ID: id, Detail: &detail}
		if vm.series != nil {
			s, serr := vm.series.Build(detail)
			if serr != nil {
				log.WithError(serr).Warn("no sparkline for coin")
			} else {
				next.Series = &s
			}
		}
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()

	if seq != vm.seq || id != vm.state.ID {
		vm.metrics.StaleResult("detail")
		log.WithFields(logrus.Fields{"seq": seq, "current": vm.seq, "current_coin": vm.state.ID}).Info("discarding superseded detail result")
		return vm.state
	}

	vm.state = next
	if err == nil {
		log.WithFields(logrus.Fields{"source": "coingecko", "status": "success"}).Info("detail updated")
	}
	return vm.state
}
