package market

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"coin-dashboard/internal/coingecko"
	"coin-dashboard/internal/metrics"
	"coin-dashboard/internal/models"
)

// ListOptions are the query parameters of the ranked list.
type ListOptions struct {
	Currency models.Currency
	PageSize int
	Page     int
	Windows  []models.ChangeWindow
}

// DefaultListOptions is the top 10 by market cap in ZAR.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Currency: models.ZAR,
		PageSize: 10,
		Page:     1,
		Windows:  models.DefaultWindows,
	}
}

// ListState is what the presentation layer sees of the list view.
// CachedFallback renders exactly like Success.
type ListState struct {
	Status       Status
	Coins        []models.CoinSummary
	ErrorMessage string
	UpdatedAt    time.Time
}

// Ready reports whether Coins can be displayed.
func (s ListState) Ready() bool {
	return s.Status == StatusSuccess || s.Status == StatusCachedFallback
}

func (s ListState) clone() ListState {
	if s.Coins != nil {
		coins := make([]models.CoinSummary, len(s.Coins))
		copy(coins, s.Coins)
		s.Coins = coins
	}
	return s
}

// ListViewModel fetches the ranked list, caches every good result and
// falls back to the cached snapshot when a fetch fails.
type ListViewModel struct {
	gateway TopCoinsFetcher
	cache   SnapshotCache
	opts    ListOptions
	metrics *metrics.Metrics
	log     logrus.FieldLogger
	now     func() time.Time

	mu    sync.Mutex
	seq   uint64
	state ListState
}

func NewListViewModel(gateway TopCoinsFetcher, cache SnapshotCache, opts ListOptions, m *metrics.Metrics, log logrus.FieldLogger) *ListViewModel {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ListViewModel{
		gateway: gateway,
		cache:   cache,
		opts:    opts,
		metrics: m,
		log:     log.WithField("view", "list"),
		now:     time.Now,
	}
}

// State returns a copy of the current state.
func (vm *ListViewModel) State() ListState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state.clone()
}

// Activate runs one fetch for the view and returns the resulting state.
// If another activation started while this one was in flight, the result
// is discarded and the newer activation's current state is returned.
func (vm *ListViewModel) Activate(ctx context.Context) ListState {
	vm.mu.Lock()
	vm.seq++
	seq := vm.seq
	vm.state = ListState{Status: StatusLoading}
	vm.mu.Unlock()

	start := time.Now()
	coins, err := vm.gateway.FetchTopCoins(ctx, vm.opts.Currency, vm.opts.PageSize, vm.opts.Page, vm.opts.Windows)
	vm.metrics.ObserveFetch("top_coins", coingecko.Kind(err), time.Since(start))

	vm.mu.Lock()
	defer vm.mu.Unlock()

	if seq != vm.seq {
		vm.metrics.StaleResult("list")
		vm.log.WithFields(logrus.Fields{"seq": seq, "current": vm.seq}).Info("discarding superseded list result")
		return vm.state.clone()
	}

	if err == nil {
		vm.state = ListState{Status: StatusSuccess, Coins: coins, UpdatedAt: vm.now()}
		vm.log.WithFields(logrus.Fields{"source": "coingecko", "status": "success", "count": len(coins)}).Info("list updated")

		if werr := vm.cache.WriteSnapshot(ctx, coins); werr != nil {
			vm.metrics.CacheWrite(false)
			vm.log.WithError(werr).Warn("cache write failed")
		} else {
			vm.metrics.CacheWrite(true)
		}
		return vm.state.clone()
	}

	vm.log.WithFields(logrus.Fields{
		"source": "coingecko",
		"status": "failed",
		"kind":   coingecko.Kind(err),
		"error":  err,
	}).Warn("failed to fetch coins, trying cache")

	if cached, ok := vm.cache.ReadSnapshot(ctx); ok {
		vm.metrics.CacheFallback()
		vm.state = ListState{Status: StatusCachedFallback, Coins: cached, UpdatedAt: vm.now()}
		vm.log.WithFields(logrus.Fields{"source": "cache", "status": "success", "count": len(cached)}).Info("loaded cached data")
		return vm.state.clone()
	}

	vm.state = ListState{Status: StatusFailure, ErrorMessage: ListFailureMessage, UpdatedAt: vm.now()}
	vm.log.WithField("source", "all").Warn("no cached data, list unavailable")
	return vm.state.clone()
}
