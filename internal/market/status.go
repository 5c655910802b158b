package market

import (
	"context"

	"coin-dashboard/internal/models"
)

// Status is the lifecycle state of a view model.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusCachedFallback
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusCachedFallback:
		return "cached_fallback"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// User-facing failure messages.
const (
	ListFailureMessage   = "Failed to fetch data. Please try again later. This is probably due to the API rate limit."
	DetailFailureMessage = "Error fetching from API, wait a minute or two and try again"
)

// TopCoinsFetcher is the part of the gateway the list view needs.
type TopCoinsFetcher interface {
	FetchTopCoins(ctx context.Context, currency models.Currency, pageSize, page int, windows []models.ChangeWindow) ([]models.CoinSummary, error)
}

// CoinDetailFetcher is the part of the gateway the detail view needs.
type CoinDetailFetcher interface {
	FetchCoinDetail(ctx context.Context, id string, currency models.Currency) (models.CoinDetail, error)
}

// SnapshotCache stores the last good list snapshot.
type SnapshotCache interface {
	WriteSnapshot(ctx context.Context, coins []models.CoinSummary) error
	ReadSnapshot(ctx context.Context) ([]models.CoinSummary, bool)
}
