// Package session holds the last good list snapshot for the lifetime of a
// session, behind an injected Store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"coin-dashboard/internal/models"
)

// SnapshotKey is the fixed key of the cached list snapshot.
const SnapshotKey = "topCoinsData"

// Cache reads and writes the list snapshot. It holds at most one snapshot;
// every write replaces the previous one wholesale.
type Cache struct {
	store Store
	log   logrus.FieldLogger
}

func NewCache(store Store, log logrus.FieldLogger) *Cache {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Cache{store: store, log: log}
}

// WriteSnapshot serialises coins and stores them under SnapshotKey.
func (c *Cache) WriteSnapshot(ctx context.Context, coins []models.CoinSummary) error {
	if coins == nil {
		coins = []models.CoinSummary{}
	}
	data, err := json.Marshal(coins)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := c.store.Write(ctx, SnapshotKey, data); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	c.log.WithFields(logrus.Fields{"key": SnapshotKey, "count": len(coins)}).Debug("cached data")
	return nil
}

// ReadSnapshot returns the cached snapshot. A missing, unreadable or
// corrupt entry reports false; it is never surfaced as an error.
func (c *Cache) ReadSnapshot(ctx context.Context) ([]models.CoinSummary, bool) {
	data, err := c.store.Read(ctx, SnapshotKey)
	if errors.Is(err, ErrNotFound) {
		return nil, false
	}
	if err != nil {
		c.log.WithError(err).WithField("key", SnapshotKey).Warn("cache read failed, treating as absent")
		return nil, false
	}

	var coins []models.CoinSummary
	if err := json.Unmarshal(data, &coins); err != nil {
		c.log.WithError(err).WithField("key", SnapshotKey).Warn("corrupt cache entry, treating as absent")
		return nil, false
	}
	if coins == nil {
		c.log.WithField("key", SnapshotKey).Warn("cache entry is not an array, treating as absent")
		return nil, false
	}
	for i, coin := range coins {
		if !coin.Valid() {
			c.log.WithFields(logrus.Fields{"key": SnapshotKey, "index": i}).Warn("cache entry without id or name, treating as absent")
			return nil, false
		}
	}

	c.log.WithFields(logrus.Fields{"key": SnapshotKey, "count": len(coins)}).Debug("loaded cached data")
	return coins, true
}
