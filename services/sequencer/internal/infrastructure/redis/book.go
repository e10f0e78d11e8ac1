package redis

import (
	"context"
	"encoding/json"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	pkgredis "github.com/muhammadchandra19/exchange/pkg/redis"
	orderbookv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/orderbook/v1"
)

// BookCache serves committed book snapshots to readers. Entries never expire:
// a stale snapshot carries its own sequence.
type BookCache struct {
	client pkgredis.Client
	logger logger.Interface
}

var _ orderbookv1.SnapshotStore = (*BookCache)(nil)

// NewBookCache creates a new BookCache.
func NewBookCache(client pkgredis.Client, logger logger.Interface) *BookCache {
	return &BookCache{
		client: client,
		logger: logger,
	}
}

func (c *BookCache) key(marketID string) string {
	return c.client.Key("book", marketID)
}

// Publish overwrites the market's snapshot.
func (c *BookCache) Publish(ctx context.Context, snapshot *orderbookv1.Snapshot) error {
	buf, err := json.Marshal(snapshot)
	if err != nil {
		return errors.NewTracer("snapshot_marshal_error").Wrap(err)
	}

	if err := c.client.Set(ctx, c.key(snapshot.MarketID), buf, 0); err != nil {
		c.logger.ErrorContext(ctx, err,
			logger.Field{Key: "market_id", Value: snapshot.MarketID},
			logger.Field{Key: "action", Value: "publish snapshot"},
		)
		return errors.NewTracer("snapshot_store_error").Wrap(err)
	}

	c.logger.DebugContext(ctx, "Snapshot published",
		logger.Field{Key: "market_id", Value: snapshot.MarketID},
		logger.Field{Key: "sequence", Value: snapshot.Sequence},
	)
	return nil
}

// Load returns the last published snapshot, or nil when there is none.
func (c *BookCache) Load(ctx context.Context, marketID string) (*orderbookv1.Snapshot, error) {
	data, err := c.client.Get(ctx, c.key(marketID))
	if err != nil {
		return nil, errors.NewTracer("snapshot_load_error").Wrap(err)
	}
	if data == "" {
		return nil, nil
	}

	var snapshot orderbookv1.Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		c.logger.ErrorContext(ctx, err,
			logger.Field{Key: "market_id", Value: marketID},
			logger.Field{Key: "action", Value: "unmarshal snapshot"},
		)
		return nil, errors.NewTracer("snapshot_unmarshal_error").Wrap(err)
	}
	snapshot.UpdatedAt = snapshot.UpdatedAt.UTC()

	return &snapshot, nil
}
