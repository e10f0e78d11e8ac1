package redis

import (
	"context"
	"time"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	pkgredis "github.com/muhammadchandra19/exchange/pkg/redis"
	sequencerv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/sequencer/v1"
)

const (
	renewScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`

	releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`
)

// Lease is a per-market writer lock held under a TTL. Only the owner that set
// the key can extend or drop it.
type Lease struct {
	client pkgredis.Client
	owner  string
	ttl    time.Duration
	logger logger.Interface
}

// NewLease creates a lease held as owner.
func NewLease(client pkgredis.Client, owner string, ttl time.Duration, logger logger.Interface) *Lease {
	return &Lease{
		client: client,
		owner:  owner,
		ttl:    ttl,
		logger: logger,
	}
}

var _ sequencerv1.Lease = (*Lease)(nil)

func (l *Lease) key(marketID string) string {
	return l.client.Key("lease", marketID)
}

// Acquire takes the lease, or re-takes it when this owner already holds it.
func (l *Lease) Acquire(ctx context.Context, marketID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(marketID), l.owner, l.ttl)
	if err != nil {
		return false, errors.TracerFromError(err)
	}
	if ok {
		l.logger.InfoContext(ctx, "Lease acquired",
			logger.Field{Key: "market_id", Value: marketID},
			logger.Field{Key: "owner", Value: l.owner},
		)
		return true, nil
	}

	holder, err := l.client.Get(ctx, l.key(marketID))
	if err != nil {
		return false, errors.TracerFromError(err)
	}
	if holder != l.owner {
		l.logger.WarnContext(ctx, "Lease held by another instance",
			logger.Field{Key: "market_id", Value: marketID},
			logger.Field{Key: "holder", Value: holder},
		)
		return false, nil
	}
	return l.Renew(ctx, marketID)
}

// Renew extends the TTL. It reports false once the lease was lost.
func (l *Lease) Renew(ctx context.Context, marketID string) (bool, error) {
	n, err := l.client.Eval(ctx, renewScript, []string{l.key(marketID)}, l.owner, l.ttl.Milliseconds())
	if err != nil {
		return false, errors.TracerFromError(err)
	}
	return n == 1, nil
}

// Release drops the lease if this owner still holds it.
func (l *Lease) Release(ctx context.Context, marketID string) error {
	if _, err := l.client.Eval(ctx, releaseScript, []string{l.key(marketID)}, l.owner); err != nil {
		return errors.TracerFromError(err)
	}
	l.logger.InfoContext(ctx, "Lease released", logger.Field{Key: "market_id", Value: marketID})
	return nil
}
