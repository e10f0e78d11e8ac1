package util

import (
	"context"
)

type key string

const (
	marketIDKey = key("market-id")
	sequenceKey = key("consensus-sequence")
	accountKey  = key("account-id")
)

// Fields returns a map of the key-value pairs that this library has set into `context`.
func Fields(ctx context.Context) map[string]interface{} {
	mapFields := make(map[string]interface{})
	mapFields["request_id"] = GetRequestID(ctx)
	if market := GetMarketID(ctx); market != "" {
		mapFields["market_id"] = market
	}
	if seq, ok := GetSequence(ctx); ok {
		mapFields["sequence"] = seq
	}
	if account := GetAccountID(ctx); account != "" {
		mapFields["account_id"] = account
	}

	return mapFields
}

// WithMarketID returns a context carrying the market being processed.
func WithMarketID(ctx context.Context, market string) context.Context {
	return context.WithValue(ctx, marketIDKey, market)
}

// WithSequence returns a context carrying the consensus sequence being applied.
func WithSequence(ctx context.Context, seq int64) context.Context {
	return context.WithValue(ctx, sequenceKey, seq)
}

// WithAccountID returns a context with an account id
func WithAccountID(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, accountKey, account)
}

// GetMarketID returns market id from context
// will return empty string if not present
func GetMarketID(ctx context.Context) string {
	id, _ := ctx.Value(marketIDKey).(string)
	return id
}

// GetSequence returns the consensus sequence from context.
func GetSequence(ctx context.Context) (int64, bool) {
	seq, ok := ctx.Value(sequenceKey).(int64)
	return seq, ok
}

// GetAccountID returns account id from context
// will return empty string if not present
func GetAccountID(ctx context.Context) string {
	id, _ := ctx.Value(accountKey).(string)
	return id
}
