// Package cache stores the expected amount for each pending provider order.
package cache

import (
	"context"
	"errors"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderCache associates a provider order id with its server-resolved amount.
type OrderCache interface {
	Put(ctx context.Context, orderID string, amount int64) error
	Get(ctx context.Context, orderID string) (int64, error)
	Close() error
}
