package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNoPendingOrder means the order handle maps to nothing: either it never
// existed, it expired, or a previous reconciliation already consumed it.
var ErrNoPendingOrder = errors.New("no pending order for this id")

// PendingOrderStore holds the transient order-handle → bill mapping for
// online payments awaiting confirmation. Entries carry a TTL so abandoned
// orders clean themselves up.
type PendingOrderStore interface {
	Put(ctx context.Context, orderID string, billID uuid.UUID, ttl time.Duration) error
	Consume(ctx context.Context, orderID string) (uuid.UUID, error)
}

type redisPendingStore struct {
	rdb *redis.Client
}

func NewPendingOrderStore(rdb *redis.Client) PendingOrderStore {
	return &redisPendingStore{rdb: rdb}
}

func pendingKey(orderID string) string {
	return "payment:order:" + orderID
}

func (s *redisPendingStore) Put(ctx context.Context, orderID string, billID uuid.UUID, ttl time.Duration) error {
	return s.rdb.Set(ctx, pendingKey(orderID), billID.String(), ttl).Err()
}

// Consume atomically reads and deletes the mapping. GETDEL makes the
// consume-before-apply idempotency rule hold even under a racing retry of
// the same confirmation callback.
func (s *redisPendingStore) Consume(ctx context.Context, orderID string) (uuid.UUID, error) {
	val, err := s.rdb.GetDel(ctx, pendingKey(orderID)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrNoPendingOrder
	}
	if err != nil {
		return uuid.Nil, err
	}
	billID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupt pending order mapping for %s: %w", orderID, err)
	}
	return billID, nil
}
