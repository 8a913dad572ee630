package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gradlink/accounts-service/internal/ports"
)

const (
	activationQueueKey = "accounts:activation:queue"
	activationItemsKey = "accounts:activation:items"
)

// RedisActivationQueue parks failed subscription activations for retry. A
// sorted set orders items by enqueue time; the payload lives in a hash keyed
// by payment id so requeueing with a bumped attempt count is a field update,
// not a new queue entry.
type RedisActivationQueue struct {
	client *redis.Client
}

func NewRedisActivationQueue(client *redis.Client) *RedisActivationQueue {
	return &RedisActivationQueue{client: client}
}

func (q *RedisActivationQueue) Enqueue(ctx context.Context, item ports.QueuedActivation) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode queued activation: %w", err)
	}
	_, err = q.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, activationItemsKey, item.PaymentID, raw)
		p.ZAddNX(ctx, activationQueueKey, redis.Z{
			Score:  float64(item.QueuedAt.UnixMilli()),
			Member: item.PaymentID,
		})
		return nil
	})
	return err
}

func (q *RedisActivationQueue) PeekOldest(ctx context.Context) (*ports.QueuedActivation, error) {
	members, err := q.client.ZRange(ctx, activationQueueKey, 0, 0).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}
	paymentID := members[0]

	raw, err := q.client.HGet(ctx, activationItemsKey, paymentID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Orphaned index entry; drop it and report an empty queue.
			_ = q.client.ZRem(ctx, activationQueueKey, paymentID).Err()
			return nil, nil
		}
		return nil, err
	}

	var item ports.QueuedActivation
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return nil, fmt.Errorf("decode queued activation: %w", err)
	}
	return &item, nil
}

func (q *RedisActivationQueue) Requeue(ctx context.Context, item ports.QueuedActivation) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode queued activation: %w", err)
	}
	_, err = q.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, activationItemsKey, item.PaymentID, raw)
		// Push the item behind newer entries so one failing activation
		// cannot starve the rest of the queue.
		p.ZAdd(ctx, activationQueueKey, redis.Z{
			Score:  float64(time.Now().UTC().UnixMilli()),
			Member: item.PaymentID,
		})
		return nil
	})
	return err
}

func (q *RedisActivationQueue) Discard(ctx context.Context, item ports.QueuedActivation) error {
	_, err := q.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZRem(ctx, activationQueueKey, item.PaymentID)
		p.HDel(ctx, activationItemsKey, item.PaymentID)
		return nil
	})
	return err
}
