package redisx

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Dedup tracks which events a consumer has already processed.
type Dedup struct {
	Client  redis.Cmdable
	Service string
}

func (d *Dedup) Seen(ctx context.Context, eventID string) (bool, error) {
	return Exists(ctx, d.Client, DedupKey(d.Service, eventID))
}

// Mark records eventID as processed. Called after the side effect commits so
// a failure is retried on redelivery.
func (d *Dedup) Mark(ctx context.Context, eventID string) error {
	return d.Client.Set(ctx, DedupKey(d.Service, eventID), "1", TTLDedup).Err()
}
