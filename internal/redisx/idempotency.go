package redisx

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Idempotency remembers the response of a create request under the client's
// Idempotency-Key so a retry gets the same body back.
type Idempotency struct {
	Client redis.Cmdable
}

func (i *Idempotency) Lookup(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := i.Client.Get(ctx, IdemMenuCreateKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (i *Idempotency) Remember(ctx context.Context, key string, body []byte) error {
	return i.Client.Set(ctx, IdemMenuCreateKey(key), body, TTLIdempotency).Err()
}
