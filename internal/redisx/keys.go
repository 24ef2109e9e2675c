package redisx

import (
	"fmt"
	"time"
)

const (
	// idem:menu:create:{Idempotency-Key} -> created menu JSON
	KeyIdemMenuCreate = "idem:menu:create:%s"

	// dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)

func IdemMenuCreateKey(key string) string { return fmt.Sprintf(KeyIdemMenuCreate, key) }

func DedupKey(service, eventID string) string { return fmt.Sprintf(KeyDedup, service, eventID) }
