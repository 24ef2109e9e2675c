package catalog

import (
	"encoding/json"
	"time"

	"github.com/ariefcatur/go-menu-pricing/internal/menu"
	"github.com/ariefcatur/go-menu-pricing/internal/offers"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

const (
	TopicRestaurantCreated = "catalog.restaurant.created"
	TopicMenuCreated       = "catalog.menu.created"
	TopicOfferCreated      = "catalog.offer.created"
)

var topics = map[string]string{
	menu.EventRestaurantCreated: TopicRestaurantCreated,
	menu.EventMenuCreated:       TopicMenuCreated,
	offers.EventOfferCreated:    TopicOfferCreated,
}

// Topics lists every catalog topic, for consumers subscribing to all of them.
func Topics() []string {
	return []string{TopicRestaurantCreated, TopicMenuCreated, TopicOfferCreated}
}

// PartitionKey keeps every event of one restaurant, item or category ordered.
func PartitionKey(correlationID string) []byte { return []byte(correlationID) }
