package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	kafkax "github.com/ariefcatur/go-menu-pricing/internal/kafka"
	"github.com/ariefcatur/go-menu-pricing/internal/menu"
	"github.com/ariefcatur/go-menu-pricing/internal/offers"
	"github.com/ariefcatur/go-menu-pricing/internal/pricing"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

// AuditRecord is one catalog event as stored in catalog_events.
type AuditRecord struct {
	Envelope
	Topic     string
	Partition int
	Offset    int64
}

type AuditStore interface {
	// Append is a no-op for an event id that is already stored.
	Append(ctx context.Context, rec AuditRecord) error
}

// AuditService records every catalog event once.
type AuditService struct {
	Dedup Deduper
	Store AuditStore
}

// Handle is the consumer handler. Undecodable messages are logged and
// acknowledged; store failures are returned so the offset is not committed.
func (s *AuditService) Handle(ctx context.Context, m kafkago.Message) error {
	logger := zerolog.Ctx(ctx).With().Str("topic", m.Topic).Int64("offset", m.Offset).Logger()

	var env Envelope
	if err := kafkax.UnmarshalEnvelope(m.Value, &env); err != nil {
		logger.Warn().Err(err).Msg("skip undecodable catalog event")
		return nil
	}
	if _, err := uuid.Parse(env.EventID); err != nil {
		logger.Warn().Str("event_id", env.EventID).Msg("skip catalog event without a valid id")
		return nil
	}
	if err := checkPayload(env); err != nil {
		logger.Warn().Err(err).Str("event_id", env.EventID).Msg("skip catalog event with bad payload")
		return nil
	}

	if seen, err := s.Dedup.Seen(ctx, env.EventID); err != nil {
		logger.Warn().Err(err).Msg("dedup lookup failed, relying on store")
	} else if seen {
		return nil
	}

	rec := AuditRecord{Envelope: env, Topic: m.Topic, Partition: m.Partition, Offset: m.Offset}
	if err := s.Store.Append(ctx, rec); err != nil {
		return fmt.Errorf("append event %s: %w", env.EventID, err)
	}
	if err := s.Dedup.Mark(ctx, env.EventID); err != nil {
		logger.Warn().Err(err).Str("event_id", env.EventID).Msg("dedup mark failed")
	}
	logger.Debug().Str("event_id", env.EventID).Str("event_type", env.EventType).Msg("catalog event recorded")
	return nil
}

// checkPayload decodes known payloads into their types. Unknown event types
// are stored as they are.
func checkPayload(env Envelope) error {
	if len(env.Payload) == 0 || !json.Valid(env.Payload) {
		return fmt.Errorf("payload is not JSON")
	}
	var err error
	switch env.EventType {
	case menu.EventRestaurantCreated:
		_, err = kafkax.UnwrapPayload[menu.RestaurantCreatedPayload](env.Payload)
	case menu.EventMenuCreated:
		_, err = kafkax.UnwrapPayload[menu.MenuCreatedPayload](env.Payload)
	case offers.EventOfferCreated:
		_, err = kafkax.UnwrapPayload[pricing.Offer](env.Payload)
	}
	return err
}
