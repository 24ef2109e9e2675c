package offers

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-menu-pricing/internal/menu"
	"github.com/ariefcatur/go-menu-pricing/internal/pricing"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Store interface {
	Create(ctx context.Context, o pricing.Offer) (*pricing.Offer, error)
	ActiveForItem(ctx context.Context, itemID string, now pricing.TimeOfDay) ([]pricing.Offer, error)
	ActiveForCategory(ctx context.Context, categoryID string, now pricing.TimeOfDay) ([]pricing.Offer, error)
	// TimezoneForItem and TimezoneForCategory return ErrTargetNotFound for
	// unknown ids.
	TimezoneForItem(ctx context.Context, itemID string) (string, error)
	TimezoneForCategory(ctx context.Context, categoryID string) (string, error)
}

const EventOfferCreated = "OfferCreated"

// Active is a list of offers together with the local time they were
// evaluated at.
type Active struct {
	At     pricing.TimeOfDay `json:"at"`
	Offers []pricing.Offer   `json:"offers"`
}

// QuoteResult is a single price run through resolution and selection.
type QuoteResult struct {
	pricing.Quote
	Scope pricing.Scope     `json:"scope"`
	At    pricing.TimeOfDay `json:"at"`
}

type Service struct {
	Store  Store
	Clock  menu.Clock
	Events menu.Events
	Tracer trace.Tracer
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*pricing.Offer, error) {
	o, err := in.Offer()
	if err != nil {
		return nil, err
	}
	created, err := s.Store.Create(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}
	if s.Events != nil {
		target := created.CategoryID
		if created.ItemID != nil {
			target = created.ItemID
		}
		if err := s.Events.Emit(ctx, EventOfferCreated, *target, created); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("offer_id", created.ID).Msg("emit offer event")
		}
	}
	return created, nil
}

// ActiveForItem returns the item's offers active at the restaurant's current
// local time.
func (s *Service) ActiveForItem(ctx context.Context, itemID string) (*Active, error) {
	ctx, span := s.tracer().Start(ctx, "offers.ActiveForItem", trace.WithAttributes(attribute.String("item.id", itemID)))
	defer span.End()

	now, err := s.now(ctx, itemID, "")
	if err != nil {
		return nil, fail(span, err)
	}
	list, err := s.Store.ActiveForItem(ctx, itemID, now)
	if err != nil {
		return nil, fail(span, fmt.Errorf("active offers for item %s: %w", itemID, err))
	}
	return &Active{At: now, Offers: list}, nil
}

func (s *Service) ActiveForCategory(ctx context.Context, categoryID string) (*Active, error) {
	ctx, span := s.tracer().Start(ctx, "offers.ActiveForCategory", trace.WithAttributes(attribute.String("category.id", categoryID)))
	defer span.End()

	now, err := s.now(ctx, "", categoryID)
	if err != nil {
		return nil, fail(span, err)
	}
	list, err := s.Store.ActiveForCategory(ctx, categoryID, now)
	if err != nil {
		return nil, fail(span, fmt.Errorf("active offers for category %s: %w", categoryID, err))
	}
	return &Active{At: now, Offers: list}, nil
}

// Quote prices basePrice against the offers of an item and/or category, as
// the menu read would. Item offers override category offers.
func (s *Service) Quote(ctx context.Context, basePrice float64, itemID, categoryID string) (*QuoteResult, error) {
	if itemID == "" && categoryID == "" {
		return nil, ErrTargetRequired
	}
	ctx, span := s.tracer().Start(ctx, "offers.Quote")
	defer span.End()

	now, err := s.now(ctx, itemID, categoryID)
	if err != nil {
		return nil, fail(span, err)
	}

	var itemOffers, categoryOffers []pricing.Offer
	if itemID != "" {
		if itemOffers, err = s.Store.ActiveForItem(ctx, itemID, now); err != nil {
			return nil, fail(span, fmt.Errorf("active offers for item %s: %w", itemID, err))
		}
	}
	if categoryID != "" {
		if categoryOffers, err = s.Store.ActiveForCategory(ctx, categoryID, now); err != nil {
			return nil, fail(span, fmt.Errorf("active offers for category %s: %w", categoryID, err))
		}
	}
	q, scope := pricing.Price(basePrice, itemOffers, categoryOffers)
	if q.AppliedOffer == nil {
		scope = pricing.ScopeNone
	}
	return &QuoteResult{Quote: q, Scope: scope, At: now}, nil
}

// now resolves the local time of the restaurant owning the target. The item
// wins when both ids are given.
func (s *Service) now(ctx context.Context, itemID, categoryID string) (pricing.TimeOfDay, error) {
	var (
		tz  string
		err error
	)
	if itemID != "" {
		tz, err = s.Store.TimezoneForItem(ctx, itemID)
	} else {
		tz, err = s.Store.TimezoneForCategory(ctx, categoryID)
	}
	if err != nil {
		return 0, err
	}
	clock := s.Clock
	if clock == nil {
		clock = menu.SystemClock{}
	}
	return menu.LocalTimeOfDay(clock, tz)
}

func (s *Service) tracer() trace.Tracer {
	if s.Tracer == nil {
		return otel.Tracer("offers")
	}
	return s.Tracer
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
