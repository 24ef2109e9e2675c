package menu

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-menu-pricing/internal/metrics"
	"github.com/ariefcatur/go-menu-pricing/internal/pricing"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Store is the read side of menu persistence.
type Store interface {
	// GetRestaurant returns ErrRestaurantNotFound when id is unknown.
	GetRestaurant(ctx context.Context, id string) (*Restaurant, error)
	// GetMenuTree returns the latest menu of a restaurant, or ErrMenuNotFound.
	// A non-nil availableAt keeps only items whose window contains it.
	GetMenuTree(ctx context.Context, restaurantID string, availableAt *pricing.TimeOfDay) (*Menu, error)
}

// OfferSource returns the offers of an item or category whose window
// contains now, in a stable order.
type OfferSource interface {
	ActiveForItem(ctx context.Context, itemID string, now pricing.TimeOfDay) ([]pricing.Offer, error)
	ActiveForCategory(ctx context.Context, categoryID string, now pricing.TimeOfDay) ([]pricing.Offer, error)
}

type Options struct {
	// AvailableOnly drops items that cannot be ordered right now.
	AvailableOnly bool
	// At replaces the restaurant's current local time.
	At *pricing.TimeOfDay
}

const defaultFanOut = 8

// Pricer builds priced menus. It holds no per-request state and is safe for
// concurrent use.
type Pricer struct {
	Store   Store
	Offers  OfferSource
	Clock   Clock
	FanOut  int
	Metrics *metrics.Pricing
	Tracer  trace.Tracer
}

func (p *Pricer) PricedMenu(ctx context.Context, restaurantID string, opts Options) (*Menu, error) {
	start := time.Now()
	ctx, span := p.tracer().Start(ctx, "menu.PricedMenu")
	defer span.End()
	span.SetAttributes(
		attribute.String("restaurant.id", restaurantID),
		attribute.Bool("menu.available_only", opts.AvailableOnly),
	)

	m, err := p.priceMenu(ctx, restaurantID, opts)
	p.Metrics.ObserveRequest(outcome(err), time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return m, nil
}

func (p *Pricer) priceMenu(ctx context.Context, restaurantID string, opts Options) (*Menu, error) {
	r, err := p.Store.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrRestaurantNotFound
	}

	var now pricing.TimeOfDay
	if opts.At != nil {
		now = *opts.At
	} else if now, err = LocalTimeOfDay(p.clock(), r.Timezone); err != nil {
		return nil, fmt.Errorf("resolve local time for restaurant %s: %w", r.ID, err)
	}

	var filter *pricing.TimeOfDay
	if opts.AvailableOnly {
		filter = &now
	}
	m, err := p.Store.GetMenuTree(ctx, restaurantID, filter)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMenuNotFound
	}

	for ci := range m.Categories {
		items := m.Categories[ci].Items
		for ii := range items {
			items[ii].AvailableNow = pricing.IsAvailableNow(items[ii].Window, now)
		}
	}

	offers, err := p.fetchOffers(ctx, m, now)
	if err != nil {
		return nil, err
	}

	for ci := range m.Categories {
		c := &m.Categories[ci]
		for ii := range c.Items {
			p.stamp(&c.Items[ii], offers.item[ci][ii], offers.category[ci])
		}
		if opts.AvailableOnly {
			c.Items = availableItems(c.Items)
		}
	}
	m.AsOf = &now

	zerolog.Ctx(ctx).Debug().
		Str("restaurant_id", restaurantID).
		Stringer("local_time", now).
		Int("categories", len(m.Categories)).
		Msg("menu priced")
	return m, nil
}

type menuOffers struct {
	category [][]pricing.Offer
	item     [][][]pricing.Offer
}

// fetchOffers looks up category and item offers concurrently. Each lookup
// writes only to its own slot. Unavailable items, and categories without an
// available item, are skipped.
func (p *Pricer) fetchOffers(ctx context.Context, m *Menu, now pricing.TimeOfDay) (menuOffers, error) {
	out := menuOffers{
		category: make([][]pricing.Offer, len(m.Categories)),
		item:     make([][][]pricing.Offer, len(m.Categories)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.fanOut())

	for ci := range m.Categories {
		c := &m.Categories[ci]
		out.item[ci] = make([][]pricing.Offer, len(c.Items))

		anyAvailable := false
		for ii := range c.Items {
			it := &c.Items[ii]
			if !it.AvailableNow {
				continue
			}
			anyAvailable = true
			g.Go(func() error {
				offers, err := p.Offers.ActiveForItem(gctx, it.ID, now)
				if err != nil {
					return fmt.Errorf("active offers for item %s: %w", it.ID, err)
				}
				out.item[ci][ii] = offers
				return nil
			})
		}

		if anyAvailable {
			g.Go(func() error {
				offers, err := p.Offers.ActiveForCategory(gctx, c.ID, now)
				if err != nil {
					return fmt.Errorf("active offers for category %s: %w", c.ID, err)
				}
				out.category[ci] = offers
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return menuOffers{}, err
	}
	return out, nil
}

func (p *Pricer) stamp(it *Item, itemOffers, categoryOffers []pricing.Offer) {
	for pi := range it.Prices {
		price := &it.Prices[pi]
		if !it.AvailableNow {
			price.apply(pricing.SelectBestOffer(price.BasePrice, nil))
			continue
		}
		q, scope := pricing.Price(price.BasePrice, itemOffers, categoryOffers)
		price.apply(q)
		if q.AppliedOffer == nil {
			scope = pricing.ScopeNone
		}
		p.Metrics.OfferApplied(string(scope))
	}
}

func availableItems(items []Item) []Item {
	out := items[:0]
	for _, it := range items {
		if it.AvailableNow {
			out = append(out, it)
		}
	}
	return out
}

func (p *Pricer) clock() Clock {
	if p.Clock == nil {
		return SystemClock{}
	}
	return p.Clock
}

func (p *Pricer) fanOut() int {
	if p.FanOut <= 0 {
		return defaultFanOut
	}
	return p.FanOut
}

func (p *Pricer) tracer() trace.Tracer {
	if p.Tracer == nil {
		return otel.Tracer("menu")
	}
	return p.Tracer
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrRestaurantNotFound), errors.Is(err, ErrMenuNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "error"
}
