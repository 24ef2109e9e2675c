package menu

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ariefcatur/go-menu-pricing/internal/pricing"
	"github.com/rs/zerolog"
)

type CreateRestaurantInput struct {
	Name      string  `json:"name"`
	Franchise *string `json:"franchise"`
	Location  string  `json:"location"`
	Available *bool   `json:"available"`
	Timezone  string  `json:"timezone"`
}

func (in *CreateRestaurantInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRestaurant)
	}
	if strings.TrimSpace(in.Location) == "" {
		return fmt.Errorf("%w: location is required", ErrInvalidRestaurant)
	}
	if in.Timezone == "" {
		in.Timezone = DefaultTimezone
	}
	if _, err := time.LoadLocation(in.Timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidRestaurant, in.Timezone)
	}
	return nil
}

type CreateMenuInput struct {
	RestaurantID string                `json:"restaurantId"`
	Version      int                   `json:"version"`
	Categories   []CreateCategoryInput `json:"categories"`
}

type CreateCategoryInput struct {
	Name     string            `json:"name"`
	AvgPrice float64           `json:"avg_price"`
	Items    []CreateItemInput `json:"items"`
}

type CreateItemInput struct {
	Name   *string            `json:"name"`
	Time   *TimeInput         `json:"time"`
	Prices []CreatePriceInput `json:"prices"`
	AddOns *AddOn             `json:"addons"`
}

type TimeInput struct {
	AvailableFrom string `json:"available_from"`
	AvailableTo   string `json:"available_to"`
}

type CreatePriceInput struct {
	OrderType OrderType `json:"order_type"`
	Price     float64   `json:"price"`
}

// Window parses the optional availability window of an item.
func (in CreateItemInput) Window() (pricing.Window, error) {
	if in.Time == nil {
		return pricing.Window{}, nil
	}
	return pricing.NewWindow(in.Time.AvailableFrom, in.Time.AvailableTo)
}

func (in *CreateMenuInput) Validate() error {
	if in.RestaurantID == "" {
		return fmt.Errorf("%w: restaurantId is required", ErrInvalidMenu)
	}
	if in.Version == 0 {
		in.Version = 1
	}
	if in.Version < 0 {
		return fmt.Errorf("%w: version must be positive", ErrInvalidMenu)
	}
	if len(in.Categories) == 0 {
		return fmt.Errorf("%w: at least one category is required", ErrInvalidMenu)
	}
	for ci, c := range in.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: categories[%d]: name is required", ErrInvalidMenu, ci)
		}
		if c.AvgPrice < 0 {
			return fmt.Errorf("%w: categories[%d]: avg_price must not be negative", ErrInvalidMenu, ci)
		}
		if len(c.Items) == 0 {
			return fmt.Errorf("%w: categories[%d]: at least one item is required", ErrInvalidMenu, ci)
		}
		for ii, it := range c.Items {
			if err := validateItem(it); err != nil {
				return fmt.Errorf("%w: categories[%d].items[%d]: %v", ErrInvalidMenu, ci, ii, err)
			}
		}
	}
	return nil
}

func validateItem(it CreateItemInput) error {
	if it.Time != nil {
		if it.Time.AvailableFrom == "" || it.Time.AvailableTo == "" {
			return fmt.Errorf("time needs both available_from and available_to")
		}
		if _, err := it.Window(); err != nil {
			return err
		}
	}
	if len(it.Prices) == 0 {
		return fmt.Errorf("at least one price is required")
	}
	seen := make(map[OrderType]bool, len(it.Prices))
	for _, p := range it.Prices {
		if !p.OrderType.Valid() {
			return fmt.Errorf("unknown order_type %q", p.OrderType)
		}
		if seen[p.OrderType] {
			return fmt.Errorf("duplicate order_type %q", p.OrderType)
		}
		seen[p.OrderType] = true
		if p.Price <= 0 {
			return fmt.Errorf("price must be positive")
		}
	}
	if a := it.AddOns; a != nil {
		if a.MinQuantity < 0 || a.MaxQuantity < 0 || a.MinQuantity > a.MaxQuantity {
			return fmt.Errorf("addons quantities must satisfy 0 <= min <= max")
		}
	}
	return nil
}

// Writer is the write side of menu persistence.
type Writer interface {
	CreateRestaurant(ctx context.Context, in CreateRestaurantInput) (*Restaurant, error)
	// CreateMenu stores the whole tree atomically. ErrRestaurantNotFound when
	// the restaurant is unknown.
	CreateMenu(ctx context.Context, in CreateMenuInput) (*Menu, error)
}

// Events receives catalog change notifications once they are committed.
type Events interface {
	Emit(ctx context.Context, eventType, correlationID string, payload any) error
}

const (
	EventRestaurantCreated = "RestaurantCreated"
	EventMenuCreated       = "MenuCreated"
)

type RestaurantCreatedPayload struct {
	RestaurantID string `json:"restaurant_id"`
	Name         string `json:"name"`
	Timezone     string `json:"timezone"`
}

type MenuCreatedPayload struct {
	MenuID       string `json:"menu_id"`
	RestaurantID string `json:"restaurant_id"`
	Version      int    `json:"version"`
	Categories   int    `json:"categories"`
	Items        int    `json:"items"`
}

// Admin implements the administrative create/read operations around the
// pricing engine.
type Admin struct {
	Store  Store
	Writer Writer
	Events Events
}

func (a *Admin) CreateRestaurant(ctx context.Context, in CreateRestaurantInput) (*Restaurant, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	r, err := a.Writer.CreateRestaurant(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create restaurant: %w", err)
	}
	a.emit(ctx, EventRestaurantCreated, r.ID, RestaurantCreatedPayload{
		RestaurantID: r.ID, Name: r.Name, Timezone: r.Timezone,
	})
	return r, nil
}

func (a *Admin) GetRestaurant(ctx context.Context, id string) (*Restaurant, error) {
	return a.Store.GetRestaurant(ctx, id)
}

func (a *Admin) CreateMenu(ctx context.Context, in CreateMenuInput) (*Menu, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	m, err := a.Writer.CreateMenu(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create menu: %w", err)
	}

	items := 0
	for _, c := range m.Categories {
		items += len(c.Items)
	}
	a.emit(ctx, EventMenuCreated, m.RestaurantID, MenuCreatedPayload{
		MenuID: m.ID, RestaurantID: m.RestaurantID, Version: m.Version,
		Categories: len(m.Categories), Items: items,
	})
	return m, nil
}

// emit never fails the request: the write is already committed.
func (a *Admin) emit(ctx context.Context, eventType, correlationID string, payload any) {
	if a.Events == nil {
		return
	}
	if err := a.Events.Emit(ctx, eventType, correlationID, payload); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("event_type", eventType).Str("correlation_id", correlationID).Msg("emit catalog event")
	}
}
