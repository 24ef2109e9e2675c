package menu

import (
	"time"

	"github.com/ariefcatur/go-menu-pricing/internal/pricing"
)

type OrderType string

const (
	OrderDineIn   OrderType = "DINE_IN"
	OrderTakeaway OrderType = "TAKEAWAY"
	OrderDelivery OrderType = "DELIVERY"
)

func (t OrderType) Valid() bool {
	switch t {
	case OrderDineIn, OrderTakeaway, OrderDelivery:
		return true
	}
	return false
}

type Restaurant struct {
	ID        string    `json:"restaurant_id"`
	Name      string    `json:"name"`
	Franchise *string   `json:"franchise"`
	Location  string    `json:"location"`
	Available bool      `json:"available"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Menu is the category -> item -> price tree of one restaurant. AsOf is set
// when the tree has been priced and holds the local time used.
type Menu struct {
	ID           string             `json:"menu_id"`
	RestaurantID string             `json:"restaurant_id"`
	Version      int                `json:"version"`
	AsOf         *pricing.TimeOfDay `json:"as_of,omitempty"`
	Categories   []Category         `json:"categories"`
}

type Category struct {
	ID        string  `json:"category_id"`
	MenuID    string  `json:"menu_id"`
	Name      string  `json:"name"`
	AvgPrice  float64 `json:"avg_price"`
	ItemCount int     `json:"item_count"`
	Items     []Item  `json:"items"`
}

type Item struct {
	ID         string  `json:"item_id"`
	CategoryID string  `json:"category_id"`
	Name       *string `json:"name,omitempty"`
	pricing.Window
	AvailableNow bool        `json:"is_available_now"`
	Prices       []ItemPrice `json:"prices"`
	AddOn        *AddOn      `json:"addon,omitempty"`
}

// ItemPrice holds the stored base price for one order type. Discount,
// FinalPrice and AppliedOffer are filled in on every read and never stored.
type ItemPrice struct {
	OrderType    OrderType      `json:"order_type"`
	BasePrice    float64        `json:"base_price"`
	Discount     float64        `json:"discount"`
	FinalPrice   float64        `json:"final_price"`
	AppliedOffer *pricing.Offer `json:"applied_offer"`
}

func (p *ItemPrice) apply(q pricing.Quote) {
	p.Discount = q.Discount
	p.FinalPrice = q.FinalPrice
	p.AppliedOffer = q.AppliedOffer
}

type AddOn struct {
	MinQuantity int  `json:"min_quantity"`
	MaxQuantity int  `json:"max_quantity"`
	Required    bool `json:"required"`
}
