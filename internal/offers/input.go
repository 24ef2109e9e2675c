package offers

import (
	"fmt"
	"math"

	"github.com/ariefcatur/go-menu-pricing/internal/pricing"
)

// CreateInput is the request body of POST /offers.
type CreateInput struct {
	ItemID        *string           `json:"item_id"`
	CategoryID    *string           `json:"category_id"`
	Type          pricing.OfferType `json:"type"`
	Amount        float64           `json:"amount"`
	MaxDiscount   *float64          `json:"max_discount"`
	AvailableFrom string            `json:"available_from"`
	AvailableTo   string            `json:"available_to"`
}

// Offer validates the input and converts it to an engine offer. Only offers
// that pass here are ever stored; the engine still tolerates anything else.
func (in CreateInput) Offer() (pricing.Offer, error) {
	hasItem := in.ItemID != nil && *in.ItemID != ""
	hasCategory := in.CategoryID != nil && *in.CategoryID != ""
	if hasItem == hasCategory {
		return pricing.Offer{}, ErrTargetRequired
	}
	if !in.Type.Valid() {
		return pricing.Offer{}, fmt.Errorf("%w: got %q", ErrInvalidOfferType, in.Type)
	}
	if in.Amount <= 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return pricing.Offer{}, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	if in.Type == pricing.OfferPercent && in.Amount > 100 {
		return pricing.Offer{}, fmt.Errorf("%w: percent amount must not exceed 100", ErrInvalidAmount)
	}
	if in.MaxDiscount != nil && *in.MaxDiscount < 0 {
		return pricing.Offer{}, fmt.Errorf("%w: max_discount must not be negative", ErrInvalidAmount)
	}
	if (in.AvailableFrom == "") != (in.AvailableTo == "") {
		return pricing.Offer{}, fmt.Errorf("%w: both available_from and available_to are required", ErrInvalidWindow)
	}
	w, err := pricing.NewWindow(in.AvailableFrom, in.AvailableTo)
	if err != nil {
		return pricing.Offer{}, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}

	o := pricing.Offer{
		Type:        in.Type,
		Amount:      in.Amount,
		MaxDiscount: in.MaxDiscount,
		Window:      w,
	}
	if hasItem {
		o.ItemID = in.ItemID
	} else {
		o.CategoryID = in.CategoryID
	}
	return o, nil
}
