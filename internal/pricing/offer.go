package pricing

import "math"

type OfferType string

const (
	OfferFlat    OfferType = "FLAT"
	OfferPercent OfferType = "PERCENT"
)

func (t OfferType) Valid() bool {
	return t == OfferFlat || t == OfferPercent
}

// Offer is a discount rule bound to exactly one item or one category.
type Offer struct {
	ID          string    `json:"offer_id"`
	ItemID      *string   `json:"item_id"`
	CategoryID  *string   `json:"category_id"`
	Type        OfferType `json:"type"`
	Amount      float64   `json:"amount"`
	MaxDiscount *float64  `json:"max_discount"`
	Window
}

func (o Offer) ActiveAt(now TimeOfDay) bool { return o.Window.Contains(now) }

// WellFormed mirrors the checks done when an offer is created. Offers failing
// it are still accepted by the selector, they just never discount anything.
func (o Offer) WellFormed() bool {
	if !o.Type.Valid() {
		return false
	}
	if math.IsNaN(o.Amount) || math.IsInf(o.Amount, 0) || o.Amount <= 0 {
		return false
	}
	if o.Type == OfferPercent && o.Amount > 100 {
		return false
	}
	return (o.ItemID == nil) != (o.CategoryID == nil)
}

// Discount is what this offer would take off basePrice. FLAT offers ignore
// MaxDiscount; PERCENT offers honour it when it is positive.
func (o Offer) Discount(basePrice float64) float64 {
	if !o.WellFormed() {
		return 0
	}
	if o.Type == OfferFlat {
		return o.Amount
	}
	d := basePrice * o.Amount / 100
	if o.MaxDiscount != nil && *o.MaxDiscount > 0 {
		d = math.Min(d, *o.MaxDiscount)
	}
	if d < 0 {
		return 0
	}
	return d
}
