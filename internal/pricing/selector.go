package pricing

import "math"

// Quote is the outcome of pricing one base price against a candidate set.
type Quote struct {
	BasePrice    float64 `json:"base_price"`
	Discount     float64 `json:"discount"`
	FinalPrice   float64 `json:"final_price"`
	AppliedOffer *Offer  `json:"applied_offer"`
}

// SelectBestOffer picks the offer with the strictly greatest discount; the
// first one in input order wins a tie. The final price never goes below zero
// but the reported discount is left as computed.
func SelectBestOffer(basePrice float64, offers []Offer) Quote {
	q := Quote{BasePrice: basePrice, FinalPrice: basePrice}

	best := 0.0
	for i := range offers {
		if d := offers[i].Discount(basePrice); d > best {
			best = d
			q.AppliedOffer = &offers[i]
		}
	}
	if q.AppliedOffer == nil {
		return q
	}

	q.Discount = best
	q.FinalPrice = math.Max(basePrice-best, 0)
	return q
}
