package pricing

// Scope tells which pool of offers supplied the candidates for an item.
type Scope string

const (
	ScopeNone     Scope = "none"
	ScopeItem     Scope = "item"
	ScopeCategory Scope = "category"
)

// ResolveCandidates returns the item's own offers when it has any, otherwise
// the category's. The two pools are never merged.
func ResolveCandidates(itemOffers, categoryOffers []Offer) ([]Offer, Scope) {
	if len(itemOffers) > 0 {
		return itemOffers, ScopeItem
	}
	if len(categoryOffers) > 0 {
		return categoryOffers, ScopeCategory
	}
	return nil, ScopeNone
}

// Price runs resolution and selection for one base price.
func Price(basePrice float64, itemOffers, categoryOffers []Offer) (Quote, Scope) {
	candidates, scope := ResolveCandidates(itemOffers, categoryOffers)
	return SelectBestOffer(basePrice, candidates), scope
}
