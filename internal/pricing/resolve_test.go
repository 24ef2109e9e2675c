package pricing

import "testing"

func categoryFlat(id string, amount float64) Offer {
	return Offer{ID: id, CategoryID: strp("cat-1"), Type: OfferFlat, Amount: amount}
}

func TestResolveCandidatesItemOverridesCategory(t *testing.T) {
	item := []Offer{percent("item-p20", 20, nil)}
	category := []Offer{categoryFlat("cat-f50", 50)}

	got, scope := ResolveCandidates(item, category)
	if scope != ScopeItem || len(got) != 1 || got[0].ID != "item-p20" {
		t.Fatalf("got %v %v", got, scope)
	}

	q, _ := Price(100, item, category)
	if q.AppliedOffer.ID != "item-p20" || q.Discount != 20 || q.FinalPrice != 80 {
		t.Fatalf("item offer must win even with smaller discount, got %+v", q)
	}
}

func TestResolveCandidatesFallsBackToCategory(t *testing.T) {
	category := []Offer{categoryFlat("cat-f30", 30)}

	got, scope := ResolveCandidates(nil, category)
	if scope != ScopeCategory || len(got) != 1 {
		t.Fatalf("got %v %v", got, scope)
	}

	q, _ := Price(100, []Offer{}, category)
	if q.AppliedOffer.ID != "cat-f30" || q.FinalPrice != 70 {
		t.Fatalf("got %+v", q)
	}
}

func TestResolveCandidatesNoOffers(t *testing.T) {
	got, scope := ResolveCandidates(nil, nil)
	if got != nil || scope != ScopeNone {
		t.Fatalf("got %v %v", got, scope)
	}
}

func TestResolveCandidatesDoesNotMerge(t *testing.T) {
	// a malformed item offer still blocks the category pool
	item := []Offer{flat("broken", 0)}
	category := []Offer{categoryFlat("cat-f30", 30)}

	q, scope := Price(100, item, category)
	if scope != ScopeItem || q.AppliedOffer != nil || q.FinalPrice != 100 {
		t.Fatalf("got %+v %v", q, scope)
	}
}
