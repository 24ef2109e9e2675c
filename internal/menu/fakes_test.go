package menu

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ariefcatur/go-menu-pricing/internal/pricing"
)

type fakeStore struct {
	restaurants map[string]*Restaurant
	menus       map[string]*Menu
	err         error

	mu        sync.Mutex
	treeCalls int
	lastAt    *pricing.TimeOfDay
}

func (s *fakeStore) GetRestaurant(ctx context.Context, id string) (*Restaurant, error) {
	if s.err != nil {
		return nil, s.err
	}
	r, ok := s.restaurants[id]
	if !ok {
		return nil, ErrRestaurantNotFound
	}
	return r, nil
}

// GetMenuTree hands out a deep copy so repeated pricing starts from the
// stored data.
func (s *fakeStore) GetMenuTree(ctx context.Context, restaurantID string, availableAt *pricing.TimeOfDay) (*Menu, error) {
	s.mu.Lock()
	s.treeCalls++
	s.lastAt = availableAt
	s.mu.Unlock()

	m, ok := s.menus[restaurantID]
	if !ok {
		return nil, ErrMenuNotFound
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var cp Menu
	if err := json.Unmarshal(b, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

type fakeOffers struct {
	item     map[string][]pricing.Offer
	category map[string][]pricing.Offer
	err      error

	mu            sync.Mutex
	itemCalls     []string
	categoryCalls []string
	nowSeen       map[pricing.TimeOfDay]bool
}

func (o *fakeOffers) record(calls *[]string, id string, now pricing.TimeOfDay) {
	o.mu.Lock()
	defer o.mu.Unlock()
	*calls = append(*calls, id)
	if o.nowSeen == nil {
		o.nowSeen = map[pricing.TimeOfDay]bool{}
	}
	o.nowSeen[now] = true
}

func (o *fakeOffers) ActiveForItem(ctx context.Context, itemID string, now pricing.TimeOfDay) ([]pricing.Offer, error) {
	o.record(&o.itemCalls, itemID, now)
	if o.err != nil {
		return nil, o.err
	}
	return activeOnly(o.item[itemID], now), nil
}

func (o *fakeOffers) ActiveForCategory(ctx context.Context, categoryID string, now pricing.TimeOfDay) ([]pricing.Offer, error) {
	o.record(&o.categoryCalls, categoryID, now)
	if o.err != nil {
		return nil, o.err
	}
	return activeOnly(o.category[categoryID], now), nil
}

func (o *fakeOffers) calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.itemCalls) + len(o.categoryCalls)
}

func activeOnly(offers []pricing.Offer, now pricing.TimeOfDay) []pricing.Offer {
	var out []pricing.Offer
	for _, o := range offers {
		if o.ActiveAt(now) {
			out = append(out, o)
		}
	}
	return out
}

type fakeWriter struct {
	restaurant *Restaurant
	menu       *Menu
	err        error
	gotMenu    CreateMenuInput
	gotRest    CreateRestaurantInput
}

func (w *fakeWriter) CreateRestaurant(ctx context.Context, in CreateRestaurantInput) (*Restaurant, error) {
	w.gotRest = in
	if w.err != nil {
		return nil, w.err
	}
	return w.restaurant, nil
}

func (w *fakeWriter) CreateMenu(ctx context.Context, in CreateMenuInput) (*Menu, error) {
	w.gotMenu = in
	if w.err != nil {
		return nil, w.err
	}
	return w.menu, nil
}

type emitted struct {
	eventType     string
	correlationID string
	payload       any
}

type fakeEvents struct {
	events []emitted
	err    error
}

func (e *fakeEvents) Emit(ctx context.Context, eventType, correlationID string, payload any) error {
	e.events = append(e.events, emitted{eventType, correlationID, payload})
	return e.err
}
