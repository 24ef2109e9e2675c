package menu

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/ariefcatur/go-menu-pricing/internal/metrics"
	"github.com/ariefcatur/go-menu-pricing/internal/pricing"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	restID    = "11111111-1111-1111-1111-111111111111"
	mainsID   = "cat-mains"
	curryID   = "item-curry"
	lassiID   = "item-lassi"
	dessertID = "cat-dessert"
	kulfiID   = "item-kulfi"
)

func strp(s string) *string     { return &s }
func floatp(f float64) *float64 { return &f }

func tod(s string) pricing.TimeOfDay { return pricing.MustParseTimeOfDay(s) }

// 08:30 UTC is 14:00 in Asia/Kolkata.
var kolkataTwoPM = ClockFunc(func() time.Time { return time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC) })

func fixture() (*fakeStore, *fakeOffers) {
	store := &fakeStore{
		restaurants: map[string]*Restaurant{
			restID: {ID: restID, Name: "Spice Route", Location: "Kolkata", Available: true, Timezone: "Asia/Kolkata"},
		},
		menus: map[string]*Menu{
			restID: {
				ID: "menu-1", RestaurantID: restID, Version: 1,
				Categories: []Category{
					{
						ID: mainsID, Name: "Mains", ItemCount: 2,
						Items: []Item{
							{
								ID: curryID, CategoryID: mainsID, Name: strp("Curry"),
								Window: pricing.Between(tod("10:00:00"), tod("18:00:00")),
								Prices: []ItemPrice{
									{OrderType: OrderDineIn, BasePrice: 100},
									{OrderType: OrderTakeaway, BasePrice: 90},
								},
							},
							{
								ID: lassiID, CategoryID: mainsID, Name: strp("Lassi"),
								Prices: []ItemPrice{{OrderType: OrderDineIn, BasePrice: 40}},
							},
						},
					},
					{
						ID: dessertID, Name: "Dessert", ItemCount: 1,
						Items: []Item{
							{
								ID: kulfiID, CategoryID: dessertID, Name: strp("Kulfi"),
								Window: pricing.Between(tod("20:00:00"), tod("02:00:00")),
								Prices: []ItemPrice{{OrderType: OrderDineIn, BasePrice: 60}},
							},
						},
					},
				},
			},
		},
	}
	offers := &fakeOffers{
		category: map[string][]pricing.Offer{
			mainsID:   {{ID: "c1", CategoryID: strp(mainsID), Type: pricing.OfferFlat, Amount: 30}},
			dessertID: {{ID: "c2", CategoryID: strp(dessertID), Type: pricing.OfferFlat, Amount: 10}},
		},
		item: map[string][]pricing.Offer{},
	}
	return store, offers
}

func findItem(t *testing.T, m *Menu, id string) Item {
	t.Helper()
	for _, c := range m.Categories {
		for _, it := range c.Items {
			if it.ID == id {
				return it
			}
		}
	}
	t.Fatalf("item %s not in menu", id)
	return Item{}
}

func TestPricedMenu_CategoryOfferFallback(t *testing.T) {
	store, offers := fixture()
	p := &Pricer{Store: store, Offers: offers, Clock: kolkataTwoPM}

	m, err := p.PricedMenu(context.Background(), restID, Options{})
	if err != nil {
		t.Fatalf("PricedMenu: %v", err)
	}
	if m.AsOf == nil || *m.AsOf != tod("14:00:00") {
		t.Fatalf("as_of = %v, want 14:00:00", m.AsOf)
	}

	curry := findItem(t, m, curryID)
	if !curry.AvailableNow {
		t.Fatal("curry should be available at 14:00")
	}
	dine := curry.Prices[0]
	if dine.Discount != 30 || dine.FinalPrice != 70 {
		t.Fatalf("dine-in = %+v, want discount 30 final 70", dine)
	}
	if dine.AppliedOffer == nil || dine.AppliedOffer.ID != "c1" {
		t.Fatalf("applied offer = %+v, want c1", dine.AppliedOffer)
	}
	if tk := curry.Prices[1]; tk.Discount != 30 || tk.FinalPrice != 60 {
		t.Fatalf("takeaway = %+v, want discount 30 final 60", tk)
	}
}

func TestPricedMenu_ItemOfferOverridesCategory(t *testing.T) {
	store, offers := fixture()
	offers.item[curryID] = []pricing.Offer{
		{ID: "i1", ItemID: strp(curryID), Type: pricing.OfferPercent, Amount: 20, MaxDiscount: floatp(100)},
	}
	p := &Pricer{Store: store, Offers: offers, Clock: kolkataTwoPM}

	m, err := p.PricedMenu(context.Background(), restID, Options{})
	if err != nil {
		t.Fatalf("PricedMenu: %v", err)
	}
	dine := findItem(t, m, curryID).Prices[0]
	if dine.Discount != 20 || dine.FinalPrice != 80 {
		t.Fatalf("dine-in = %+v, want discount 20 final 80", dine)
	}
	if dine.AppliedOffer == nil || dine.AppliedOffer.ID != "i1" {
		t.Fatalf("applied offer = %+v, want i1", dine.AppliedOffer)
	}

	// the lassi has no item offer and still falls back to the category
	lassi := findItem(t, m, lassiID).Prices[0]
	if lassi.Discount != 30 || lassi.FinalPrice != 10 {
		t.Fatalf("lassi = %+v, want discount 30 final 10", lassi)
	}
}

func TestPricedMenu_UnavailableItemIsFlaggedAndUndiscounted(t *testing.T) {
	store, offers := fixture()
	p := &Pricer{Store: store, Offers: offers, Clock: kolkataTwoPM}

	m, err := p.PricedMenu(context.Background(), restID, Options{})
	if err != nil {
		t.Fatalf("PricedMenu: %v", err)
	}
	kulfi := findItem(t, m, kulfiID)
	if kulfi.AvailableNow {
		t.Fatal("kulfi window 20:00-02:00 should be closed at 14:00")
	}
	pr := kulfi.Prices[0]
	if pr.Discount != 0 || pr.FinalPrice != 60 || pr.AppliedOffer != nil {
		t.Fatalf("kulfi price = %+v, want undiscounted", pr)
	}
	for _, id := range offers.itemCalls {
		if id == kulfiID {
			t.Fatal("offers looked up for unavailable item")
		}
	}
	for _, id := range offers.categoryCalls {
		if id == dessertID {
			t.Fatal("offers looked up for category without available items")
		}
	}
}

func TestPricedMenu_AvailableOnly(t *testing.T) {
	store, offers := fixture()
	p := &Pricer{Store: store, Offers: offers, Clock: kolkataTwoPM}

	m, err := p.PricedMenu(context.Background(), restID, Options{AvailableOnly: true})
	if err != nil {
		t.Fatalf("PricedMenu: %v", err)
	}
	if store.lastAt == nil || *store.lastAt != tod("14:00:00") {
		t.Fatalf("store filter = %v, want 14:00:00", store.lastAt)
	}
	if got := len(m.Categories[1].Items); got != 0 {
		t.Fatalf("dessert items = %d, want 0", got)
	}
	if got := len(m.Categories[0].Items); got != 2 {
		t.Fatalf("mains items = %d, want 2", got)
	}
}

func TestPricedMenu_AtOverridesClock(t *testing.T) {
	store, offers := fixture()
	at := tod("23:30:00")
	p := &Pricer{Store: store, Offers: offers, Clock: kolkataTwoPM}

	m, err := p.PricedMenu(context.Background(), restID, Options{At: &at})
	if err != nil {
		t.Fatalf("PricedMenu: %v", err)
	}
	if findItem(t, m, curryID).AvailableNow {
		t.Fatal("curry should be closed at 23:30")
	}
	kulfi := findItem(t, m, kulfiID)
	if !kulfi.AvailableNow {
		t.Fatal("kulfi should be open at 23:30")
	}
	if pr := kulfi.Prices[0]; pr.Discount != 10 || pr.FinalPrice != 50 {
		t.Fatalf("kulfi price = %+v, want discount 10 final 50", pr)
	}
}

func TestPricedMenu_SingleNowPerRequest(t *testing.T) {
	store, offers := fixture()
	calls := 0
	clock := ClockFunc(func() time.Time {
		calls++
		return time.Date(2026, 3, 1, 8, 30, calls, 0, time.UTC)
	})
	p := &Pricer{Store: store, Offers: offers, Clock: clock}

	if _, err := p.PricedMenu(context.Background(), restID, Options{}); err != nil {
		t.Fatalf("PricedMenu: %v", err)
	}
	if calls != 1 {
		t.Fatalf("clock read %d times, want 1", calls)
	}
	if len(offers.nowSeen) != 1 {
		t.Fatalf("offer lookups saw %d distinct times, want 1", len(offers.nowSeen))
	}
}

func TestPricedMenu_Idempotent(t *testing.T) {
	store, offers := fixture()
	offers.item[curryID] = []pricing.Offer{
		{ID: "i1", ItemID: strp(curryID), Type: pricing.OfferPercent, Amount: 20, MaxDiscount: floatp(100)},
	}
	p := &Pricer{Store: store, Offers: offers, Clock: kolkataTwoPM, FanOut: 2}

	first, err := p.PricedMenu(context.Background(), restID, Options{})
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := p.PricedMenu(context.Background(), restID, Options{})
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("output differs between runs:\n%s\n%s", a, b)
	}
}

func TestPricedMenu_RestaurantNotFound(t *testing.T) {
	store, offers := fixture()
	p := &Pricer{Store: store, Offers: offers, Clock: kolkataTwoPM}

	_, err := p.PricedMenu(context.Background(), "missing", Options{})
	if !errors.Is(err, ErrRestaurantNotFound) {
		t.Fatalf("err = %v, want ErrRestaurantNotFound", err)
	}
	if store.treeCalls != 0 || offers.calls() != 0 {
		t.Fatalf("lookups after missing restaurant: tree=%d offers=%d", store.treeCalls, offers.calls())
	}
}

func TestPricedMenu_MenuNotFound(t *testing.T) {
	store, offers := fixture()
	delete(store.menus, restID)
	p := &Pricer{Store: store, Offers: offers, Clock: kolkataTwoPM}

	_, err := p.PricedMenu(context.Background(), restID, Options{})
	if !errors.Is(err, ErrMenuNotFound) {
		t.Fatalf("err = %v, want ErrMenuNotFound", err)
	}
	if offers.calls() != 0 {
		t.Fatalf("offer lookups after missing menu: %d", offers.calls())
	}
}

func TestPricedMenu_OfferLookupErrorPropagates(t *testing.T) {
	store, offers := fixture()
	boom := errors.New("connection reset")
	offers.err = boom
	reg := prometheus.NewRegistry()
	m := metrics.NewPricing(reg)
	p := &Pricer{Store: store, Offers: offers, Clock: kolkataTwoPM, Metrics: m}

	_, err := p.PricedMenu(context.Background(), restID, Options{})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	if got := counter(t, reg, "menu_pricing_requests_total", "error"); got != 1 {
		t.Fatalf("error requests = %v, want 1", got)
	}
}

func TestPricedMenu_StoreErrorPropagates(t *testing.T) {
	store, offers := fixture()
	boom := errors.New("pool closed")
	store.err = boom
	p := &Pricer{Store: store, Offers: offers, Clock: kolkataTwoPM}

	if _, err := p.PricedMenu(context.Background(), restID, Options{}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestPricedMenu_RecordsAppliedScopes(t *testing.T) {
	store, offers := fixture()
	offers.item[curryID] = []pricing.Offer{
		{ID: "i1", ItemID: strp(curryID), Type: pricing.OfferFlat, Amount: 5},
	}
	reg := prometheus.NewRegistry()
	m := metrics.NewPricing(reg)
	p := &Pricer{Store: store, Offers: offers, Clock: kolkataTwoPM, Metrics: m}

	if _, err := p.PricedMenu(context.Background(), restID, Options{}); err != nil {
		t.Fatalf("PricedMenu: %v", err)
	}
	if got := counter(t, reg, "menu_offers_applied_total", "item"); got != 2 {
		t.Fatalf("item scope = %v, want 2", got)
	}
	if got := counter(t, reg, "menu_offers_applied_total", "category"); got != 1 {
		t.Fatalf("category scope = %v, want 1", got)
	}
	if got := counter(t, reg, "menu_pricing_requests_total", "ok"); got != 1 {
		t.Fatalf("ok requests = %v, want 1", got)
	}
}

// counter reads one labelled sample of a counter family from reg.
func counter(t *testing.T, reg *prometheus.Registry, name, label string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetValue() == label {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
