package menu

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func validMenuInput() CreateMenuInput {
	return CreateMenuInput{
		RestaurantID: restID,
		Categories: []CreateCategoryInput{{
			Name:     "Mains",
			AvgPrice: 95,
			Items: []CreateItemInput{{
				Name:   strp("Curry"),
				Time:   &TimeInput{AvailableFrom: "10:00", AvailableTo: "18:00:00"},
				Prices: []CreatePriceInput{{OrderType: OrderDineIn, Price: 100}, {OrderType: OrderTakeaway, Price: 90}},
				AddOns: &AddOn{MinQuantity: 0, MaxQuantity: 2},
			}},
		}},
	}
}

func TestCreateMenuInput_Validate(t *testing.T) {
	in := validMenuInput()
	if err := in.Validate(); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
	if in.Version != 1 {
		t.Fatalf("version = %d, want default 1", in.Version)
	}

	tests := []struct {
		name   string
		mutate func(*CreateMenuInput)
		want   string
	}{
		{"no restaurant", func(in *CreateMenuInput) { in.RestaurantID = "" }, "restaurantId"},
		{"negative version", func(in *CreateMenuInput) { in.Version = -1 }, "version"},
		{"no categories", func(in *CreateMenuInput) { in.Categories = nil }, "category"},
		{"blank category name", func(in *CreateMenuInput) { in.Categories[0].Name = " " }, "name"},
		{"no items", func(in *CreateMenuInput) { in.Categories[0].Items = nil }, "item"},
		{"no prices", func(in *CreateMenuInput) { in.Categories[0].Items[0].Prices = nil }, "price"},
		{"zero price", func(in *CreateMenuInput) { in.Categories[0].Items[0].Prices[0].Price = 0 }, "positive"},
		{"bad order type", func(in *CreateMenuInput) { in.Categories[0].Items[0].Prices[0].OrderType = "DRIVE_THRU" }, "order_type"},
		{"duplicate order type", func(in *CreateMenuInput) { in.Categories[0].Items[0].Prices[1].OrderType = OrderDineIn }, "duplicate"},
		{"half window", func(in *CreateMenuInput) { in.Categories[0].Items[0].Time.AvailableTo = "" }, "both"},
		{"bad time", func(in *CreateMenuInput) { in.Categories[0].Items[0].Time.AvailableFrom = "25:00" }, "categories[0].items[0]"},
		{"addon min over max", func(in *CreateMenuInput) { in.Categories[0].Items[0].AddOns.MinQuantity = 3 }, "addons"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validMenuInput()
			tt.mutate(&in)
			err := in.Validate()
			if !errors.Is(err, ErrInvalidMenu) {
				t.Fatalf("err = %v, want ErrInvalidMenu", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %q, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestCreateRestaurantInput_Validate(t *testing.T) {
	in := CreateRestaurantInput{Name: "Spice Route", Location: "Kolkata"}
	if err := in.Validate(); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
	if in.Timezone != DefaultTimezone {
		t.Fatalf("timezone = %q, want %q", in.Timezone, DefaultTimezone)
	}

	for _, bad := range []CreateRestaurantInput{
		{Location: "Kolkata"},
		{Name: "Spice Route"},
		{Name: "Spice Route", Location: "Kolkata", Timezone: "Nowhere/Land"},
	} {
		if err := bad.Validate(); !errors.Is(err, ErrInvalidRestaurant) {
			t.Errorf("%+v: err = %v, want ErrInvalidRestaurant", bad, err)
		}
	}
}

func TestAdmin_CreateMenuEmitsEvent(t *testing.T) {
	w := &fakeWriter{menu: &Menu{
		ID: "menu-1", RestaurantID: restID, Version: 1,
		Categories: []Category{{ID: "c", Items: []Item{{ID: "a"}, {ID: "b"}}}},
	}}
	ev := &fakeEvents{}
	a := &Admin{Writer: w, Events: ev}

	m, err := a.CreateMenu(context.Background(), validMenuInput())
	if err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}
	if m.ID != "menu-1" || w.gotMenu.Version != 1 {
		t.Fatalf("unexpected result %+v / input %+v", m, w.gotMenu)
	}
	if len(ev.events) != 1 {
		t.Fatalf("events = %d, want 1", len(ev.events))
	}
	e := ev.events[0]
	p, ok := e.payload.(MenuCreatedPayload)
	if e.eventType != EventMenuCreated || e.correlationID != restID || !ok {
		t.Fatalf("unexpected event %+v", e)
	}
	if p.Categories != 1 || p.Items != 2 {
		t.Fatalf("payload = %+v, want 1 category 2 items", p)
	}
}

func TestAdmin_InvalidMenuNeverReachesWriter(t *testing.T) {
	w := &fakeWriter{}
	ev := &fakeEvents{}
	a := &Admin{Writer: w, Events: ev}

	in := validMenuInput()
	in.Categories = nil
	if _, err := a.CreateMenu(context.Background(), in); !errors.Is(err, ErrInvalidMenu) {
		t.Fatalf("err = %v, want ErrInvalidMenu", err)
	}
	if w.gotMenu.RestaurantID != "" || len(ev.events) != 0 {
		t.Fatal("writer or events reached for invalid input")
	}
}

func TestAdmin_WriterErrorIsWrapped(t *testing.T) {
	w := &fakeWriter{err: ErrRestaurantNotFound}
	a := &Admin{Writer: w, Events: &fakeEvents{}}

	_, err := a.CreateMenu(context.Background(), validMenuInput())
	if !errors.Is(err, ErrRestaurantNotFound) {
		t.Fatalf("err = %v, want ErrRestaurantNotFound", err)
	}
}

func TestAdmin_EmitFailureDoesNotFailCreate(t *testing.T) {
	w := &fakeWriter{restaurant: &Restaurant{ID: restID, Name: "Spice Route", Timezone: "UTC"}}
	ev := &fakeEvents{err: errors.New("broker down")}
	a := &Admin{Writer: w, Events: ev}

	r, err := a.CreateRestaurant(context.Background(), CreateRestaurantInput{Name: "Spice Route", Location: "Kolkata"})
	if err != nil {
		t.Fatalf("CreateRestaurant: %v", err)
	}
	if r.ID != restID || len(ev.events) != 1 || ev.events[0].eventType != EventRestaurantCreated {
		t.Fatalf("unexpected result %+v events %+v", r, ev.events)
	}
}
