package menu

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-menu-pricing/internal/postgres"
	"github.com/ariefcatur/go-menu-pricing/internal/pricing"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the Postgres implementation of Store and Writer.
type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) CreateRestaurant(ctx context.Context, in CreateRestaurantInput) (*Restaurant, error) {
	available := true
	if in.Available != nil {
		available = *in.Available
	}
	res := &Restaurant{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Franchise: in.Franchise,
		Location:  in.Location,
		Available: available,
		Timezone:  in.Timezone,
	}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO restaurants(id, name, franchise, location, available, timezone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, res.ID, res.Name, res.Franchise, res.Location, res.Available, res.Timezone).
		Scan(&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Repo) GetRestaurant(ctx context.Context, id string) (*Restaurant, error) {
	var res Restaurant
	err := r.DB.QueryRow(ctx, `
		SELECT id::text, name, franchise, location, available, timezone, created_at, updated_at
		FROM restaurants WHERE id = $1::text::uuid
	`, id).Scan(&res.ID, &res.Name, &res.Franchise, &res.Location, &res.Available, &res.Timezone, &res.CreatedAt, &res.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRestaurantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// CreateMenu inserts menu, categories, items, prices and add-ons in one
// transaction. Ids are assigned here and returned in the tree.
func (r *Repo) CreateMenu(ctx context.Context, in CreateMenuInput) (*Menu, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM restaurants WHERE id = $1::text::uuid)`, in.RestaurantID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrRestaurantNotFound
	}

	m := &Menu{
		ID:           uuid.NewString(),
		RestaurantID: in.RestaurantID,
		Version:      in.Version,
		Categories:   make([]Category, 0, len(in.Categories)),
	}
	if _, err := tx.Exec(ctx, `INSERT INTO menus(id, restaurant_id, version) VALUES ($1, $2::text::uuid, $3)`,
		m.ID, m.RestaurantID, m.Version); err != nil {
		return nil, err
	}

	for ci, cin := range in.Categories {
		c := Category{
			ID:        uuid.NewString(),
			MenuID:    m.ID,
			Name:      cin.Name,
			AvgPrice:  cin.AvgPrice,
			ItemCount: len(cin.Items),
			Items:     make([]Item, 0, len(cin.Items)),
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO categories(id, menu_id, position, name, avg_price, item_count)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, c.MenuID, ci, c.Name, c.AvgPrice, c.ItemCount,
		); err != nil {
			return nil, err
		}

		for ii, iin := range cin.Items {
			w, err := iin.Window()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidMenu, err)
			}
			it := Item{
				ID:         uuid.NewString(),
				CategoryID: c.ID,
				Name:       iin.Name,
				Window:     w,
				AddOn:      iin.AddOns,
				Prices:     make([]ItemPrice, 0, len(iin.Prices)),
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO items(id, category_id, position, name, available_from, available_to)
				VALUES ($1, $2, $3, $4, $5::text::time, $6::text::time)`,
				it.ID, it.CategoryID, ii, it.Name, postgres.TimeParam(w.From), postgres.TimeParam(w.To),
			); err != nil {
				return nil, err
			}

			for _, pin := range iin.Prices {
				if _, err := tx.Exec(ctx, `
					INSERT INTO item_prices(item_id, order_type, price) VALUES ($1, $2, $3)`,
					it.ID, string(pin.OrderType), pin.Price,
				); err != nil {
					return nil, err
				}
				it.Prices = append(it.Prices, ItemPrice{OrderType: pin.OrderType, BasePrice: pin.Price, FinalPrice: pin.Price})
			}

			if a := it.AddOn; a != nil {
				if _, err := tx.Exec(ctx, `
					INSERT INTO add_ons(item_id, min_quantity, max_quantity, required) VALUES ($1, $2, $3, $4)`,
					it.ID, a.MinQuantity, a.MaxQuantity, a.Required,
				); err != nil {
					return nil, err
				}
			}
			c.Items = append(c.Items, it)
		}
		m.Categories = append(m.Categories, c)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// GetMenuTree loads the highest version menu of a restaurant. Categories and
// items keep their creation order, prices are ordered by order type.
func (r *Repo) GetMenuTree(ctx context.Context, restaurantID string, availableAt *pricing.TimeOfDay) (*Menu, error) {
	m := Menu{RestaurantID: restaurantID}
	err := r.DB.QueryRow(ctx, `
		SELECT id::text, version FROM menus
		WHERE restaurant_id = $1::text::uuid
		ORDER BY version DESC LIMIT 1
	`, restaurantID).Scan(&m.ID, &m.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMenuNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id::text, name, avg_price, item_count
		FROM categories WHERE menu_id = $1 ORDER BY position
	`, m.ID)
	if err != nil {
		return nil, err
	}
	byCategory := map[string]int{}
	for rows.Next() {
		c := Category{MenuID: m.ID, Items: []Item{}}
		if err := rows.Scan(&c.ID, &c.Name, &c.AvgPrice, &c.ItemCount); err != nil {
			rows.Close()
			return nil, err
		}
		byCategory[c.ID] = len(m.Categories)
		m.Categories = append(m.Categories, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.DB.Query(ctx, `
		SELECT i.id::text, i.category_id::text, i.name,
		       `+postgres.TimeText("i.available_from")+`, `+postgres.TimeText("i.available_to")+`,
		       a.min_quantity, a.max_quantity, a.required
		FROM items i
		JOIN categories c ON c.id = i.category_id
		LEFT JOIN add_ons a ON a.item_id = i.id
		WHERE c.menu_id = $1
		  AND ($2::text IS NULL OR `+postgres.WindowPredicate("i.available_from", "i.available_to", "$2::text::time")+`)
		ORDER BY c.position, i.position
	`, m.ID, postgres.TimeParam(availableAt))
	if err != nil {
		return nil, err
	}
	type itemRef struct{ ci, ii int }
	byItem := map[string]itemRef{}
	for rows.Next() {
		var (
			it       Item
			from, to *string
			minQ     *int
			maxQ     *int
			required *bool
		)
		if err := rows.Scan(&it.ID, &it.CategoryID, &it.Name, &from, &to, &minQ, &maxQ, &required); err != nil {
			rows.Close()
			return nil, err
		}
		if it.Window, err = pricing.NewWindow(deref(from), deref(to)); err != nil {
			rows.Close()
			return nil, fmt.Errorf("item %s window: %w", it.ID, err)
		}
		if minQ != nil && maxQ != nil && required != nil {
			it.AddOn = &AddOn{MinQuantity: *minQ, MaxQuantity: *maxQ, Required: *required}
		}
		it.Prices = []ItemPrice{}
		ci := byCategory[it.CategoryID]
		byItem[it.ID] = itemRef{ci: ci, ii: len(m.Categories[ci].Items)}
		m.Categories[ci].Items = append(m.Categories[ci].Items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.DB.Query(ctx, `
		SELECT p.item_id::text, p.order_type, p.price
		FROM item_prices p
		JOIN items i ON i.id = p.item_id
		JOIN categories c ON c.id = i.category_id
		WHERE c.menu_id = $1
		ORDER BY p.item_id, p.order_type
	`, m.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			itemID string
			p      ItemPrice
		)
		if err := rows.Scan(&itemID, &p.OrderType, &p.BasePrice); err != nil {
			return nil, err
		}
		ref, ok := byItem[itemID]
		if !ok {
			continue // filtered out by availability
		}
		p.FinalPrice = p.BasePrice
		item := &m.Categories[ref.ci].Items[ref.ii]
		item.Prices = append(item.Prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &m, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
