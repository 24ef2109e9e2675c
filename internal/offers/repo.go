package offers

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-menu-pricing/internal/postgres"
	"github.com/ariefcatur/go-menu-pricing/internal/pricing"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the Postgres offer store. It satisfies menu.OfferSource.
type Repo struct{ DB *pgxpool.Pool }

var offerColumns = `id::text, item_id::text, category_id::text, type, amount, max_discount, ` +
	postgres.TimeText("available_from") + `, ` + postgres.TimeText("available_to")

func (r *Repo) Create(ctx context.Context, o pricing.Offer) (*pricing.Offer, error) {
	row := r.DB.QueryRow(ctx, `
		INSERT INTO offers(item_id, category_id, type, amount, max_discount, available_from, available_to)
		VALUES ($1::text::uuid, $2::text::uuid, $3, $4, $5, $6::text::time, $7::text::time)
		RETURNING `+offerColumns,
		o.ItemID, o.CategoryID, string(o.Type), o.Amount, o.MaxDiscount,
		postgres.TimeParam(o.From), postgres.TimeParam(o.To),
	)
	created, err := scanOffer(row)
	if err != nil {
		return nil, mapTargetErr(err)
	}
	return &created, nil
}

func (r *Repo) ActiveForItem(ctx context.Context, itemID string, now pricing.TimeOfDay) ([]pricing.Offer, error) {
	return r.active(ctx, "item_id", itemID, now)
}

func (r *Repo) ActiveForCategory(ctx context.Context, categoryID string, now pricing.TimeOfDay) ([]pricing.Offer, error) {
	return r.active(ctx, "category_id", categoryID, now)
}

// active returns the offers of one target whose window contains now, oldest
// first. The order is what the selector uses to break ties.
func (r *Repo) active(ctx context.Context, targetCol, targetID string, now pricing.TimeOfDay) ([]pricing.Offer, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+offerColumns+`
		FROM offers
		WHERE `+targetCol+` = $1::text::uuid
		  AND `+postgres.WindowPredicate("available_from", "available_to", "$2::text::time")+`
		ORDER BY created_at, id
	`, targetID, now.String())
	if err != nil {
		return nil, mapTargetErr(err)
	}
	defer rows.Close()

	out := []pricing.Offer{}
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// TimezoneForItem returns the timezone of the restaurant owning an item.
func (r *Repo) TimezoneForItem(ctx context.Context, itemID string) (string, error) {
	return r.timezone(ctx, `
		SELECT r.timezone FROM items i
		JOIN categories c ON c.id = i.category_id
		JOIN menus m ON m.id = c.menu_id
		JOIN restaurants r ON r.id = m.restaurant_id
		WHERE i.id = $1::text::uuid`, itemID)
}

// TimezoneForCategory returns the timezone of the restaurant owning a category.
func (r *Repo) TimezoneForCategory(ctx context.Context, categoryID string) (string, error) {
	return r.timezone(ctx, `
		SELECT r.timezone FROM categories c
		JOIN menus m ON m.id = c.menu_id
		JOIN restaurants r ON r.id = m.restaurant_id
		WHERE c.id = $1::text::uuid`, categoryID)
}

func (r *Repo) timezone(ctx context.Context, q, id string) (string, error) {
	var tz string
	err := r.DB.QueryRow(ctx, q, id).Scan(&tz)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrTargetNotFound
	}
	if err != nil {
		return "", mapTargetErr(err)
	}
	return tz, nil
}

func scanOffer(row pgx.Row) (pricing.Offer, error) {
	var (
		o        pricing.Offer
		typ      string
		from, to *string
	)
	if err := row.Scan(&o.ID, &o.ItemID, &o.CategoryID, &typ, &o.Amount, &o.MaxDiscount, &from, &to); err != nil {
		return pricing.Offer{}, err
	}
	o.Type = pricing.OfferType(typ)
	w, err := pricing.NewWindow(deref(from), deref(to))
	if err != nil {
		return pricing.Offer{}, err
	}
	o.Window = w
	return o, nil
}

// mapTargetErr turns a dangling or malformed target id into ErrTargetNotFound.
func mapTargetErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503", "22P02": // foreign_key_violation, invalid_text_representation
			return ErrTargetNotFound
		}
	}
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
