package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-menu-pricing/internal/menu"
	"github.com/ariefcatur/go-menu-pricing/internal/pricing"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"
)

type MenuService interface {
	CreateMenu(ctx context.Context, in menu.CreateMenuInput) (*menu.Menu, error)
}

type MenuPricer interface {
	PricedMenu(ctx context.Context, restaurantID string, opts menu.Options) (*menu.Menu, error)
}

// IdempotencyStore keeps the response body of a create request by key.
type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) ([]byte, bool, error)
	Remember(ctx context.Context, key string, body []byte) error
}

type MenusHandler struct {
	Service     MenuService
	Pricer      MenuPricer
	Idempotency IdempotencyStore
}

func (h *MenusHandler) Register(r chi.Router) {
	r.Post("/menus", h.create)
	r.Get("/menus/restaurant/{id}", h.priced)
}

// create stores a menu tree. With an Idempotency-Key header a retried
// request replays the first response instead of creating a new version.
func (h *MenusHandler) create(w http.ResponseWriter, r *http.Request) {
	var in menu.CreateMenuInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid json", errBadRequest))
		return
	}
	if _, err := uuid.Parse(in.RestaurantID); err != nil {
		writeError(w, r, fmt.Errorf("%w: restaurantId must be a uuid", menu.ErrInvalidMenu))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	idemKey := r.Header.Get("Idempotency-Key")
	if idemKey != "" && h.Idempotency != nil {
		body, ok, err := h.Idempotency.Lookup(ctx, idemKey)
		if err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("idempotency lookup")
		} else if ok {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Idempotent-Replayed", "true")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write(body)
			return
		}
	}

	m, err := h.Service.CreateMenu(ctx, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(envelope{Success: true, Key: "MENU_CREATED", Message: "Menu created successfully", Data: m})
	if idemKey != "" && h.Idempotency != nil {
		if err := h.Idempotency.Remember(ctx, idemKey, buf.Bytes()); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("idempotency remember")
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(buf.Bytes())
}

func (h *MenusHandler) priced(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := pricingOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	m, err := h.Pricer.PricedMenu(ctx, id, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "MENU_FETCHED", "Menu fetched successfully", m)
}

func pricingOptions(r *http.Request) (menu.Options, error) {
	var opts menu.Options
	q := r.URL.Query()
	if v := q.Get("available_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("%w: available_only must be a boolean", errBadRequest)
		}
		opts.AvailableOnly = b
	}
	if v := q.Get("at"); v != "" {
		at, err := pricing.ParseTimeOfDay(v)
		if err != nil {
			return opts, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		opts.At = &at
	}
	return opts, nil
}
