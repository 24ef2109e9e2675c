package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-menu-pricing/internal/offers"
	"github.com/ariefcatur/go-menu-pricing/internal/pricing"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type OfferService interface {
	Create(ctx context.Context, in offers.CreateInput) (*pricing.Offer, error)
	ActiveForItem(ctx context.Context, itemID string) (*offers.Active, error)
	ActiveForCategory(ctx context.Context, categoryID string) (*offers.Active, error)
	Quote(ctx context.Context, basePrice float64, itemID, categoryID string) (*offers.QuoteResult, error)
}

type OffersHandler struct {
	Service OfferService
}

func (h *OffersHandler) Register(r chi.Router) {
	r.Post("/offers", h.create)
	r.Get("/offers/item/{id}", h.forItem)
	r.Get("/offers/category/{id}", h.forCategory)
	r.Get("/offers/quote", h.quote)
}

func (h *OffersHandler) create(w http.ResponseWriter, r *http.Request) {
	var in offers.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid json", errBadRequest))
		return
	}
	for _, id := range []*string{in.ItemID, in.CategoryID} {
		if id != nil && *id != "" {
			if _, err := uuid.Parse(*id); err != nil {
				writeError(w, r, fmt.Errorf("%w: target must be a uuid", errBadRequest))
				return
			}
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.Create(ctx, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "OFFER_CREATED", "Offer created successfully", o)
}

func (h *OffersHandler) forItem(w http.ResponseWriter, r *http.Request) {
	h.active(w, r, h.Service.ActiveForItem)
}

func (h *OffersHandler) forCategory(w http.ResponseWriter, r *http.Request) {
	h.active(w, r, h.Service.ActiveForCategory)
}

func (h *OffersHandler) active(w http.ResponseWriter, r *http.Request, lookup func(context.Context, string) (*offers.Active, error)) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	res, err := lookup(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "OFFER_FETCHED", "Offer fetched successfully", res)
}

func (h *OffersHandler) quote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	price, err := strconv.ParseFloat(q.Get("price"), 64)
	if err != nil || price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		writeError(w, r, fmt.Errorf("%w: price must be a non-negative number", errBadRequest))
		return
	}
	itemID, categoryID := q.Get("item_id"), q.Get("category_id")
	for _, id := range []string{itemID, categoryID} {
		if id == "" {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			writeError(w, r, fmt.Errorf("%w: item_id and category_id must be uuids", errBadRequest))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	res, err := h.Service.Quote(ctx, price, itemID, categoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "OFFER_QUOTED", "Price quoted successfully", res)
}
