package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ariefcatur/go-menu-pricing/internal/menu"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type RestaurantService interface {
	CreateRestaurant(ctx context.Context, in menu.CreateRestaurantInput) (*menu.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*menu.Restaurant, error)
}

type RestaurantsHandler struct {
	Service RestaurantService
}

func (h *RestaurantsHandler) Register(r chi.Router) {
	r.Post("/restaurants", h.create)
	r.Get("/restaurants/{id}", h.get)
}

func (h *RestaurantsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in menu.CreateRestaurantInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid json", errBadRequest))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Service.CreateRestaurant(ctx, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "RESTAURANT_CREATED", "Restaurant created successfully", res)
}

func (h *RestaurantsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	res, err := h.Service.GetRestaurant(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "RESTAURANT_FETCHED", "Restaurant fetched successfully", res)
}

func uuidParam(r *http.Request, name string) (string, error) {
	v := chi.URLParam(r, name)
	if _, err := uuid.Parse(v); err != nil {
		return "", fmt.Errorf("%w: %s must be a uuid", errBadRequest, name)
	}
	return v, nil
}
