package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ariefcatur/go-menu-pricing/internal/menu"
	"github.com/ariefcatur/go-menu-pricing/internal/offers"
	"github.com/rs/zerolog/hlog"
)

type envelope struct {
	Success bool   `json:"success"`
	Key     string `json:"key"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, code int, key, message string, data any) {
	writeJSON(w, code, envelope{Success: true, Key: key, Message: message, Data: data})
}

// errBadRequest marks failures of request parsing done in this package.
var errBadRequest = errors.New("bad request")

type apiError struct {
	status int
	key    string
}

var errorTable = []struct {
	err error
	apiError
}{
	{menu.ErrRestaurantNotFound, apiError{http.StatusNotFound, "RESTAURANT_NOT_FOUND"}},
	{menu.ErrMenuNotFound, apiError{http.StatusNotFound, "MENU_NOT_FOUND"}},
	{offers.ErrTargetNotFound, apiError{http.StatusNotFound, "OFFER_TARGET_NOT_FOUND"}},
	{menu.ErrInvalidRestaurant, apiError{http.StatusBadRequest, "INVALID_RESTAURANT"}},
	{menu.ErrInvalidMenu, apiError{http.StatusBadRequest, "INVALID_MENU"}},
	{offers.ErrTargetRequired, apiError{http.StatusBadRequest, "OFFER_TARGET_REQUIRED"}},
	{offers.ErrInvalidOfferType, apiError{http.StatusBadRequest, "INVALID_OFFER_TYPE"}},
	{offers.ErrInvalidAmount, apiError{http.StatusBadRequest, "INVALID_OFFER_AMOUNT"}},
	{offers.ErrInvalidWindow, apiError{http.StatusBadRequest, "INVALID_OFFER_WINDOW"}},
	{errBadRequest, apiError{http.StatusBadRequest, "VALIDATION_ERROR"}},
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			writeJSON(w, e.status, envelope{Key: e.key, Message: err.Error()})
			return
		}
	}
	hlog.FromRequest(r).Error().Err(err).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, envelope{Key: "INTERNAL_SERVER_ERROR", Message: "Something went wrong"})
}
