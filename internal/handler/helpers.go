package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mayank1327/food-ordering-app/internal/catalog"
	"github.com/mayank1327/food-ordering-app/internal/order"
	"github.com/mayank1327/food-ordering-app/internal/wallet"
)

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to marshal response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("handler: failed to write JSON response")
	}
}

// mapErrorToStatusCode translates the service error taxonomy to HTTP.
// Scope mismatches and missed preconditions share 404 so existence never
// leaks across scope boundaries.
func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, order.ErrValidation),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrItemUnavailable),
		errors.Is(err, catalog.ErrValidation),
		errors.Is(err, wallet.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, order.ErrForbidden),
		errors.Is(err, catalog.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, order.ErrNotFoundOrProcessed),
		errors.Is(err, order.ErrRestaurantNotFound),
		errors.Is(err, catalog.ErrRestaurantNotFound),
		errors.Is(err, catalog.ErrMenuItemNotFound),
		errors.Is(err, wallet.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrAlreadyCancelled),
		errors.Is(err, order.ErrTerminalState):
		return http.StatusConflict
	case order.IsInfraError(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage strips wrapping so callers see the stable sentinel text
// instead of internal context.
func publicMessage(err error) string {
	for _, sentinel := range []error{
		order.ErrValidation,
		order.ErrInvalidQuantity,
		order.ErrItemUnavailable,
		order.ErrRestaurantNotFound,
		order.ErrNotFound,
		order.ErrNotFoundOrProcessed,
		order.ErrForbidden,
		order.ErrAlreadyCancelled,
		order.ErrTerminalState,
		catalog.ErrValidation,
		catalog.ErrForbidden,
		catalog.ErrRestaurantNotFound,
		catalog.ErrMenuItemNotFound,
		wallet.ErrValidation,
		wallet.ErrNotFound,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	if order.IsInfraError(err) {
		return "storage temporarily unavailable"
	}
	return "internal server error"
}

func respondWithServiceError(w http.ResponseWriter, err error) {
	code := mapErrorToStatusCode(err)
	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", code).Msg("handler: request failed")
	} else {
		log.Debug().Err(err).Int("status", code).Msg("handler: request rejected")
	}
	respondWithError(w, code, publicMessage(err))
}
