package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/farmmarket/internal/marketprice"
	"github.com/vasiliy-maslov/farmmarket/internal/notification"
	"github.com/vasiliy-maslov/farmmarket/internal/order"
	"github.com/vasiliy-maslov/farmmarket/internal/payment"
	"github.com/vasiliy-maslov/farmmarket/internal/product"
	"github.com/vasiliy-maslov/farmmarket/internal/user"
)

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
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

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		details[fieldErr.Field()] = fmt.Sprintf("failed on the %q rule", fieldErr.Tag())
	}
	return details
}

func respondValidationError(w http.ResponseWriter, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:   "validation failed",
			Details: formatValidationErrors(validationErrors),
		})
		return
	}
	log.Error().Err(err).Msg("handler: unexpected error type during validation")
	respondWithError(w, http.StatusInternalServerError, "internal validation error")
}

func idParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// mapErrorToStatusCode turns domain sentinel errors into HTTP codes so
// expected failures never surface as opaque 500s.
func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, marketprice.ErrNotFound),
		errors.Is(err, notification.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, user.ErrUsernameExists),
		errors.Is(err, user.ErrEmailExists),
		errors.Is(err, product.ErrProductInUse),
		errors.Is(err, order.ErrStatusConflict):
		return http.StatusConflict
	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, user.ErrAccountInactive),
		errors.Is(err, product.ErrNotOwner),
		errors.Is(err, order.ErrNotOwner),
		errors.Is(err, order.ErrNotParticipant):
		return http.StatusForbidden
	case errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidStock),
		errors.Is(err, product.ErrNameRequired),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrProductNotFound),
		errors.Is(err, order.ErrInsufficientStock),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, marketprice.ErrInvalidPrice),
		errors.Is(err, marketprice.ErrNameRequired),
		errors.Is(err, payment.ErrInvalidAmount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondDomainError writes the sentinel's own message for expected failures
// and a generic message for everything else, so internal details never leak.
func respondDomainError(w http.ResponseWriter, err error, fallback string) {
	code := mapErrorToStatusCode(err)
	message := fallback
	if code != http.StatusInternalServerError {
		message = err.Error()
	}
	respondWithError(w, code, message)
}
