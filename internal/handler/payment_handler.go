package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/farmmarket/internal/auth"
	"github.com/vasiliy-maslov/farmmarket/internal/payment"
)

type CreatePaymentIntentRequest struct {
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency"`
}

// PaymentHandler exposes the gateway directly for clients that collect a
// payment before an order exists, such as a checkout page priming a card form.
type PaymentHandler struct {
	processor payment.Processor
	validate  *validator.Validate
}

func NewPaymentHandler(processor payment.Processor) *PaymentHandler {
	return &PaymentHandler{
		processor: processor,
		validate:  validator.New(),
	}
}

func (h *PaymentHandler) HandleCreateIntent(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	var req CreatePaymentIntentRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	key, err := uuid.NewV4()
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to generate idempotency key")
		respondWithError(w, http.StatusInternalServerError, "failed to create payment intent")
		return
	}

	intent, err := h.processor.CreateIntent(r.Context(), req.Amount, currency, identity.UserID, key.String())
	if err != nil {
		log.Warn().Err(err).Int64("user_id", identity.UserID).Msg("handler: failed to create payment intent")
		respondDomainError(w, err, "failed to create payment intent")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"intent_id":     intent.ID,
		"client_secret": intent.ClientSecret,
		"amount":        intent.Amount,
		"currency":      intent.Currency,
	})
}
