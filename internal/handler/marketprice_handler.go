package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/farmmarket/internal/marketprice"
)

type CreateMarketPriceRequest struct {
	ProductName string  `json:"product_name" validate:"required"`
	Category    string  `json:"category"`
	Price       float64 `json:"price" validate:"required,gt=0"`
}

type UpdateMarketPriceRequest struct {
	Price float64 `json:"price" validate:"required,gt=0"`
}

type MarketPriceHandler struct {
	prices   marketprice.Service
	validate *validator.Validate
}

func NewMarketPriceHandler(prices marketprice.Service) *MarketPriceHandler {
	return &MarketPriceHandler{
		prices:   prices,
		validate: validator.New(),
	}
}

func (h *MarketPriceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	prices, err := h.prices.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to list market prices")
		respondDomainError(w, err, "failed to list market prices")
		return
	}
	respondWithJSON(w, http.StatusOK, prices)
}

func (h *MarketPriceHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateMarketPriceRequest
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

	created, err := h.prices.Create(r.Context(), &marketprice.MarketPrice{
		ProductName: req.ProductName,
		Category:    req.Category,
		Price:       req.Price,
	})
	if err != nil {
		log.Warn().Err(err).Str("product_name", req.ProductName).Msg("handler: failed to create market price")
		respondDomainError(w, err, "failed to create market price")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *MarketPriceHandler) HandleUpdatePrice(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	var req UpdateMarketPriceRequest
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

	updated, err := h.prices.UpdatePrice(r.Context(), id, req.Price)
	if err != nil {
		log.Warn().Err(err).Int64("market_price_id", id).Msg("handler: failed to update market price")
		respondDomainError(w, err, "failed to update market price")
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}
