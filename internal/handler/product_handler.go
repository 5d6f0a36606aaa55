package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/farmmarket/internal/auth"
	"github.com/vasiliy-maslov/farmmarket/internal/product"
)

type ProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Unit        string  `json:"unit"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	ImageURL    string  `json:"image_url"`
	Organic     bool    `json:"organic"`
	SKU         string  `json:"sku"`
}

type ProductHandler struct {
	products product.Service
	validate *validator.Validate
}

func NewProductHandler(products product.Service) *ProductHandler {
	return &ProductHandler{
		products: products,
		validate: validator.New(),
	}
}

func (h *ProductHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to list products")
		respondDomainError(w, err, "failed to list products")
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, err, "failed to get product")
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) HandleListOwn(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	products, err := h.products.ListByFarmer(r.Context(), identity.UserID)
	if err != nil {
		log.Error().Err(err).Int64("farmer_id", identity.UserID).Msg("handler: failed to list farmer products")
		respondDomainError(w, err, "failed to list products")
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) decodeProduct(w http.ResponseWriter, r *http.Request) (*ProductRequest, bool) {
	var req ProductRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return nil, false
	}
	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return nil, false
	}
	return &req, true
}

func toProduct(req *ProductRequest) *product.Product {
	return &product.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Unit:        req.Unit,
		Quantity:    req.Quantity,
		ImageURL:    req.ImageURL,
		Organic:     req.Organic,
		SKU:         req.SKU,
	}
}

func (h *ProductHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	req, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	created, err := h.products.Create(r.Context(), identity.UserID, toProduct(req))
	if err != nil {
		log.Warn().Err(err).Int64("farmer_id", identity.UserID).Msg("handler: failed to create product")
		respondDomainError(w, err, "failed to create product")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *ProductHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	req, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	p := toProduct(req)
	p.ID = id

	updated, err := h.products.Update(r.Context(), identity.UserID, p)
	if err != nil {
		log.Warn().Err(err).Int64("product_id", id).Msg("handler: failed to update product")
		respondDomainError(w, err, "failed to update product")
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *ProductHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	if err := h.products.Delete(r.Context(), identity.UserID, id); err != nil {
		log.Warn().Err(err).Int64("product_id", id).Msg("handler: failed to delete product")
		respondDomainError(w, err, "failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
