package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/vasiliy-maslov/farmmarket/internal/auth"
	"github.com/vasiliy-maslov/farmmarket/internal/product"
	"github.com/vasiliy-maslov/farmmarket/internal/user"
)

type stubProductService struct {
	deleteFunc func(ctx context.Context, farmerID, id int64) error
}

func (s *stubProductService) Create(ctx context.Context, farmerID int64, p *product.Product) (*product.Product, error) {
	return p, nil
}

func (s *stubProductService) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	return nil, product.ErrNotFound
}

func (s *stubProductService) List(ctx context.Context, category string) ([]product.Product, error) {
	return nil, nil
}

func (s *stubProductService) ListByFarmer(ctx context.Context, farmerID int64) ([]product.Product, error) {
	return nil, nil
}

func (s *stubProductService) Update(ctx context.Context, farmerID int64, p *product.Product) (*product.Product, error) {
	return p, nil
}

func (s *stubProductService) Delete(ctx context.Context, farmerID, id int64) error {
	return s.deleteFunc(ctx, farmerID, id)
}

func newProductTestRouter(svc product.Service) *chi.Mux {
	h := NewProductHandler(svc)
	r := chi.NewRouter()
	r.Delete("/products/{id}", h.HandleDelete)
	return r
}

func TestProductHandler_Delete(t *testing.T) {
	farmer := auth.Identity{UserID: 3, Role: user.RoleFarmer}

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "success", err: nil, wantCode: http.StatusNoContent},
		{name: "referenced_by_orders", err: product.ErrProductInUse, wantCode: http.StatusConflict},
		{name: "not_owner", err: product.ErrNotOwner, wantCode: http.StatusForbidden},
		{name: "not_found", err: product.ErrNotFound, wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubProductService{
				deleteFunc: func(ctx context.Context, farmerID, id int64) error {
					assert.Equal(t, int64(3), farmerID)
					return tt.err
				},
			}

			rr := doAs(t, newProductTestRouter(svc), farmer, http.MethodDelete, "/products/9", "")
			assert.Equal(t, tt.wantCode, rr.Code)
		})
	}
}
