package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/farmmarket/internal/auth"
	"github.com/vasiliy-maslov/farmmarket/internal/order"
	"github.com/vasiliy-maslov/farmmarket/internal/payment"
	"github.com/vasiliy-maslov/farmmarket/internal/user"
)

type stubOrderService struct {
	createFunc        func(ctx context.Context, buyerID int64, items []order.ItemInput) (*order.Order, error)
	payFunc           func(ctx context.Context, buyerID, orderID int64) (*payment.Intent, error)
	approveFunc       func(ctx context.Context, farmerID, orderID int64) error
	cancelFunc        func(ctx context.Context, userID int64, role user.Role, orderID int64) error
	requestStatusFunc func(ctx context.Context, farmerID, orderID int64, requested order.Status) error
	listByBuyerFunc   func(ctx context.Context, buyerID int64) ([]order.Order, error)
}

func (s *stubOrderService) Create(ctx context.Context, buyerID int64, items []order.ItemInput) (*order.Order, error) {
	return s.createFunc(ctx, buyerID, items)
}

func (s *stubOrderService) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	return nil, order.ErrNotFound
}

func (s *stubOrderService) ListByBuyer(ctx context.Context, buyerID int64) ([]order.Order, error) {
	return s.listByBuyerFunc(ctx, buyerID)
}

func (s *stubOrderService) ListByFarmer(ctx context.Context, farmerID int64) ([]order.Order, error) {
	return nil, nil
}

func (s *stubOrderService) ListAll(ctx context.Context) ([]order.Order, error) {
	return nil, nil
}

func (s *stubOrderService) Pay(ctx context.Context, buyerID, orderID int64) (*payment.Intent, error) {
	return s.payFunc(ctx, buyerID, orderID)
}

func (s *stubOrderService) Approve(ctx context.Context, farmerID, orderID int64) error {
	return s.approveFunc(ctx, farmerID, orderID)
}

func (s *stubOrderService) Ship(ctx context.Context, farmerID, orderID int64) error {
	return nil
}

func (s *stubOrderService) Deliver(ctx context.Context, farmerID, orderID int64) error {
	return nil
}

func (s *stubOrderService) Cancel(ctx context.Context, userID int64, role user.Role, orderID int64) error {
	return s.cancelFunc(ctx, userID, role, orderID)
}

func (s *stubOrderService) RequestStatus(ctx context.Context, farmerID, orderID int64, requested order.Status) error {
	return s.requestStatusFunc(ctx, farmerID, orderID, requested)
}

func newOrderTestRouter(svc order.Service) *chi.Mux {
	h := NewOrderHandler(svc)
	r := chi.NewRouter()
	r.Post("/orders", h.HandleCreate)
	r.Get("/orders", h.HandleListForBuyer)
	r.Post("/orders/{id}/pay", h.HandlePay)
	r.Post("/orders/{id}/approve", h.HandleApprove)
	r.Post("/orders/{id}/cancel", h.HandleCancel)
	r.Put("/orders/{id}", h.HandleUpdateStatus)
	return r
}

func doAs(t *testing.T, router http.Handler, identity auth.Identity, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(auth.WithIdentity(req.Context(), identity))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestOrderHandler_Create(t *testing.T) {
	buyer := auth.Identity{UserID: 7, Role: user.RoleBuyer}

	t.Run("success", func(t *testing.T) {
		svc := &stubOrderService{
			createFunc: func(ctx context.Context, buyerID int64, items []order.ItemInput) (*order.Order, error) {
				assert.Equal(t, int64(7), buyerID)
				require.Len(t, items, 1)
				assert.Equal(t, order.ItemInput{ProductID: 3, Quantity: 2}, items[0])
				return &order.Order{ID: 42, BuyerID: buyerID, Status: order.StatusPending, Total: 10}, nil
			},
		}

		rr := doAs(t, newOrderTestRouter(svc), buyer, http.MethodPost, "/orders",
			`{"items":[{"product_id":3,"quantity":2}]}`)

		require.Equal(t, http.StatusCreated, rr.Code)

		var got order.Order
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, int64(42), got.ID)
		assert.Equal(t, order.StatusPending, got.Status)
	})

	t.Run("empty_items_rejected_before_service", func(t *testing.T) {
		svc := &stubOrderService{
			createFunc: func(ctx context.Context, buyerID int64, items []order.ItemInput) (*order.Order, error) {
				t.Fatal("service must not be called")
				return nil, nil
			},
		}

		rr := doAs(t, newOrderTestRouter(svc), buyer, http.MethodPost, "/orders", `{"items":[]}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("insufficient_stock_maps_to_400", func(t *testing.T) {
		svc := &stubOrderService{
			createFunc: func(ctx context.Context, buyerID int64, items []order.ItemInput) (*order.Order, error) {
				return nil, order.ErrInsufficientStock
			},
		}

		rr := doAs(t, newOrderTestRouter(svc), buyer, http.MethodPost, "/orders",
			`{"items":[{"product_id":3,"quantity":2}]}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestOrderHandler_Pay(t *testing.T) {
	buyer := auth.Identity{UserID: 7, Role: user.RoleBuyer}

	t.Run("success_returns_intent", func(t *testing.T) {
		svc := &stubOrderService{
			payFunc: func(ctx context.Context, buyerID, orderID int64) (*payment.Intent, error) {
				assert.Equal(t, int64(7), buyerID)
				assert.Equal(t, int64(5), orderID)
				return &payment.Intent{ID: "mock_pi_1", ClientSecret: "mock_secret_1"}, nil
			},
		}

		rr := doAs(t, newOrderTestRouter(svc), buyer, http.MethodPost, "/orders/5/pay", "")
		require.Equal(t, http.StatusOK, rr.Code)

		var got map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "mock_pi_1", got["intent_id"])
		assert.Equal(t, "paid", got["status"])
	})

	t.Run("second_pay_conflicts", func(t *testing.T) {
		svc := &stubOrderService{
			payFunc: func(ctx context.Context, buyerID, orderID int64) (*payment.Intent, error) {
				return nil, order.ErrStatusConflict
			},
		}

		rr := doAs(t, newOrderTestRouter(svc), buyer, http.MethodPost, "/orders/5/pay", "")
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("foreign_order_forbidden", func(t *testing.T) {
		svc := &stubOrderService{
			payFunc: func(ctx context.Context, buyerID, orderID int64) (*payment.Intent, error) {
				return nil, order.ErrNotOwner
			},
		}

		rr := doAs(t, newOrderTestRouter(svc), buyer, http.MethodPost, "/orders/5/pay", "")
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("bad_id_param", func(t *testing.T) {
		svc := &stubOrderService{}
		rr := doAs(t, newOrderTestRouter(svc), buyer, http.MethodPost, "/orders/abc/pay", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestOrderHandler_Approve(t *testing.T) {
	farmer := auth.Identity{UserID: 2, Role: user.RoleFarmer}

	t.Run("pending_order_not_approvable", func(t *testing.T) {
		svc := &stubOrderService{
			approveFunc: func(ctx context.Context, farmerID, orderID int64) error {
				return order.ErrInvalidTransition
			},
		}

		rr := doAs(t, newOrderTestRouter(svc), farmer, http.MethodPost, "/orders/5/approve", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("success", func(t *testing.T) {
		svc := &stubOrderService{
			approveFunc: func(ctx context.Context, farmerID, orderID int64) error {
				assert.Equal(t, int64(2), farmerID)
				return nil
			},
		}

		rr := doAs(t, newOrderTestRouter(svc), farmer, http.MethodPost, "/orders/5/approve", "")
		require.Equal(t, http.StatusOK, rr.Code)

		var got map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "confirmed", got["status"])
	})
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	farmer := auth.Identity{UserID: 2, Role: user.RoleFarmer}

	t.Run("unknown_status_rejected", func(t *testing.T) {
		svc := &stubOrderService{
			requestStatusFunc: func(ctx context.Context, farmerID, orderID int64, requested order.Status) error {
				t.Fatal("service must not be called")
				return nil
			},
		}

		rr := doAs(t, newOrderTestRouter(svc), farmer, http.MethodPut, "/orders/5", `{"status":"teleported"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown_field_rejected", func(t *testing.T) {
		svc := &stubOrderService{
			requestStatusFunc: func(ctx context.Context, farmerID, orderID int64, requested order.Status) error {
				t.Fatal("service must not be called")
				return nil
			},
		}

		rr := doAs(t, newOrderTestRouter(svc), farmer, http.MethodPut, "/orders/5", `{"status":"shipped","tracking":"x"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("lifecycle_violation_rejected", func(t *testing.T) {
		svc := &stubOrderService{
			requestStatusFunc: func(ctx context.Context, farmerID, orderID int64, requested order.Status) error {
				assert.Equal(t, order.StatusPaid, requested)
				return order.ErrInvalidTransition
			},
		}

		rr := doAs(t, newOrderTestRouter(svc), farmer, http.MethodPut, "/orders/5", `{"status":"paid"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("shipped_accepted", func(t *testing.T) {
		svc := &stubOrderService{
			requestStatusFunc: func(ctx context.Context, farmerID, orderID int64, requested order.Status) error {
				assert.Equal(t, order.StatusShipped, requested)
				return nil
			},
		}

		rr := doAs(t, newOrderTestRouter(svc), farmer, http.MethodPut, "/orders/5", `{"status":"shipped"}`)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestOrderHandler_Cancel(t *testing.T) {
	svc := &stubOrderService{
		cancelFunc: func(ctx context.Context, userID int64, role user.Role, orderID int64) error {
			assert.Equal(t, int64(7), userID)
			assert.Equal(t, user.RoleBuyer, role)
			assert.Equal(t, int64(5), orderID)
			return nil
		},
	}

	buyer := auth.Identity{UserID: 7, Role: user.RoleBuyer}
	rr := doAs(t, newOrderTestRouter(svc), buyer, http.MethodPost, "/orders/5/cancel", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "cancelled", got["status"])
}
