package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/farmmarket/internal/auth"
	"github.com/vasiliy-maslov/farmmarket/internal/handler"
	"github.com/vasiliy-maslov/farmmarket/internal/marketprice"
	"github.com/vasiliy-maslov/farmmarket/internal/notification"
	"github.com/vasiliy-maslov/farmmarket/internal/realtime"
	"github.com/vasiliy-maslov/farmmarket/internal/user"
)

type stubPriceService struct{}

func (stubPriceService) Create(ctx context.Context, mp *marketprice.MarketPrice) (*marketprice.MarketPrice, error) {
	return mp, nil
}

func (stubPriceService) List(ctx context.Context) ([]marketprice.MarketPrice, error) {
	return []marketprice.MarketPrice{}, nil
}

func (stubPriceService) UpdatePrice(ctx context.Context, id int64, price float64) (*marketprice.MarketPrice, error) {
	return nil, marketprice.ErrNotFound
}

// newTestRouter wires only what the routing tests touch. Handlers behind
// role gates that the tests never pass hold nil services; the middleware
// must reject those requests before any handler runs.
func newTestRouter(t *testing.T, tokens *auth.TokenManager) http.Handler {
	t.Helper()
	return NewRouter(Deps{
		Tokens:        tokens,
		Auth:          handler.NewAuthHandler(nil, tokens),
		Users:         handler.NewUserHandler(nil),
		Products:      handler.NewProductHandler(nil),
		Orders:        handler.NewOrderHandler(nil),
		MarketPrices:  handler.NewMarketPriceHandler(stubPriceService{}),
		Notifications: handler.NewNotificationHandler(notification.NewService()),
		Payments:      handler.NewPaymentHandler(nil),
		Hub:           realtime.NewHub(nil),
	})
}

func TestRouter_RoleGating(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret")
	router := newTestRouter(t, tokens)

	issue := func(id int64, role user.Role) string {
		token, err := tokens.Issue(id, role)
		require.NoError(t, err)
		return token
	}

	farmerToken := issue(1, user.RoleFarmer)
	buyerToken := issue(2, user.RoleBuyer)
	adminToken := issue(3, user.RoleAdmin)

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		wantCode int
	}{
		{"public_market_prices", http.MethodGet, "/api/market-prices", "", http.StatusOK},
		{"health", http.MethodGet, "/health", "", http.StatusOK},

		{"notifications_anonymous", http.MethodGet, "/api/notifications", "", http.StatusUnauthorized},
		{"notifications_buyer", http.MethodGet, "/api/notifications", buyerToken, http.StatusOK},

		{"buyer_orders_anonymous", http.MethodGet, "/api/buyer/orders", "", http.StatusUnauthorized},
		{"buyer_orders_farmer", http.MethodGet, "/api/buyer/orders", farmerToken, http.StatusForbidden},
		{"buyer_orders_admin", http.MethodGet, "/api/buyer/orders", adminToken, http.StatusForbidden},

		{"farmer_products_buyer", http.MethodPost, "/api/farmer/products", buyerToken, http.StatusForbidden},
		{"farmer_orders_anonymous", http.MethodGet, "/api/farmer/orders", "", http.StatusUnauthorized},

		{"admin_users_farmer", http.MethodGet, "/api/admin/users", farmerToken, http.StatusForbidden},
		{"admin_users_buyer", http.MethodGet, "/api/admin/users", buyerToken, http.StatusForbidden},
		{"admin_orders_anonymous", http.MethodGet, "/api/admin/orders", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			assert.Equal(t, tt.wantCode, rr.Code)
		})
	}
}

func TestRouter_InvalidTokenIsAnonymous(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret")
	router := newTestRouter(t, tokens)

	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
