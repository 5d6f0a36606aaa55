package transport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/farmmarket/internal/auth"
	"github.com/vasiliy-maslov/farmmarket/internal/handler"
	"github.com/vasiliy-maslov/farmmarket/internal/realtime"
	"github.com/vasiliy-maslov/farmmarket/internal/user"
)

// Deps carries the constructed handlers the router mounts. Everything is
// built in main and passed down, so the route table is the only thing this
// package owns.
type Deps struct {
	Tokens        *auth.TokenManager
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Products      *handler.ProductHandler
	Orders        *handler.OrderHandler
	MarketPrices  *handler.MarketPriceHandler
	Notifications *handler.NotificationHandler
	Payments      *handler.PaymentHandler
	Hub           *realtime.Hub
}

func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(d.Tokens.Authenticate)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Get("/ws", d.Hub.HandleWS)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", d.Auth.HandleRegister)
		r.Post("/login", d.Auth.HandleLogin)
		r.Post("/logout", d.Auth.HandleLogout)

		r.Get("/products", d.Products.HandleList)
		r.Get("/products/{id}", d.Products.HandleGet)
		r.Get("/market-prices", d.MarketPrices.HandleList)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)

			r.Get("/user/profile", d.Users.HandleGetProfile)
			r.Put("/user/profile", d.Users.HandleUpdateProfile)

			r.Get("/notifications", d.Notifications.HandleList)
			r.Put("/notifications/read-all", d.Notifications.HandleMarkAllRead)
			r.Put("/notifications/{id}/read", d.Notifications.HandleMarkRead)
			r.Delete("/notifications/{id}", d.Notifications.HandleDelete)

			r.Post("/create-payment-intent", d.Payments.HandleCreateIntent)
		})

		r.Route("/farmer", func(r chi.Router) {
			r.Use(auth.RequireRole(user.RoleFarmer))

			r.Get("/products", d.Products.HandleListOwn)
			r.Post("/products", d.Products.HandleCreate)
			r.Put("/products/{id}", d.Products.HandleUpdate)
			r.Delete("/products/{id}", d.Products.HandleDelete)

			r.Get("/orders", d.Orders.HandleListForFarmer)
			r.Put("/orders/{id}", d.Orders.HandleUpdateStatus)
			r.Post("/orders/{id}/approve", d.Orders.HandleApprove)
			r.Post("/orders/{id}/cancel", d.Orders.HandleCancel)
		})

		r.Route("/buyer", func(r chi.Router) {
			r.Use(auth.RequireRole(user.RoleBuyer))

			r.Get("/orders", d.Orders.HandleListForBuyer)
			r.Post("/orders", d.Orders.HandleCreate)
			r.Post("/orders/{id}/pay", d.Orders.HandlePay)
			r.Post("/orders/{id}/cancel", d.Orders.HandleCancel)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireRole(user.RoleAdmin))

			r.Get("/users", d.Users.HandleListUsers)
			r.Put("/users/{id}/status", d.Users.HandleSetUserStatus)

			r.Get("/orders", d.Orders.HandleListAll)

			r.Post("/market-prices", d.MarketPrices.HandleCreate)
			r.Put("/market-prices/{id}", d.MarketPrices.HandleUpdatePrice)
		})
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
