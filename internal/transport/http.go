package transport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mayank1327/food-ordering-app/internal/catalog"
	"github.com/mayank1327/food-ordering-app/internal/handler"
	"github.com/mayank1327/food-ordering-app/internal/identity"
	"github.com/mayank1327/food-ordering-app/internal/order"
	"github.com/mayank1327/food-ordering-app/internal/wallet"
)

// NewRouter wires repositories, services and handlers onto a chi router.
// Everything under /api requires a verified identity.
func NewRouter(db *pgxpool.Pool, verifier *identity.Verifier, queryTimeout time.Duration) *chi.Mux {
	catalogRepo := catalog.NewRepository(db)
	catalogSvc := catalog.NewService(catalogRepo)

	walletRepo := wallet.NewRepository(db)
	walletSvc := wallet.NewService(walletRepo)

	orderRepo := order.NewRepository(db, queryTimeout)
	orderSvc := order.NewService(orderRepo, catalog.NewLookup(catalogRepo), walletSvc)

	orders := handler.NewOrderHandler(orderSvc)
	catalogs := handler.NewCatalogHandler(catalogSvc)
	wallets := handler.NewWalletHandler(walletSvc)

	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(identity.Middleware(verifier))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orders.List)
			r.Post("/", orders.Create)
			r.Get("/{id}", orders.Get)
			r.Post("/{id}/place", orders.Place)
			r.Post("/{id}/cancel", orders.Cancel)
		})

		r.Route("/restaurants", func(r chi.Router) {
			r.Get("/", catalogs.ListRestaurants)
			r.Post("/", catalogs.CreateRestaurant)
			r.Get("/{id}", catalogs.GetRestaurant)
			r.Put("/{id}", catalogs.UpdateRestaurant)
			r.Delete("/{id}", catalogs.DeleteRestaurant)
			r.Get("/{id}/menu", catalogs.ListMenu)
		})

		r.Route("/menu-items", func(r chi.Router) {
			r.Post("/", catalogs.CreateMenuItem)
			r.Put("/{id}", catalogs.UpdateMenuItem)
			r.Delete("/{id}", catalogs.DeleteMenuItem)
		})

		r.Route("/payment-methods", func(r chi.Router) {
			r.Get("/", wallets.List)
			r.Post("/", wallets.Add)
			r.Get("/{id}", wallets.Get)
		})
	})

	return r
}
