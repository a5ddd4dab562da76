// Package app wires the storefront service together.
package app

import (
	"log/slog"
	"net/http"

	"github.com/dkoval/shoply/internal/config"
	"github.com/dkoval/shoply/internal/service"
	"github.com/dkoval/shoply/internal/storage"
	"github.com/dkoval/shoply/internal/store"
	"github.com/dkoval/shoply/internal/transport/rest"
	"github.com/dkoval/shoply/pkg/auth"
	"github.com/dkoval/shoply/pkg/messaging"
	"github.com/dkoval/shoply/pkg/server"
	"github.com/dkoval/shoply/pkg/web"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Dependencies struct {
	Auth     service.AuthService
	Catalog  service.CatalogService
	Cart     service.CartService
	Orders   service.OrderService
	Users    service.UserService
	Avatars  service.AvatarService
	Payments service.PaymentService
	Tokens   *auth.TokenManager
	Logger   *slog.Logger
}

// SetupDependencies builds the full service graph over the given
// infrastructure clients.
func SetupDependencies(dbPool *pgxpool.Pool, blobs storage.BlobStore, publisher messaging.Publisher, tokens *auth.TokenManager, logger *slog.Logger) *Dependencies {
	products := store.NewPgProductStore(dbPool)
	orders := store.NewPgOrderStore(dbPool)
	carts := store.NewPgCartStore(dbPool)
	users := store.NewPgUserStore(dbPool)
	payments := store.NewPgPaymentStore(dbPool)

	return &Dependencies{
		Auth:     service.NewAuthService(users, tokens),
		Catalog:  service.NewCatalogService(products),
		Cart:     service.NewCartService(carts, products),
		Orders:   service.NewOrderService(orders, carts, products, publisher),
		Users:    service.NewUserService(users, products),
		Avatars:  service.NewAvatarService(users, blobs),
		Payments: service.NewPaymentService(payments, orders),
		Tokens:   tokens,
		Logger:   logger,
	}
}

// SetupHttpHandler initializes the router with all routes and middleware.
// Also used by E2E tests to run the API in-process.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	authHandler := rest.NewAuthHandler(deps.Auth, deps.Logger)
	productHandler := rest.NewProductHandler(deps.Catalog, deps.Logger)
	cartHandler := rest.NewCartHandler(deps.Cart, deps.Logger)
	orderHandler := rest.NewOrderHandler(deps.Orders, deps.Logger)
	userHandler := rest.NewUserHandler(deps.Users, deps.Avatars, deps.Logger)
	paymentHandler := rest.NewPaymentHandler(deps.Payments, deps.Logger)

	mux.Route("/api/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r)
		productHandler.RegisterPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(web.AuthMiddleware(deps.Tokens))
			productHandler.RegisterProtectedRoutes(r)
			cartHandler.RegisterRoutes(r)
			orderHandler.RegisterRoutes(r)
			userHandler.RegisterRoutes(r)
			paymentHandler.RegisterRoutes(r)
		})
	})

	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// SetupHttpServer creates and configures the HTTP server.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
