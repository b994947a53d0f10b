package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/luxeleather/storefront-backend/api/controllers"
	"github.com/luxeleather/storefront-backend/api/middleware"
	"github.com/luxeleather/storefront-backend/internal/addresses"
	"github.com/luxeleather/storefront-backend/internal/auth"
	"github.com/luxeleather/storefront-backend/internal/cart"
	"github.com/luxeleather/storefront-backend/internal/catalog"
	checkoutsvc "github.com/luxeleather/storefront-backend/internal/checkout"
	"github.com/luxeleather/storefront-backend/internal/orders"
	"github.com/luxeleather/storefront-backend/internal/wishlist"
	"github.com/luxeleather/storefront-backend/pkg/auth/session"
	"github.com/luxeleather/storefront-backend/pkg/config"
	"github.com/luxeleather/storefront-backend/pkg/db"
	"github.com/luxeleather/storefront-backend/pkg/enums"
	"github.com/luxeleather/storefront-backend/pkg/logger"
	"github.com/luxeleather/storefront-backend/pkg/metrics"
	pkgredis "github.com/luxeleather/storefront-backend/pkg/redis"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *pkgredis.Client
	Sessions session.AccessSessionChecker
	Metrics  *metrics.HTTPMetrics
	Registry prometheus.Gatherer

	Auth      auth.Service
	Catalog   catalog.Service
	Cart      cart.Service
	Checkout  checkoutsvc.Service
	Orders    orders.Service
	Addresses addresses.Service
	Wishlist  wishlist.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
		middleware.Metrics(deps.Metrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
		cfg.RateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.RateLimit.RegisterWindow,
		cfg.RateLimit.RegisterIPLimit,
		cfg.RateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})
	r.Get("/ping", controllers.Ping())
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public storefront surface.
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Catalog, logg))
			r.Get("/featured", controllers.ProductFeatured(deps.Catalog, logg))
			r.Get("/search", controllers.ProductSearch(deps.Catalog, logg))
			r.Get("/slug/{slug}", controllers.ProductBySlug(deps.Catalog, logg))
			r.Get("/{productId}", controllers.ProductDetail(deps.Catalog, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(deps.Catalog, logg))
			r.Get("/{slug}", controllers.CategoryBySlug(deps.Catalog, logg))
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
				Post("/register", controllers.AuthRegister(deps.Auth, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
				Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
			r.With(middleware.Auth(cfg.JWT, deps.Sessions, logg)).
				Post("/logout", controllers.AuthLogout(deps.Auth, logg))
		})

		// Authenticated customer surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
			r.Use(middleware.Idempotency(deps.Redis, logg))

			r.Route("/me", func(r chi.Router) {
				r.Get("/", controllers.MeFetch(deps.Auth, logg))
				r.Patch("/", controllers.MeUpdate(deps.Auth, logg))
				r.Post("/password", controllers.MeChangePassword(deps.Auth, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(deps.Cart, logg))
				r.Delete("/", controllers.CartClear(deps.Cart, logg))
				r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
				r.Patch("/items/{itemId}", controllers.CartUpdateItem(deps.Cart, logg))
				r.Delete("/items/{itemId}", controllers.CartRemoveItem(deps.Cart, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/quote", controllers.CheckoutQuote(deps.Checkout, logg))
				r.Post("/", controllers.Checkout(deps.Checkout, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderList(deps.Orders, logg))
				r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
				r.Post("/{orderId}/cancel", controllers.OrderCancel(deps.Orders, logg))
			})

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", controllers.AddressList(deps.Addresses, logg))
				r.Post("/", controllers.AddressCreate(deps.Addresses, logg))
				r.Get("/{addressId}", controllers.AddressDetail(deps.Addresses, logg))
				r.Put("/{addressId}", controllers.AddressUpdate(deps.Addresses, logg))
				r.Delete("/{addressId}", controllers.AddressDelete(deps.Addresses, logg))
				r.Post("/{addressId}/default", controllers.AddressSetDefault(deps.Addresses, logg))
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.WishlistFetch(deps.Wishlist, logg))
				r.Post("/{productId}", controllers.WishlistAdd(deps.Wishlist, logg))
				r.Delete("/{productId}", controllers.WishlistRemove(deps.Wishlist, logg))
			})
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(deps.Orders, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(deps.Orders, logg))
			r.Post("/{orderId}/status", controllers.AdminOrderUpdateStatus(deps.Orders, logg))
			r.Post("/{orderId}/tracking", controllers.AdminOrderSetTracking(deps.Orders, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminProductList(deps.Catalog, logg))
			r.Post("/", controllers.AdminProductCreate(deps.Catalog, logg))
			r.Get("/{productId}", controllers.AdminProductDetail(deps.Catalog, logg))
			r.Patch("/{productId}", controllers.AdminProductUpdate(deps.Catalog, logg))
			r.Delete("/{productId}", controllers.AdminProductDeactivate(deps.Catalog, logg))
			r.Put("/{productId}/images", controllers.AdminProductReplaceImages(deps.Catalog, logg))
			r.Put("/{productId}/variants", controllers.AdminProductReplaceVariants(deps.Catalog, logg))
			r.Put("/{productId}/inventory", controllers.AdminProductSetInventory(deps.Catalog, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.AdminCategoryList(deps.Catalog, logg))
			r.Post("/", controllers.AdminCategoryCreate(deps.Catalog, logg))
			r.Patch("/{categoryId}", controllers.AdminCategoryUpdate(deps.Catalog, logg))
			r.Delete("/{categoryId}", controllers.AdminCategoryDeactivate(deps.Catalog, logg))
		})
	})

	return r
}
