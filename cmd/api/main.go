package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/luxeleather/storefront-backend/api/routes"
	"github.com/luxeleather/storefront-backend/internal/addresses"
	"github.com/luxeleather/storefront-backend/internal/auth"
	"github.com/luxeleather/storefront-backend/internal/cart"
	"github.com/luxeleather/storefront-backend/internal/catalog"
	"github.com/luxeleather/storefront-backend/internal/checkout"
	"github.com/luxeleather/storefront-backend/internal/orders"
	"github.com/luxeleather/storefront-backend/internal/users"
	"github.com/luxeleather/storefront-backend/internal/wishlist"
	"github.com/luxeleather/storefront-backend/pkg/auth/session"
	"github.com/luxeleather/storefront-backend/pkg/config"
	"github.com/luxeleather/storefront-backend/pkg/db"
	"github.com/luxeleather/storefront-backend/pkg/logger"
	"github.com/luxeleather/storefront-backend/pkg/metrics"
	"github.com/luxeleather/storefront-backend/pkg/migrate"
	"github.com/luxeleather/storefront-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	usersRepo := users.NewRepository(gormDB)
	catalogRepo := catalog.NewRepository(gormDB)
	cartRepo := cart.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	addressesRepo := addresses.NewRepository(gormDB)
	wishlistRepo := wishlist.NewRepository(gormDB)

	authService, err := auth.NewService(usersRepo, sessionManager, cfg.JWT, cfg.Password)
	requireService(logg, "auth", err)
	catalogService, err := catalog.NewService(catalogRepo, dbClient, cfg.Catalog)
	requireService(logg, "catalog", err)
	cartService, err := cart.NewService(cartRepo, dbClient)
	requireService(logg, "cart", err)
	checkoutService, err := checkout.NewService(cartRepo, catalogRepo, ordersRepo, dbClient, cfg.Checkout)
	requireService(logg, "checkout", err)
	ordersService, err := orders.NewService(ordersRepo, dbClient)
	requireService(logg, "orders", err)
	addressesService, err := addresses.NewService(addressesRepo, dbClient)
	requireService(logg, "addresses", err)
	wishlistService, err := wishlist.NewService(wishlistRepo)
	requireService(logg, "wishlist", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	router := routes.NewRouter(routes.Deps{
		Config:    cfg,
		Logger:    logg,
		DB:        dbClient,
		Redis:     redisClient,
		Sessions:  sessionManager,
		Metrics:   httpMetrics,
		Registry:  registry,
		Auth:      authService,
		Catalog:   catalogService,
		Cart:      cartService,
		Checkout:  checkoutService,
		Orders:    ordersService,
		Addresses: addressesService,
		Wishlist:  wishlistService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	closeErr := multierr.Combine(
		server.Shutdown(shutdownCtx),
		redisClient.Close(),
		dbClient.Close(),
	)
	if closeErr != nil {
		logg.Error(ctx, "error during shutdown", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}
