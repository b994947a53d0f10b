package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/luxeleather/storefront-backend/internal/addresses"
	"github.com/luxeleather/storefront-backend/internal/auth"
	"github.com/luxeleather/storefront-backend/internal/cart"
	"github.com/luxeleather/storefront-backend/internal/catalog"
	"github.com/luxeleather/storefront-backend/internal/checkout"
	"github.com/luxeleather/storefront-backend/internal/orders"
	pkgauth "github.com/luxeleather/storefront-backend/pkg/auth"
	"github.com/luxeleather/storefront-backend/pkg/auth/session"
	"github.com/luxeleather/storefront-backend/pkg/config"
	"github.com/luxeleather/storefront-backend/pkg/db/models"
	"github.com/luxeleather/storefront-backend/pkg/enums"
	pkgerrors "github.com/luxeleather/storefront-backend/pkg/errors"
	"github.com/luxeleather/storefront-backend/pkg/logger"
	"github.com/luxeleather/storefront-backend/pkg/pagination"
	pkgredis "github.com/luxeleather/storefront-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessions struct{}

func (stubSessions) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, input auth.RegisterInput) (*auth.Session, error) {
	panic("unimplemented")
}
func (stubAuthService) Login(ctx context.Context, input auth.LoginInput) (*auth.Session, error) {
	panic("unimplemented")
}
func (stubAuthService) Refresh(ctx context.Context, input auth.RefreshInput) (*auth.Session, error) {
	panic("unimplemented")
}
func (stubAuthService) Logout(ctx context.Context, accessID string) error { return nil }
func (stubAuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*auth.Profile, error) {
	return &auth.Profile{ID: userID.String(), Email: "ava@example.com"}, nil
}
func (stubAuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, input auth.UpdateProfileInput) (*auth.Profile, error) {
	panic("unimplemented")
}
func (stubAuthService) ChangePassword(ctx context.Context, userID uuid.UUID, input auth.ChangePasswordInput) error {
	panic("unimplemented")
}

type stubCatalogService struct{}

func (stubCatalogService) ListProducts(ctx context.Context, params pagination.Params, opts catalog.ListOptions) (*catalog.ProductList, error) {
	return &catalog.ProductList{}, nil
}
func (stubCatalogService) FeaturedProducts(ctx context.Context) ([]models.Product, error) {
	return nil, nil
}
func (stubCatalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}
func (stubCatalogService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	panic("unimplemented")
}
func (stubCatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return nil, nil
}
func (stubCatalogService) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	panic("unimplemented")
}
func (stubCatalogService) AdminListProducts(ctx context.Context, params pagination.Params, filters catalog.ProductFilters) (*catalog.ProductList, error) {
	panic("unimplemented")
}
func (stubCatalogService) AdminGetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	panic("unimplemented")
}
func (stubCatalogService) CreateProduct(ctx context.Context, input catalog.CreateProductInput) (*models.Product, error) {
	panic("unimplemented")
}
func (stubCatalogService) UpdateProduct(ctx context.Context, productID uuid.UUID, input catalog.UpdateProductInput) (*models.Product, error) {
	panic("unimplemented")
}
func (stubCatalogService) DeactivateProduct(ctx context.Context, productID uuid.UUID) error {
	panic("unimplemented")
}
func (stubCatalogService) AdminListCategories(ctx context.Context) ([]models.Category, error) {
	return nil, nil
}
func (stubCatalogService) CreateCategory(ctx context.Context, input catalog.CategoryInput) (*models.Category, error) {
	panic("unimplemented")
}
func (stubCatalogService) UpdateCategory(ctx context.Context, categoryID uuid.UUID, input catalog.CategoryInput) (*models.Category, error) {
	panic("unimplemented")
}
func (stubCatalogService) DeactivateCategory(ctx context.Context, categoryID uuid.UUID) error {
	panic("unimplemented")
}
func (stubCatalogService) ReplaceImages(ctx context.Context, productID uuid.UUID, inputs []catalog.ImageInput) (*models.Product, error) {
	panic("unimplemented")
}
func (stubCatalogService) ReplaceVariants(ctx context.Context, productID uuid.UUID, inputs []catalog.VariantInput) (*models.Product, error) {
	panic("unimplemented")
}
func (stubCatalogService) SetInventory(ctx context.Context, input catalog.SetInventoryInput) (*models.InventoryRecord, error) {
	panic("unimplemented")
}

type stubCartService struct{}

func (stubCartService) GetCart(ctx context.Context, userID uuid.UUID) (*cart.View, error) {
	return &cart.View{}, nil
}
func (stubCartService) AddItem(ctx context.Context, userID uuid.UUID, input cart.AddItemInput) (*cart.View, error) {
	panic("unimplemented")
}
func (stubCartService) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*cart.View, error) {
	panic("unimplemented")
}
func (stubCartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*cart.View, error) {
	panic("unimplemented")
}
func (stubCartService) Clear(ctx context.Context, userID uuid.UUID) (*cart.View, error) {
	panic("unimplemented")
}

type stubCheckoutService struct{}

func (stubCheckoutService) Quote(ctx context.Context, userID uuid.UUID) (*checkout.Totals, error) {
	panic("unimplemented")
}
func (stubCheckoutService) PlaceOrder(ctx context.Context, userID uuid.UUID, input checkout.Input) (*models.Order, error) {
	panic("unimplemented")
}

type stubOrdersService struct{}

func (stubOrdersService) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params, status *enums.OrderStatus) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}
func (stubOrdersService) GetMine(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}
func (stubOrdersService) CancelMine(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}
func (stubOrdersService) ListAll(ctx context.Context, params pagination.Params, filters orders.ListFilters) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}
func (stubOrdersService) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}
func (stubOrdersService) UpdateStatus(ctx context.Context, input orders.UpdateStatusInput) (*models.Order, error) {
	panic("unimplemented")
}
func (stubOrdersService) SetTracking(ctx context.Context, input orders.SetTrackingInput) (*models.Order, error) {
	panic("unimplemented")
}

type stubAddressesService struct{}

func (stubAddressesService) List(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	return nil, nil
}
func (stubAddressesService) Get(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error) {
	panic("unimplemented")
}
func (stubAddressesService) Create(ctx context.Context, userID uuid.UUID, input addresses.Input) (*models.Address, error) {
	panic("unimplemented")
}
func (stubAddressesService) Update(ctx context.Context, userID, addressID uuid.UUID, input addresses.Input) (*models.Address, error) {
	panic("unimplemented")
}
func (stubAddressesService) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	panic("unimplemented")
}
func (stubAddressesService) SetDefault(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error) {
	panic("unimplemented")
}

type stubWishlistService struct{}

func (stubWishlistService) List(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	return nil, nil
}
func (stubWishlistService) Add(ctx context.Context, userID, productID uuid.UUID) (*models.WishlistItem, error) {
	panic("unimplemented")
}
func (stubWishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	panic("unimplemented")
}

var _ session.AccessSessionChecker = stubSessions{}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "routing-test-secret",
			Issuer:            "luxeleather-test",
			ExpirationMinutes: 15,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config:    cfg,
		Logger:    logg,
		DB:        stubPinger{},
		Redis:     (*pkgredis.Client)(nil),
		Sessions:  stubSessions{},
		Auth:      stubAuthService{},
		Catalog:   stubCatalogService{},
		Cart:      stubCartService{},
		Checkout:  stubCheckoutService{},
		Orders:    stubOrdersService{},
		Addresses: stubAddressesService{},
		Wishlist:  stubWishlistService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "ava@example.com",
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token failed: %v", err)
	}
	return token
}

func TestPublicCatalogNeedsNoToken(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public listing got %d", resp.Code)
	}
}

func TestCustomerGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestCustomerGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleUser))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	nonAdmin := httptest.NewRequest(http.MethodGet, "/api/admin/categories", nil)
	nonAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleUser))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, nonAdmin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/categories", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(testConfig())

	for _, path := range []string{"/health/live", "/ping"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", path, resp.Code)
		}
	}
}
