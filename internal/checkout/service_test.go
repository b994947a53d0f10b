package checkout

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/luxeleather/storefront-backend/internal/cart"
	"github.com/luxeleather/storefront-backend/internal/catalog"
	"github.com/luxeleather/storefront-backend/internal/orders"
	"github.com/luxeleather/storefront-backend/pkg/config"
	"github.com/luxeleather/storefront-backend/pkg/db/models"
	"github.com/luxeleather/storefront-backend/pkg/enums"
	pkgerrors "github.com/luxeleather/storefront-backend/pkg/errors"
	"github.com/luxeleather/storefront-backend/pkg/pagination"
	"github.com/luxeleather/storefront-backend/pkg/types"
)

type stubCheckoutCartRepo struct {
	cart     *models.Cart
	products map[uuid.UUID]*models.Product
	cleared  bool
}

func (s *stubCheckoutCartRepo) WithTx(tx *gorm.DB) cart.Repository { return s }

func (s *stubCheckoutCartRepo) FindCartByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if s.cart == nil || s.cart.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.cart
	copied.Items = nil
	return &copied, nil
}

func (s *stubCheckoutCartRepo) CreateCart(ctx context.Context, c *models.Cart) (*models.Cart, error) {
	panic("not implemented")
}

func (s *stubCheckoutCartRepo) FindCartWithItems(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	if s.cart == nil || s.cart.ID != cartID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.cart
	return &copied, nil
}

func (s *stubCheckoutCartRepo) FindItem(ctx context.Context, itemID uuid.UUID) (*models.CartItem, error) {
	panic("not implemented")
}

func (s *stubCheckoutCartRepo) FindItemByIdentity(ctx context.Context, cartID, productID uuid.UUID, variantKey string) (*models.CartItem, error) {
	panic("not implemented")
}

func (s *stubCheckoutCartRepo) CreateItem(ctx context.Context, item *models.CartItem) error {
	panic("not implemented")
}

func (s *stubCheckoutCartRepo) UpdateItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error {
	panic("not implemented")
}

func (s *stubCheckoutCartRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	panic("not implemented")
}

func (s *stubCheckoutCartRepo) DeleteItemsByCart(ctx context.Context, cartID uuid.UUID) error {
	s.cleared = true
	s.cart.Items = nil
	return nil
}

func (s *stubCheckoutCartRepo) FindProductForSale(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if product, ok := s.products[productID]; ok {
		copied := *product
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubInventoryRepo struct {
	records map[string]*models.InventoryRecord // product|key
}

func (s *stubInventoryRepo) WithTx(tx *gorm.DB) catalog.Repository { return s }

func (s *stubInventoryRepo) ListProducts(ctx context.Context, params pagination.Params, filters catalog.ProductFilters) (*catalog.ProductList, error) {
	panic("not implemented")
}

func (s *stubInventoryRepo) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	panic("not implemented")
}

func (s *stubInventoryRepo) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	panic("not implemented")
}

func (s *stubInventoryRepo) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	panic("not implemented")
}

func (s *stubInventoryRepo) UpdateProduct(ctx context.Context, productID uuid.UUID, updates map[string]any) error {
	panic("not implemented")
}

func (s *stubInventoryRepo) ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	panic("not implemented")
}

func (s *stubInventoryRepo) FindCategory(ctx context.Context, categoryID uuid.UUID) (*models.Category, error) {
	panic("not implemented")
}

func (s *stubInventoryRepo) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	panic("not implemented")
}

func (s *stubInventoryRepo) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	panic("not implemented")
}

func (s *stubInventoryRepo) UpdateCategory(ctx context.Context, categoryID uuid.UUID, updates map[string]any) error {
	panic("not implemented")
}

func (s *stubInventoryRepo) ReplaceImages(ctx context.Context, productID uuid.UUID, images []models.ProductImage) error {
	panic("not implemented")
}

func (s *stubInventoryRepo) ReplaceVariants(ctx context.Context, productID uuid.UUID, variants []models.ProductVariant) error {
	panic("not implemented")
}

func (s *stubInventoryRepo) UpsertInventory(ctx context.Context, record *models.InventoryRecord) error {
	panic("not implemented")
}

func (s *stubInventoryRepo) FindInventory(ctx context.Context, productID uuid.UUID, variantKey string) (*models.InventoryRecord, error) {
	if record, ok := s.records[productID.String()+"|"+variantKey]; ok {
		copied := *record
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubCheckoutOrdersRepo struct {
	createAttempts int
	failFirst      bool
	order          *models.Order
	items          []models.OrderItem
	history        []models.OrderStatusHistory
}

func (s *stubCheckoutOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubCheckoutOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	s.createAttempts++
	if s.failFirst && s.createAttempts == 1 {
		return nil, errors.New(`duplicate key value violates unique constraint "idx_orders_order_number"`)
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	copied := *order
	s.order = &copied
	return order, nil
}

func (s *stubCheckoutOrdersRepo) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	s.items = append(s.items, items...)
	return nil
}

func (s *stubCheckoutOrdersRepo) AppendStatusHistory(ctx context.Context, entry *models.OrderStatusHistory) error {
	s.history = append(s.history, *entry)
	return nil
}

func (s *stubCheckoutOrdersRepo) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubCheckoutOrdersRepo) FindOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubCheckoutOrdersRepo) ListOrders(ctx context.Context, params pagination.Params, filters orders.ListFilters) (*orders.OrderList, error) {
	panic("not implemented")
}

func (s *stubCheckoutOrdersRepo) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	panic("not implemented")
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func checkoutFixture() (*stubCheckoutCartRepo, *stubInventoryRepo, *stubCheckoutOrdersRepo, uuid.UUID) {
	userID := uuid.New()
	product := &models.Product{
		ID:       uuid.New(),
		Name:     "Heritage Messenger Bag",
		SKU:      "LXL-MSG-001",
		Price:    decimal.RequireFromString("100.00"),
		IsActive: true,
	}
	cartID := uuid.New()

	carts := &stubCheckoutCartRepo{
		cart: &models.Cart{
			ID:     cartID,
			UserID: userID,
			Items: []models.CartItem{{
				ID:        uuid.New(),
				CartID:    cartID,
				ProductID: product.ID,
				Quantity:  2,
				UnitPrice: decimal.RequireFromString("100.00"),
			}},
		},
		products: map[uuid.UUID]*models.Product{product.ID: product},
	}
	inventory := &stubInventoryRepo{records: map[string]*models.InventoryRecord{
		product.ID.String() + "|": {ProductID: product.ID, VariantKey: "", Quantity: 5, TrackInventory: true},
	}}
	ordersRepo := &stubCheckoutOrdersRepo{}
	return carts, inventory, ordersRepo, userID
}

func newTestService(t *testing.T, carts cart.Repository, catalogRepo catalog.Repository, ordersRepo orders.Repository) Service {
	t.Helper()
	svc, err := NewService(carts, catalogRepo, ordersRepo, stubTxRunner{}, config.CheckoutConfig{
		TaxRate:              "0.08",
		ShippingFlat:         "0",
		FreeShippingSubtotal: "0",
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func shippingAddress() types.OrderAddress {
	return types.OrderAddress{
		FirstName:    "Ava",
		LastName:     "Chen",
		AddressLine1: "100 Market St",
		City:         "San Francisco",
		State:        "CA",
		PostalCode:   "94105",
		Country:      "US",
	}
}

func TestPlaceOrderConvertsCart(t *testing.T) {
	carts, inventory, ordersRepo, userID := checkoutFixture()
	svc := newTestService(t, carts, inventory, ordersRepo)

	order, err := svc.PlaceOrder(context.Background(), userID, Input{ShippingAddress: shippingAddress()})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if !strings.HasPrefix(order.OrderNumber, "ORD-") {
		t.Fatalf("unexpected order number %q", order.OrderNumber)
	}
	if order.Status != enums.OrderStatusPending || order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("unexpected initial statuses %s/%s", order.Status, order.PaymentStatus)
	}
	if !order.Subtotal.Equal(decimal.RequireFromString("200.00")) {
		t.Fatalf("unexpected subtotal %s", order.Subtotal)
	}
	if !order.TaxAmount.Equal(decimal.RequireFromString("16.00")) {
		t.Fatalf("unexpected tax %s", order.TaxAmount)
	}
	if !order.TotalAmount.Equal(decimal.RequireFromString("216.00")) {
		t.Fatalf("unexpected total %s", order.TotalAmount)
	}
	// Billing defaults to shipping when omitted.
	if order.BillingAddress != order.ShippingAddress {
		t.Fatal("billing address should mirror shipping address")
	}

	if len(ordersRepo.items) != 1 {
		t.Fatalf("expected one order item, got %d", len(ordersRepo.items))
	}
	if ordersRepo.items[0].ProductName != "Heritage Messenger Bag" || ordersRepo.items[0].ProductSKU != "LXL-MSG-001" {
		t.Fatal("order item missing product snapshot")
	}
	if len(ordersRepo.history) != 1 || ordersRepo.history[0].Status != enums.OrderStatusPending {
		t.Fatal("expected a pending history row")
	}
	if !carts.cleared {
		t.Fatal("cart must be cleared after placement")
	}

	record := inventory.records[ordersRepo.items[0].ProductID.String()+"|"]
	if record.Quantity != 5 {
		t.Fatalf("checkout must not touch stock, got quantity %d", record.Quantity)
	}
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	carts, inventory, ordersRepo, userID := checkoutFixture()
	carts.cart.Items = nil
	svc := newTestService(t, carts, inventory, ordersRepo)

	_, err := svc.PlaceOrder(context.Background(), userID, Input{ShippingAddress: shippingAddress()})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict for empty cart, got %v", err)
	}
}

func TestPlaceOrderRejectsInsufficientStock(t *testing.T) {
	carts, inventory, ordersRepo, userID := checkoutFixture()
	for _, record := range inventory.records {
		record.Quantity = 1
	}
	svc := newTestService(t, carts, inventory, ordersRepo)

	_, err := svc.PlaceOrder(context.Background(), userID, Input{ShippingAddress: shippingAddress()})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected stock conflict, got %v", err)
	}
	if carts.cleared {
		t.Fatal("cart must survive a failed checkout")
	}
}

func TestPlaceOrderCountsReservedStock(t *testing.T) {
	carts, inventory, ordersRepo, userID := checkoutFixture()
	for _, record := range inventory.records {
		record.Quantity = 5
		record.ReservedQuantity = 4
	}
	svc := newTestService(t, carts, inventory, ordersRepo)

	_, err := svc.PlaceOrder(context.Background(), userID, Input{ShippingAddress: shippingAddress()})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected stock conflict when reserved stock leaves too little, got %v", err)
	}
}

func TestPlaceOrderRejectsDeactivatedCartItem(t *testing.T) {
	carts, inventory, ordersRepo, userID := checkoutFixture()
	for _, product := range carts.products {
		product.IsActive = false
	}
	svc := newTestService(t, carts, inventory, ordersRepo)

	_, err := svc.PlaceOrder(context.Background(), userID, Input{ShippingAddress: shippingAddress()})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict for deactivated product, got %v", err)
	}
}

func TestPlaceOrderRetriesOrderNumberCollision(t *testing.T) {
	carts, inventory, ordersRepo, userID := checkoutFixture()
	ordersRepo.failFirst = true
	svc := newTestService(t, carts, inventory, ordersRepo)

	order, err := svc.PlaceOrder(context.Background(), userID, Input{ShippingAddress: shippingAddress()})
	if err != nil {
		t.Fatalf("PlaceOrder failed despite retry: %v", err)
	}
	if ordersRepo.createAttempts != 2 {
		t.Fatalf("expected 2 create attempts, got %d", ordersRepo.createAttempts)
	}
	if order.OrderNumber == "" {
		t.Fatal("order number missing after retry")
	}
}

func TestQuotePricesWithoutPlacing(t *testing.T) {
	carts, inventory, ordersRepo, userID := checkoutFixture()
	svc := newTestService(t, carts, inventory, ordersRepo)

	totals, err := svc.Quote(context.Background(), userID)
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	if !totals.TotalAmount.Equal(decimal.RequireFromString("216.00")) {
		t.Fatalf("unexpected quoted total %s", totals.TotalAmount)
	}
	if carts.cleared || ordersRepo.order != nil {
		t.Fatal("quote must not mutate state")
	}
}
