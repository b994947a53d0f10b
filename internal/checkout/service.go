package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/luxeleather/storefront-backend/internal/cart"
	"github.com/luxeleather/storefront-backend/internal/catalog"
	"github.com/luxeleather/storefront-backend/internal/orders"
	"github.com/luxeleather/storefront-backend/pkg/config"
	"github.com/luxeleather/storefront-backend/pkg/db"
	"github.com/luxeleather/storefront-backend/pkg/db/models"
	"github.com/luxeleather/storefront-backend/pkg/enums"
	pkgerrors "github.com/luxeleather/storefront-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service converts a cart into an order.
type Service interface {
	Quote(ctx context.Context, userID uuid.UUID) (*Totals, error)
	PlaceOrder(ctx context.Context, userID uuid.UUID, input Input) (*models.Order, error)
}

type service struct {
	carts   cart.Repository
	catalog catalog.Repository
	orders  orders.Repository
	tx      txRunner
	cfg     config.CheckoutConfig
}

// NewService builds a checkout service with the required dependencies.
func NewService(carts cart.Repository, catalogRepo catalog.Repository, ordersRepo orders.Repository, tx txRunner, cfg config.CheckoutConfig) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		carts:   carts,
		catalog: catalogRepo,
		orders:  ordersRepo,
		tx:      tx,
		cfg:     cfg,
	}, nil
}

// Quote prices the current cart without placing an order.
func (s *service) Quote(ctx context.Context, userID uuid.UUID) (*Totals, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	loaded, err := s.loadCheckoutCart(ctx, s.carts, userID)
	if err != nil {
		return nil, err
	}
	totals := s.price(loaded)
	return &totals, nil
}

// PlaceOrder atomically converts the cart into an order: stock is
// re-validated, the order plus its items and first history row are written,
// and the cart is emptied. All or nothing. Stock is checked, never
// decremented or reserved.
func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, input Input) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ShippingAddress.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address required")
	}
	billing := input.ShippingAddress
	if input.BillingAddress != nil && !input.BillingAddress.IsZero() {
		billing = *input.BillingAddress
	}

	var placed *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.carts.WithTx(tx)
		catalogRepo := s.catalog.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)

		loaded, err := s.loadCheckoutCart(ctx, cartRepo, userID)
		if err != nil {
			return err
		}

		items, err := s.buildOrderItems(ctx, cartRepo, catalogRepo, loaded.Items)
		if err != nil {
			return err
		}
		totals := s.price(loaded)

		order, err := s.createNumberedOrder(ctx, orderRepo, &models.Order{
			UserID:          userID,
			Status:          enums.OrderStatusPending,
			PaymentStatus:   enums.PaymentStatusPending,
			PaymentMethod:   input.PaymentMethod,
			Subtotal:        totals.Subtotal,
			TaxAmount:       totals.TaxAmount,
			ShippingAmount:  totals.ShippingAmount,
			DiscountAmount:  totals.DiscountAmount,
			TotalAmount:     totals.TotalAmount,
			ShippingAddress: input.ShippingAddress,
			BillingAddress:  billing,
			Notes:           input.Notes,
		})
		if err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := orderRepo.CreateOrderItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}
		if err := orderRepo.AppendStatusHistory(ctx, &models.OrderStatusHistory{
			OrderID: order.ID,
			Status:  enums.OrderStatusPending,
			Note:    "order placed",
			ActorID: &userID,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
		}
		if err := cartRepo.DeleteItemsByCart(ctx, loaded.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}

		order.Items = items
		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

func (s *service) loadCheckoutCart(ctx context.Context, repo cart.Repository, userID uuid.UUID) (*models.Cart, error) {
	record, err := repo.FindCartByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find cart")
	}

	loaded, err := repo.FindCartWithItems(ctx, record.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(loaded.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}
	return loaded, nil
}

// buildOrderItems re-validates each cart line against the live catalog and
// freezes the product snapshots.
func (s *service) buildOrderItems(ctx context.Context, cartRepo cart.Repository, catalogRepo catalog.Repository, lines []models.CartItem) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, err := cartRepo.FindProductForSale(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "a cart item is no longer available")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "a cart item is no longer available").
				WithDetails(map[string]any{"product_id": product.ID})
		}

		if err := s.checkStock(ctx, catalogRepo, product, line); err != nil {
			return nil, err
		}

		productID := line.ProductID
		items = append(items, models.OrderItem{
			ProductID:        &productID,
			ProductName:      product.Name,
			ProductSKU:       product.SKU,
			VariantSelection: line.VariantSelection,
			Quantity:         line.Quantity,
			UnitPrice:        line.UnitPrice,
			TotalPrice:       line.LineTotal(),
		})
	}
	return items, nil
}

// checkStock verifies availability against the tracked inventory row. It is
// a pure read: nothing is reserved or decremented at checkout.
func (s *service) checkStock(ctx context.Context, catalogRepo catalog.Repository, product *models.Product, line models.CartItem) error {
	key := line.VariantKey
	record, err := catalogRepo.FindInventory(ctx, product.ID, key)
	if errors.Is(err, gorm.ErrRecordNotFound) && key != "" {
		key = ""
		record, err = catalogRepo.FindInventory(ctx, product.ID, key)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
	}
	if !record.TrackInventory {
		return nil
	}

	if record.Available() < line.Quantity {
		return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
			WithDetails(map[string]any{
				"product_id": product.ID,
				"product":    product.Name,
				"requested":  line.Quantity,
				"available":  record.Available(),
			})
	}
	return nil
}

func (s *service) createNumberedOrder(ctx context.Context, repo orders.Repository, order *models.Order) (*models.Order, error) {
	for attempt := 0; attempt < 3; attempt++ {
		number, err := orders.GenerateOrderNumber(time.Now())
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order number")
		}
		order.OrderNumber = number

		created, err := repo.CreateOrder(ctx, order)
		if err == nil {
			return created, nil
		}
		if !db.IsUniqueViolation(err, "idx_orders_order_number") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not allocate order number")
}

func (s *service) price(loaded *models.Cart) Totals {
	totals := Totals{
		Subtotal:       decimal.Zero,
		DiscountAmount: decimal.Zero,
	}
	for _, line := range loaded.Items {
		totals.Subtotal = totals.Subtotal.Add(line.LineTotal())
	}

	totals.TaxAmount = totals.Subtotal.Mul(s.cfg.TaxRateDecimal()).Round(2)
	totals.ShippingAmount = s.cfg.ShippingFlatDecimal()
	if threshold := s.cfg.FreeShippingSubtotalDecimal(); threshold.IsPositive() && totals.Subtotal.GreaterThanOrEqual(threshold) {
		totals.ShippingAmount = decimal.Zero
	}

	totals.TotalAmount = totals.Subtotal.
		Add(totals.TaxAmount).
		Add(totals.ShippingAmount).
		Sub(totals.DiscountAmount)
	return totals
}
