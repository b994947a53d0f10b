package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/luxeleather/storefront-backend/pkg/db"
	"github.com/luxeleather/storefront-backend/pkg/db/models"
	pkgerrors "github.com/luxeleather/storefront-backend/pkg/errors"
	"github.com/luxeleather/storefront-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines cart operations for the authenticated customer.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*View, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*View, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*View, error)
	Clear(ctx context.Context, userID uuid.UUID) (*View, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a cart service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	cart, err := s.getOrCreateCart(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart.ID)
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var cartID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := s.getOrCreateCart(ctx, repo, userID)
		if err != nil {
			return err
		}
		cartID = cart.ID

		product, err := s.loadSellableProduct(ctx, repo, input.ProductID)
		if err != nil {
			return err
		}

		selection := input.VariantSelection.Normalize()
		unitPrice, err := priceSelection(product, selection)
		if err != nil {
			return err
		}
		variantKey := selection.Key()

		existing, err := repo.FindItemByIdentity(ctx, cart.ID, product.ID, variantKey)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find cart item")
		}

		if existing != nil {
			return s.incrementItem(ctx, repo, product, existing, input.Quantity, variantKey)
		}

		if err := checkStock(product, variantKey, input.Quantity); err != nil {
			return err
		}
		item := &models.CartItem{
			CartID:           cart.ID,
			ProductID:        product.ID,
			VariantKey:       variantKey,
			VariantSelection: selection,
			Quantity:         input.Quantity,
			UnitPrice:        unitPrice,
		}
		if err := repo.CreateItem(ctx, item); err != nil {
			// A concurrent add for the same line loses the insert race;
			// fold it into the surviving row instead.
			if db.IsUniqueViolation(err, "idx_cart_items_identity") {
				existing, findErr := repo.FindItemByIdentity(ctx, cart.ID, product.ID, variantKey)
				if findErr != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "reload cart item")
				}
				return s.incrementItem(ctx, repo, product, existing, input.Quantity, variantKey)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cartID)
}

func (s *service) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	var cartID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, cart, err := s.loadOwnedItem(ctx, repo, userID, itemID)
		if err != nil {
			return err
		}
		cartID = cart.ID

		// Zero and below empties the line rather than erroring.
		if quantity <= 0 {
			if err := repo.DeleteItem(ctx, item.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
			}
			return nil
		}

		product, err := s.loadSellableProduct(ctx, repo, item.ProductID)
		if err != nil {
			return err
		}
		if err := checkStock(product, item.VariantKey, quantity); err != nil {
			return err
		}
		if err := repo.UpdateItem(ctx, item.ID, map[string]any{"quantity": quantity}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cartID)
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	var cartID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, cart, err := s.loadOwnedItem(ctx, repo, userID, itemID)
		if err != nil {
			return err
		}
		cartID = cart.ID

		if err := repo.DeleteItem(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cartID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var cartID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := s.getOrCreateCart(ctx, repo, userID)
		if err != nil {
			return err
		}
		cartID = cart.ID

		if err := repo.DeleteItemsByCart(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cartID)
}

func (s *service) incrementItem(ctx context.Context, repo Repository, product *models.Product, item *models.CartItem, delta int, variantKey string) error {
	next := item.Quantity + delta
	if err := checkStock(product, variantKey, next); err != nil {
		return err
	}
	if err := repo.UpdateItem(ctx, item.ID, map[string]any{"quantity": next}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment cart item")
	}
	return nil
}

func (s *service) getOrCreateCart(ctx context.Context, repo Repository, userID uuid.UUID) (*models.Cart, error) {
	cart, err := repo.FindCartByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find cart")
	}

	created, err := repo.CreateCart(ctx, &models.Cart{UserID: userID})
	if err != nil {
		// Two first requests can race the insert; the unique index on
		// user_id picks the winner and we read it back.
		if db.IsUniqueViolation(err, "") {
			cart, findErr := repo.FindCartByUser(ctx, userID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "reload cart")
			}
			return cart, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return created, nil
}

func (s *service) loadOwnedItem(ctx context.Context, repo Repository, userID, itemID uuid.UUID) (*models.CartItem, *models.Cart, error) {
	cart, err := repo.FindCartByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find cart")
	}

	item, err := repo.FindItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find cart item")
	}
	if item.CartID != cart.ID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return item, cart, nil
}

func (s *service) loadSellableProduct(ctx context.Context, repo Repository, productID uuid.UUID) (*models.Product, error) {
	product, err := repo.FindProductForSale(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	// Inactive listings read as missing so retired SKUs cannot be added.
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) view(ctx context.Context, cartID uuid.UUID) (*View, error) {
	cart, err := s.repo.FindCartWithItems(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return buildView(cart), nil
}

// priceSelection resolves the unit price for a selection: the base price
// plus the adjustment of every chosen option. Unknown options are rejected
// so stale clients cannot invent variants.
func priceSelection(product *models.Product, selection types.VariantSelection) (decimal.Decimal, error) {
	price := product.Price
	for name, value := range selection {
		found := false
		for _, variant := range product.Variants {
			if variant.Name == name && variant.Value == value {
				price = price.Add(variant.PriceAdjustment)
				found = true
				break
			}
		}
		if !found {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("unknown variant option %s=%s", name, value))
		}
	}
	return price, nil
}

// checkStock enforces available quantity for the inventory row matching the
// variant key, falling back to the base row when the combination has no
// dedicated record. Products without inventory rows are not tracked.
func checkStock(product *models.Product, variantKey string, quantity int) error {
	record := findInventory(product, variantKey)
	if record == nil && variantKey != "" {
		record = findInventory(product, "")
	}
	if record == nil || !record.TrackInventory {
		return nil
	}
	if quantity > record.Available() {
		return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
			WithDetails(map[string]any{"available": record.Available()})
	}
	return nil
}

func findInventory(product *models.Product, variantKey string) *models.InventoryRecord {
	for i := range product.Inventory {
		if product.Inventory[i].VariantKey == variantKey {
			return &product.Inventory[i]
		}
	}
	return nil
}
