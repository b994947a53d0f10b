package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luxeleather/storefront-backend/pkg/db/models"
)

// Repository defines persistence operations for carts and their lines. The
// product lookup lives here too so every cart mutation can price and
// stock-check inside the same transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindCartByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	CreateCart(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	FindCartWithItems(ctx context.Context, cartID uuid.UUID) (*models.Cart, error)
	FindItem(ctx context.Context, itemID uuid.UUID) (*models.CartItem, error)
	FindItemByIdentity(ctx context.Context, cartID, productID uuid.UUID, variantKey string) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	UpdateItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	DeleteItemsByCart(ctx context.Context, cartID uuid.UUID) error
	FindProductForSale(ctx context.Context, productID uuid.UUID) (*models.Product, error)
}
