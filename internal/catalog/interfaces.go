package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luxeleather/storefront-backend/pkg/db/models"
	"github.com/luxeleather/storefront-backend/pkg/pagination"
)

// Repository defines persistence operations for the catalog tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ListProducts(ctx context.Context, params pagination.Params, filters ProductFilters) (*ProductList, error)
	FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	FindProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, updates map[string]any) error

	ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error)
	FindCategory(ctx context.Context, categoryID uuid.UUID) (*models.Category, error)
	FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error)
	UpdateCategory(ctx context.Context, categoryID uuid.UUID, updates map[string]any) error

	ReplaceImages(ctx context.Context, productID uuid.UUID, images []models.ProductImage) error
	ReplaceVariants(ctx context.Context, productID uuid.UUID, variants []models.ProductVariant) error
	UpsertInventory(ctx context.Context, record *models.InventoryRecord) error
	FindInventory(ctx context.Context, productID uuid.UUID, variantKey string) (*models.InventoryRecord, error)
}
