package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luxeleather/storefront-backend/pkg/db/models"
	"github.com/luxeleather/storefront-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds the GORM-backed catalog repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListProducts(ctx context.Context, params pagination.Params, filters ProductFilters) (*ProductList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.Product{}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Inventory").
		Preload("Category")

	if !filters.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		// lower() keeps the match case-insensitive on every dialect.
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"lower(name) LIKE ? OR lower(coalesce(description, '')) LIKE ? OR lower(coalesce(material, '')) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Product
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	page, hasMore := pagination.Trim(rows, params.Limit)
	list := &ProductList{Products: page, HasMore: hasMore}
	if hasMore && len(page) > 0 {
		last := page[len(page)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func (r *repository) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	return r.findProduct(ctx, "id = ?", productID)
}

func (r *repository) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.findProduct(ctx, "slug = ?", slug)
}

func (r *repository) findProduct(ctx context.Context, condition string, value any) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Inventory").
		Preload("Category").
		Where(condition, value).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	err := r.db.WithContext(ctx).
		Omit("Images", "Variants", "Inventory", "Category").
		Create(product).Error
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) UpdateProduct(ctx context.Context, productID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(updates).Error
}

func (r *repository) ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	query := r.db.WithContext(ctx).Model(&models.Category{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var categories []models.Category
	err := query.Order("sort_order ASC, name ASC").Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) FindCategory(ctx context.Context, categoryID uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Where("id = ?", categoryID).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (r *repository) UpdateCategory(ctx context.Context, categoryID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", categoryID).
		Updates(updates).Error
}

func (r *repository) ReplaceImages(ctx context.Context, productID uuid.UUID, images []models.ProductImage) error {
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.ProductImage{}).Error; err != nil {
		return err
	}
	if len(images) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&images).Error
}

func (r *repository) ReplaceVariants(ctx context.Context, productID uuid.UUID, variants []models.ProductVariant) error {
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.ProductVariant{}).Error; err != nil {
		return err
	}
	if len(variants) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&variants).Error
}

func (r *repository) UpsertInventory(ctx context.Context, record *models.InventoryRecord) error {
	existing, err := r.FindInventory(ctx, record.ProductID, record.VariantKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.WithContext(ctx).Create(record).Error
		}
		return err
	}

	record.ID = existing.ID
	return r.db.WithContext(ctx).
		Model(&models.InventoryRecord{}).
		Where("id = ?", existing.ID).
		Updates(map[string]any{
			"variant_selection":   record.VariantSelection,
			"quantity":            record.Quantity,
			"low_stock_threshold": record.LowStockThreshold,
			"track_inventory":     record.TrackInventory,
		}).Error
}

func (r *repository) FindInventory(ctx context.Context, productID uuid.UUID, variantKey string) (*models.InventoryRecord, error) {
	var record models.InventoryRecord
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND variant_key = ?", productID, variantKey).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}
