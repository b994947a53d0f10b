package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/luxeleather/storefront-backend/pkg/config"
	"github.com/luxeleather/storefront-backend/pkg/db"
	"github.com/luxeleather/storefront-backend/pkg/db/models"
	pkgerrors "github.com/luxeleather/storefront-backend/pkg/errors"
	"github.com/luxeleather/storefront-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ListOptions are the storefront-facing listing knobs.
type ListOptions struct {
	CategorySlug string
	Search       string
}

// Service defines catalog reads for the storefront and catalog management
// for admins.
type Service interface {
	ListProducts(ctx context.Context, params pagination.Params, opts ListOptions) (*ProductList, error)
	FeaturedProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)

	AdminListProducts(ctx context.Context, params pagination.Params, filters ProductFilters) (*ProductList, error)
	AdminGetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*models.Product, error)
	DeactivateProduct(ctx context.Context, productID uuid.UUID) error
	AdminListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, categoryID uuid.UUID, input CategoryInput) (*models.Category, error)
	DeactivateCategory(ctx context.Context, categoryID uuid.UUID) error
	ReplaceImages(ctx context.Context, productID uuid.UUID, inputs []ImageInput) (*models.Product, error)
	ReplaceVariants(ctx context.Context, productID uuid.UUID, inputs []VariantInput) (*models.Product, error)
	SetInventory(ctx context.Context, input SetInventoryInput) (*models.InventoryRecord, error)
}

type service struct {
	repo Repository
	tx   txRunner
	cfg  config.CatalogConfig
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository, tx txRunner, cfg config.CatalogConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, cfg: cfg}, nil
}

func (s *service) ListProducts(ctx context.Context, params pagination.Params, opts ListOptions) (*ProductList, error) {
	filters := ProductFilters{Search: opts.Search}

	if slug := strings.TrimSpace(opts.CategorySlug); slug != "" {
		category, err := s.repo.FindCategoryBySlug(ctx, slug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find category")
		}
		filters.CategoryID = &category.ID
	}

	list, err := s.repo.ListProducts(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return list, nil
}

func (s *service) FeaturedProducts(ctx context.Context) ([]models.Product, error) {
	list, err := s.repo.ListProducts(ctx,
		pagination.Params{Limit: s.cfg.FeaturedLimit},
		ProductFilters{FeaturedOnly: true},
	)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list featured products")
	}
	return list.Products, nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.loadProduct(ctx, s.repo, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug required")
	}
	product, err := s.repo.FindProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

func (s *service) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug required")
	}
	category, err := s.repo.FindCategoryBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find category")
	}
	if !category.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return category, nil
}

func (s *service) AdminListProducts(ctx context.Context, params pagination.Params, filters ProductFilters) (*ProductList, error) {
	filters.IncludeInactive = true
	list, err := s.repo.ListProducts(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return list, nil
}

func (s *service) AdminGetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	return s.loadProduct(ctx, s.repo, productID)
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if input.Name == "" || input.Slug == "" || input.SKU == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, slug, and sku are required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	product := &models.Product{
		CategoryID:     input.CategoryID,
		Name:           input.Name,
		Slug:           slugify(input.Slug),
		SKU:            input.SKU,
		Description:    input.Description,
		Price:          input.Price,
		ComparePrice:   input.ComparePrice,
		Material:       input.Material,
		Features:       pq.StringArray(input.Features),
		Tags:           pq.StringArray(input.Tags),
		IsActive:       true,
		SEOTitle:       input.SEOTitle,
		SEODescription: input.SEODescription,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug or sku already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	if _, err := s.loadProduct(ctx, s.repo, productID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.CategoryID != nil {
		updates["category_id"] = *input.CategoryID
	}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Slug != nil {
		updates["slug"] = slugify(*input.Slug)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		updates["price"] = *input.Price
	}
	if input.ComparePrice != nil {
		updates["compare_price"] = *input.ComparePrice
	}
	if input.Material != nil {
		updates["material"] = *input.Material
	}
	if input.Features != nil {
		updates["features"] = pq.StringArray(input.Features)
	}
	if input.Tags != nil {
		updates["tags"] = pq.StringArray(input.Tags)
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.IsFeatured != nil {
		updates["is_featured"] = *input.IsFeatured
	}
	if input.SEOTitle != nil {
		updates["seo_title"] = *input.SEOTitle
	}
	if input.SEODescription != nil {
		updates["seo_description"] = *input.SEODescription
	}
	if len(updates) == 0 {
		return s.loadProduct(ctx, s.repo, productID)
	}

	if err := s.repo.UpdateProduct(ctx, productID, updates); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug or sku already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.loadProduct(ctx, s.repo, productID)
}

// DeactivateProduct hides a listing from the storefront. Rows are never
// deleted so order history keeps its references.
func (s *service) DeactivateProduct(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.loadProduct(ctx, s.repo, productID); err != nil {
		return err
	}
	if err := s.repo.UpdateProduct(ctx, productID, map[string]any{"is_active": false}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate product")
	}
	return nil
}

func (s *service) AdminListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

func (s *service) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	if input.Name == "" || input.Slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and slug are required")
	}

	category := &models.Category{
		Name:        input.Name,
		Slug:        slugify(input.Slug),
		Description: input.Description,
		ImageURL:    input.ImageURL,
		ParentID:    input.ParentID,
		SortOrder:   input.SortOrder,
		IsActive:    true,
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	created, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return created, nil
}

func (s *service) UpdateCategory(ctx context.Context, categoryID uuid.UUID, input CategoryInput) (*models.Category, error) {
	if _, err := s.loadCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	if input.Name == "" || input.Slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and slug are required")
	}

	updates := map[string]any{
		"name":        input.Name,
		"slug":        slugify(input.Slug),
		"description": input.Description,
		"image_url":   input.ImageURL,
		"parent_id":   input.ParentID,
		"sort_order":  input.SortOrder,
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if err := s.repo.UpdateCategory(ctx, categoryID, updates); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	return s.loadCategory(ctx, categoryID)
}

func (s *service) DeactivateCategory(ctx context.Context, categoryID uuid.UUID) error {
	if _, err := s.loadCategory(ctx, categoryID); err != nil {
		return err
	}
	if err := s.repo.UpdateCategory(ctx, categoryID, map[string]any{"is_active": false}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate category")
	}
	return nil
}

func (s *service) ReplaceImages(ctx context.Context, productID uuid.UUID, inputs []ImageInput) (*models.Product, error) {
	if _, err := s.loadProduct(ctx, s.repo, productID); err != nil {
		return nil, err
	}

	images := make([]models.ProductImage, 0, len(inputs))
	for _, in := range inputs {
		if in.URL == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "image url required")
		}
		images = append(images, models.ProductImage{
			ProductID: productID,
			URL:       in.URL,
			AltText:   in.AltText,
			SortOrder: in.SortOrder,
			IsPrimary: in.IsPrimary,
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).ReplaceImages(ctx, productID, images)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace images")
	}
	return s.loadProduct(ctx, s.repo, productID)
}

func (s *service) ReplaceVariants(ctx context.Context, productID uuid.UUID, inputs []VariantInput) (*models.Product, error) {
	if _, err := s.loadProduct(ctx, s.repo, productID); err != nil {
		return nil, err
	}

	variants := make([]models.ProductVariant, 0, len(inputs))
	for _, in := range inputs {
		if in.Name == "" || in.Value == "" || in.Kind == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant name, value, and kind are required")
		}
		variants = append(variants, models.ProductVariant{
			ProductID:       productID,
			Name:            in.Name,
			Value:           in.Value,
			Kind:            in.Kind,
			PriceAdjustment: in.PriceAdjustment,
			SortOrder:       in.SortOrder,
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).ReplaceVariants(ctx, productID, variants)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace variants")
	}
	return s.loadProduct(ctx, s.repo, productID)
}

func (s *service) SetInventory(ctx context.Context, input SetInventoryInput) (*models.InventoryRecord, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if _, err := s.loadProduct(ctx, s.repo, input.ProductID); err != nil {
		return nil, err
	}

	selection := input.VariantSelection.Normalize()
	record := &models.InventoryRecord{
		ProductID:        input.ProductID,
		VariantKey:       selection.Key(),
		VariantSelection: selection,
		Quantity:         input.Quantity,
		TrackInventory:   true,
	}
	if input.LowStockThreshold != nil {
		record.LowStockThreshold = *input.LowStockThreshold
	} else {
		record.LowStockThreshold = 5
	}
	if input.TrackInventory != nil {
		record.TrackInventory = *input.TrackInventory
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).UpsertInventory(ctx, record)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set inventory")
	}

	saved, err := s.repo.FindInventory(ctx, input.ProductID, record.VariantKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload inventory")
	}
	return saved, nil
}

func (s *service) loadProduct(ctx context.Context, repo Repository, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := repo.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) loadCategory(ctx context.Context, categoryID uuid.UUID) (*models.Category, error) {
	if categoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}
	category, err := s.repo.FindCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return category, nil
}

var slugReplacer = strings.NewReplacer(" ", "-", "_", "-")

// slugify lowercases and strips anything a URL path segment should not
// carry. Callers still provide the slug; this only normalizes it.
func slugify(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = slugReplacer.Replace(value)

	var b strings.Builder
	lastDash := false
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r == '-':
			if !lastDash && b.Len() > 0 {
				b.WriteRune(r)
			}
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
