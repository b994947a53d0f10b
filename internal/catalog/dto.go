package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/luxeleather/storefront-backend/pkg/db/models"
	"github.com/luxeleather/storefront-backend/pkg/types"
)

// ProductFilters narrows product listings. IncludeInactive is only honored
// on admin paths.
type ProductFilters struct {
	CategoryID      *uuid.UUID
	Search          string
	FeaturedOnly    bool
	IncludeInactive bool
}

// ProductList is one page of products plus the cursor for the next page.
type ProductList struct {
	Products   []models.Product `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
	HasMore    bool             `json:"has_more"`
}

// CreateProductInput carries the admin payload for a new listing.
type CreateProductInput struct {
	CategoryID     *uuid.UUID       `json:"category_id"`
	Name           string           `json:"name" validate:"required"`
	Slug           string           `json:"slug" validate:"required"`
	SKU            string           `json:"sku" validate:"required"`
	Description    *string          `json:"description"`
	Price          decimal.Decimal  `json:"price" validate:"required"`
	ComparePrice   *decimal.Decimal `json:"compare_price"`
	Material       *string          `json:"material"`
	Features       []string         `json:"features"`
	Tags           []string         `json:"tags"`
	IsActive       *bool            `json:"is_active"`
	IsFeatured     *bool            `json:"is_featured"`
	SEOTitle       *string          `json:"seo_title"`
	SEODescription *string          `json:"seo_description"`
}

// UpdateProductInput applies a partial admin update. Nil fields are left
// untouched.
type UpdateProductInput struct {
	CategoryID     *uuid.UUID       `json:"category_id"`
	Name           *string          `json:"name"`
	Slug           *string          `json:"slug"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	ComparePrice   *decimal.Decimal `json:"compare_price"`
	Material       *string          `json:"material"`
	Features       []string         `json:"features"`
	Tags           []string         `json:"tags"`
	IsActive       *bool            `json:"is_active"`
	IsFeatured     *bool            `json:"is_featured"`
	SEOTitle       *string          `json:"seo_title"`
	SEODescription *string          `json:"seo_description"`
}

// CategoryInput carries the admin payload for creating or updating a
// category.
type CategoryInput struct {
	Name        string     `json:"name" validate:"required"`
	Slug        string     `json:"slug" validate:"required"`
	Description *string    `json:"description"`
	ImageURL    *string    `json:"image_url"`
	ParentID    *uuid.UUID `json:"parent_id"`
	SortOrder   int        `json:"sort_order"`
	IsActive    *bool      `json:"is_active"`
}

// ImageInput is one gallery entry in a full-replace update.
type ImageInput struct {
	URL       string  `json:"url" validate:"required,url"`
	AltText   *string `json:"alt_text"`
	SortOrder int     `json:"sort_order"`
	IsPrimary bool    `json:"is_primary"`
}

// VariantInput is one option value in a full-replace update.
type VariantInput struct {
	Name            string          `json:"name" validate:"required"`
	Value           string          `json:"value" validate:"required"`
	Kind            string          `json:"kind" validate:"required"`
	PriceAdjustment decimal.Decimal `json:"price_adjustment"`
	SortOrder       int             `json:"sort_order"`
}

// SetInventoryInput pins the stock level for one variant combination.
type SetInventoryInput struct {
	ProductID         uuid.UUID              `json:"-"`
	VariantSelection  types.VariantSelection `json:"variant_selection"`
	Quantity          int                    `json:"quantity" validate:"gte=0"`
	LowStockThreshold *int                   `json:"low_stock_threshold"`
	TrackInventory    *bool                  `json:"track_inventory"`
}
