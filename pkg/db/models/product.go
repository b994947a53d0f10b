package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product represents a storefront listing. Prices live in numeric(10,2)
// columns and are never stored as floats.
type Product struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID     *uuid.UUID        `gorm:"column:category_id;type:uuid"`
	Name           string            `gorm:"column:name;not null"`
	Slug           string            `gorm:"column:slug;not null;uniqueIndex"`
	SKU            string            `gorm:"column:sku;not null;uniqueIndex"`
	Description    *string           `gorm:"column:description"`
	Price          decimal.Decimal   `gorm:"column:price;type:numeric(10,2);not null"`
	ComparePrice   *decimal.Decimal  `gorm:"column:compare_price;type:numeric(10,2)"`
	Material       *string           `gorm:"column:material"`
	Features       pq.StringArray    `gorm:"column:features;type:text[];not null;default:ARRAY[]::text[]"`
	Tags           pq.StringArray    `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]"`
	IsActive       bool              `gorm:"column:is_active;not null;default:true"`
	IsFeatured     bool              `gorm:"column:is_featured;not null;default:false"`
	SEOTitle       *string           `gorm:"column:seo_title"`
	SEODescription *string           `gorm:"column:seo_description"`
	Category       *Category         `gorm:"foreignKey:CategoryID"`
	Images         []ProductImage    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Variants       []ProductVariant  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Inventory      []InventoryRecord `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// InStock reports whether any inventory row holds sellable quantity.
func (p Product) InStock() bool {
	for _, record := range p.Inventory {
		if record.Quantity > 0 {
			return true
		}
	}
	return false
}
