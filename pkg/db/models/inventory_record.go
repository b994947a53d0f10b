package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/luxeleather/storefront-backend/pkg/types"
)

// InventoryRecord tracks stock for one variant combination of a product.
// VariantKey is the canonical encoding of VariantSelection; the base product
// row carries an empty key.
type InventoryRecord struct {
	ID                uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID         uuid.UUID              `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_inventory_product_variant"`
	VariantKey        string                 `gorm:"column:variant_key;not null;default:'';uniqueIndex:idx_inventory_product_variant"`
	VariantSelection  types.VariantSelection `gorm:"column:variant_selection;type:jsonb;serializer:json"`
	Quantity          int                    `gorm:"column:quantity;not null;default:0"`
	ReservedQuantity  int                    `gorm:"column:reserved_quantity;not null;default:0"`
	LowStockThreshold int                    `gorm:"column:low_stock_threshold;not null;default:5"`
	TrackInventory    bool                   `gorm:"column:track_inventory;not null;default:true"`
	CreatedAt         time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the historical table name.
func (InventoryRecord) TableName() string {
	return "inventories"
}

// Available returns quantity not held back by reservations.
func (r InventoryRecord) Available() int {
	available := r.Quantity - r.ReservedQuantity
	if available < 0 {
		return 0
	}
	return available
}
