package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/luxeleather/storefront-backend/pkg/types"
)

// CartItem is one line in a cart. UnitPrice snapshots the product price
// (base plus variant adjustments) at the moment the line was added; later
// catalog price changes do not touch it. The unique index over (cart_id,
// product_id, variant_key) is what makes duplicate adds collapse into a
// quantity increment.
type CartItem struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID           uuid.UUID              `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_items_identity"`
	ProductID        uuid.UUID              `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_cart_items_identity"`
	VariantKey       string                 `gorm:"column:variant_key;not null;default:'';uniqueIndex:idx_cart_items_identity"`
	VariantSelection types.VariantSelection `gorm:"column:variant_selection;type:jsonb;serializer:json"`
	Quantity         int                    `gorm:"column:quantity;not null"`
	UnitPrice        decimal.Decimal        `gorm:"column:unit_price;type:numeric(10,2);not null"`
	Product          *Product               `gorm:"foreignKey:ProductID"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// LineTotal is unit price times quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
