package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/luxeleather/storefront-backend/pkg/types"
)

// OrderItem freezes the product name, SKU, and unit price as they were when
// the order was placed. ProductID is nullable so catalog deletions never
// orphan history.
type OrderItem struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID              `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID        *uuid.UUID             `gorm:"column:product_id;type:uuid"`
	ProductName      string                 `gorm:"column:product_name;not null"`
	ProductSKU       string                 `gorm:"column:product_sku;not null"`
	VariantSelection types.VariantSelection `gorm:"column:variant_selection;type:jsonb;serializer:json"`
	Quantity         int                    `gorm:"column:quantity;not null"`
	UnitPrice        decimal.Decimal        `gorm:"column:unit_price;type:numeric(10,2);not null"`
	TotalPrice       decimal.Decimal        `gorm:"column:total_price;type:numeric(10,2);not null"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
}
