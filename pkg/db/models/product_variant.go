package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductVariant is one selectable option value, e.g. Name "Size", Value
// "M", Kind "size". PriceAdjustment is added to the base price when chosen.
type ProductVariant struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	Name            string          `gorm:"column:name;not null"`
	Value           string          `gorm:"column:value;not null"`
	Kind            string          `gorm:"column:kind;not null"`
	PriceAdjustment decimal.Decimal `gorm:"column:price_adjustment;type:numeric(10,2);not null;default:0"`
	SortOrder       int             `gorm:"column:sort_order;not null;default:0"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}
