package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/luxeleather/storefront-backend/pkg/enums"
	"github.com/luxeleather/storefront-backend/pkg/types"
)

// Order is the immutable record created at checkout. Addresses are embedded
// by value so address-book edits never rewrite history.
type Order struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	OrderNumber     string               `gorm:"column:order_number;not null;uniqueIndex:idx_orders_order_number"`
	Status          enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus   enums.PaymentStatus  `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	PaymentMethod   *string              `gorm:"column:payment_method"`
	Subtotal        decimal.Decimal      `gorm:"column:subtotal;type:numeric(10,2);not null"`
	TaxAmount       decimal.Decimal      `gorm:"column:tax_amount;type:numeric(10,2);not null;default:0"`
	ShippingAmount  decimal.Decimal      `gorm:"column:shipping_amount;type:numeric(10,2);not null;default:0"`
	DiscountAmount  decimal.Decimal      `gorm:"column:discount_amount;type:numeric(10,2);not null;default:0"`
	TotalAmount     decimal.Decimal      `gorm:"column:total_amount;type:numeric(10,2);not null"`
	ShippingAddress types.OrderAddress   `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	BillingAddress  types.OrderAddress   `gorm:"column:billing_address;type:jsonb;serializer:json"`
	Notes           *string              `gorm:"column:notes"`
	TrackingNumber  *string              `gorm:"column:tracking_number"`
	Carrier         *string              `gorm:"column:carrier"`
	ShippedAt       *time.Time           `gorm:"column:shipped_at"`
	DeliveredAt     *time.Time           `gorm:"column:delivered_at"`
	Items           []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusHistory   []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
