package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/luxeleather/storefront-backend/pkg/enums"
)

// OrderStatusHistory is the append-only audit trail of an order's lifecycle.
// Rows are never updated or deleted.
type OrderStatusHistory struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	Status    enums.OrderStatus `gorm:"column:status;type:text;not null"`
	Note      string            `gorm:"column:note;not null"`
	ActorID   *uuid.UUID        `gorm:"column:actor_id;type:uuid"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the plural consistent with the rest of the schema.
func (OrderStatusHistory) TableName() string {
	return "order_status_histories"
}
