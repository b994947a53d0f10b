package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/luxeleather/storefront-backend/pkg/enums"
)

// Address is a saved address-book entry. At most one row per (user, kind)
// carries IsDefault.
type Address struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Kind         enums.AddressKind `gorm:"column:kind;type:text;not null;default:'shipping'"`
	FirstName    string            `gorm:"column:first_name;not null"`
	LastName     string            `gorm:"column:last_name;not null"`
	Company      *string           `gorm:"column:company"`
	AddressLine1 string            `gorm:"column:address_line_1;not null"`
	AddressLine2 *string           `gorm:"column:address_line_2"`
	City         string            `gorm:"column:city;not null"`
	State        string            `gorm:"column:state;not null"`
	PostalCode   string            `gorm:"column:postal_code;not null"`
	Country      string            `gorm:"column:country;not null;default:'US'"`
	Phone        *string           `gorm:"column:phone"`
	IsDefault    bool              `gorm:"column:is_default;not null;default:false"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
