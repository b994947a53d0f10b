package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products for browsing. ParentID supports one level of
// nesting in the admin tree.
type Category struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string     `gorm:"column:name;not null"`
	Slug        string     `gorm:"column:slug;not null;uniqueIndex"`
	Description *string    `gorm:"column:description"`
	ImageURL    *string    `gorm:"column:image_url"`
	ParentID    *uuid.UUID `gorm:"column:parent_id;type:uuid"`
	SortOrder   int        `gorm:"column:sort_order;not null;default:0"`
	IsActive    bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
