package orders

import (
	"github.com/google/uuid"

	"github.com/luxeleather/storefront-backend/pkg/db/models"
	"github.com/luxeleather/storefront-backend/pkg/enums"
)

// ListFilters narrows order listings. A nil field means no filter; UserID is
// nil only for admin listings that span all customers.
type ListFilters struct {
	UserID        *uuid.UUID
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
}

// OrderList is one page of orders plus the cursor for the next page.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}

// UpdateStatusInput carries an admin lifecycle change.
type UpdateStatusInput struct {
	OrderID uuid.UUID
	Status  enums.OrderStatus
	Note    string
	ActorID uuid.UUID
}

// SetTrackingInput attaches shipment tracking details to an order.
type SetTrackingInput struct {
	OrderID        uuid.UUID
	TrackingNumber string
	Carrier        string
	ActorID        uuid.UUID
}
