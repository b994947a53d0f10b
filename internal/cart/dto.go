package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/luxeleather/storefront-backend/pkg/db/models"
	"github.com/luxeleather/storefront-backend/pkg/types"
)

// AddItemInput adds a product (optionally with variant choices) to a cart.
type AddItemInput struct {
	ProductID        uuid.UUID              `json:"product_id" validate:"required"`
	Quantity         int                    `json:"quantity" validate:"required,gt=0"`
	VariantSelection types.VariantSelection `json:"variant_selection"`
}

// Summary aggregates cart totals for display.
type Summary struct {
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// View is the cart plus its computed summary.
type View struct {
	Cart    models.Cart `json:"cart"`
	Summary Summary     `json:"summary"`
}

func buildView(cart *models.Cart) *View {
	view := &View{Cart: *cart, Summary: Summary{Subtotal: decimal.Zero}}
	for _, item := range cart.Items {
		view.Summary.ItemCount += item.Quantity
		view.Summary.Subtotal = view.Summary.Subtotal.Add(item.LineTotal())
	}
	return view
}
