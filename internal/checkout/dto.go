package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/luxeleather/storefront-backend/pkg/types"
)

// Input carries the checkout payload. A nil billing address means "same as
// shipping".
type Input struct {
	ShippingAddress types.OrderAddress  `json:"shipping_address" validate:"required"`
	BillingAddress  *types.OrderAddress `json:"billing_address"`
	PaymentMethod   *string             `json:"payment_method"`
	Notes           *string             `json:"notes"`
}

// Totals is the priced breakdown of a cart before or after placement.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	ShippingAmount decimal.Decimal `json:"shipping_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}
