package types

// OrderAddress is the by-value copy of an address embedded on an order at
// placement time. Later edits to the customer's address book never touch it.
// It persists as JSONB via the GORM json serializer.
type OrderAddress struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Company      string `json:"company,omitempty"`
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	Phone        string `json:"phone,omitempty"`
}

// IsZero reports whether no field has been populated.
func (a OrderAddress) IsZero() bool {
	return a == OrderAddress{}
}
