package domain

import "github.com/shopspring/decimal"

// Cart is a snapshot of the commerce platform's cart
type Cart struct {
	ID          string          `json:"id"`
	Lines       []LineItem      `json:"lines"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Total       decimal.Decimal `json:"total"`
	CheckoutURL string          `json:"checkout_url"`
}

// LineItem is one entry of a cart
type LineItem struct {
	ID            string          `json:"id"`
	VariantID     string          `json:"variant_id"`
	ProductTitle  string          `json:"product_title"`
	ProductHandle string          `json:"product_handle"`
	VariantTitle  string          `json:"variant_title"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Image         *Image          `json:"image,omitempty"`
}

// CartLine is the input for adding a variant to a cart
type CartLine struct {
	VariantID string `json:"variant_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=99"`
}

// ItemCount returns the total quantity across all lines
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}
