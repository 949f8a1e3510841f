// Package commerce adapts the external commerce platform's cart API.
// Checkout, payment and inventory stay with the platform; the storefront only
// creates carts, adds lines and reads back the checkout URL.
package commerce

import (
	"context"
	"errors"

	"storefront/internal/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")
)

// Client is the commerce platform as seen by the storefront
type Client interface {
	CreateCart(ctx context.Context, lines []domain.CartLine) (*domain.Cart, error)
	GetCart(ctx context.Context, cartID string) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID, variantID string, quantity int) (*domain.Cart, error)
}

// UserError is a validation problem reported by the platform
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// UserErrors is returned when a mutation is rejected by the platform
type UserErrors []UserError

func (e UserErrors) Error() string {
	if len(e) == 0 {
		return "commerce: mutation rejected"
	}
	msg := "commerce: " + e[0].Message
	if len(e) > 1 {
		msg += " (and more)"
	}
	return msg
}
