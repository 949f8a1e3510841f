package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"storefront/internal/commerce"
	"storefront/internal/domain"
	"storefront/internal/imageurl"
	"storefront/internal/view"

	"go.uber.org/zap"
)

// CartService defines the interface for cart operations backed by the commerce platform
type CartService interface {
	View(ctx context.Context, cartID string) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID string, line domain.CartLine) (*domain.Cart, error)
}

type cartService struct {
	client commerce.Client
	logger *zap.Logger
}

// NewCartService creates a new instance of CartService
func NewCartService(client commerce.Client, logger *zap.Logger) CartService {
	return &cartService{
		client: client,
		logger: logger,
	}
}

// View returns the shopper's cart. A missing or expired cart yields an empty
// cart with no ID, so callers can drop their reference to it.
func (s *cartService) View(ctx context.Context, cartID string) (*domain.Cart, error) {
	if cartID == "" {
		return &domain.Cart{}, nil
	}

	cart, err := s.client.GetCart(ctx, cartID)
	if err != nil {
		if errors.Is(err, commerce.ErrCartNotFound) {
			s.logger.Info("Cart expired", zap.String("cart_id", cartID))
			return &domain.Cart{}, nil
		}
		s.logger.Error("Failed to load cart", zap.String("cart_id", cartID), zap.Error(err))
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return cart, nil
}

// AddItem adds the line to the cart, creating a cart when there is none yet
// or the referenced one is gone.
func (s *cartService) AddItem(ctx context.Context, cartID string, line domain.CartLine) (*domain.Cart, error) {
	if line.Quantity <= 0 {
		line.Quantity = 1
	}

	if cartID != "" {
		cart, err := s.client.AddItem(ctx, cartID, line.VariantID, line.Quantity)
		if err == nil {
			s.logger.Info("Item added to cart",
				zap.String("cart_id", cart.ID),
				zap.String("variant_id", line.VariantID),
				zap.Int("quantity", line.Quantity),
			)
			return cart, nil
		}
		if !errors.Is(err, commerce.ErrCartNotFound) {
			s.logger.Error("Failed to add item to cart", zap.String("cart_id", cartID), zap.Error(err))
			return nil, fmt.Errorf("failed to add item: %w", err)
		}
	}

	cart, err := s.client.CreateCart(ctx, []domain.CartLine{line})
	if err != nil {
		s.logger.Error("Failed to create cart", zap.Error(err))
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	s.logger.Info("Cart created",
		zap.String("cart_id", cart.ID),
		zap.String("variant_id", line.VariantID),
		zap.Int("quantity", line.Quantity),
	)
	return cart, nil
}

// NewCartPage builds the cart view. Shipping is settled at checkout.
func NewCartPage(layout view.Layout, cart *domain.Cart, placeholder string) *view.CartPage {
	page := &view.CartPage{
		Layout:      layout,
		Subtotal:    domain.FormatPrice(cart.Subtotal),
		Shipping:    "-",
		CheckoutURL: cart.CheckoutURL,
	}
	page.Title = "Cart"

	for _, l := range cart.Lines {
		page.Lines = append(page.Lines, view.CartLine{
			Title:        l.ProductTitle,
			VariantTitle: l.VariantTitle,
			Href:         "/products/" + url.PathEscape(l.ProductHandle) + "/",
			Quantity:     l.Quantity,
			Price:        domain.FormatPrice(l.Price),
			ImageSrc:     imageurl.Source(l.Image, imageurl.ThumbnailWidth, placeholder),
		})
	}
	return page
}
