package service

import (
	"context"
	"fmt"

	"storefront/internal/commerce"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// Mock repositories for testing
type mockContentRepository struct {
	settings    *domain.SiteSettings
	pages       []*domain.Page
	collections []*domain.Collection
	posts       []*domain.InstagramPost
	err         error
}

func (m *mockContentRepository) SiteSettings(ctx context.Context) (*domain.SiteSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.settings == nil {
		return nil, repository.ErrSiteSettingsNotFound
	}
	return m.settings, nil
}

func (m *mockContentRepository) ListPages(ctx context.Context) ([]*domain.Page, error) {
	return m.pages, m.err
}

func (m *mockContentRepository) FindPageBySlug(ctx context.Context, slug string) (*domain.Page, error) {
	for _, p := range m.pages {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, repository.ErrPageNotFound
}

func (m *mockContentRepository) ListCollections(ctx context.Context) ([]*domain.Collection, error) {
	return m.collections, m.err
}

func (m *mockContentRepository) FindCollectionByHandle(ctx context.Context, handle string) (*domain.Collection, error) {
	for _, c := range m.collections {
		if c.Handle == handle {
			return c, nil
		}
	}
	return nil, repository.ErrCollectionNotFound
}

func (m *mockContentRepository) ListInstagramPosts(ctx context.Context, limit int) ([]*domain.InstagramPost, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.posts) > limit {
		return m.posts[:limit], nil
	}
	return m.posts, nil
}

type mockProductRepository struct {
	products     map[string]*domain.Product
	summaries    []*domain.ProductSummary
	byCollection map[string][]*domain.ProductSummary
}

func (m *mockProductRepository) ListAvailable(ctx context.Context) ([]*domain.ProductSummary, error) {
	return m.summaries, nil
}

func (m *mockProductRepository) ListByCollection(ctx context.Context, handle string) ([]*domain.ProductSummary, error) {
	return m.byCollection[handle], nil
}

func (m *mockProductRepository) FindByHandle(ctx context.Context, handle string) (*domain.Product, error) {
	p, ok := m.products[handle]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

type mockCommerceClient struct {
	carts   map[string]*domain.Cart
	nextID  int
	created int
	err     error
}

func newMockCommerceClient() *mockCommerceClient {
	return &mockCommerceClient{carts: make(map[string]*domain.Cart)}
}

func (m *mockCommerceClient) CreateCart(ctx context.Context, lines []domain.CartLine) (*domain.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.nextID++
	m.created++
	id := fmt.Sprintf("cart-%d", m.nextID)
	cart := &domain.Cart{ID: id, CheckoutURL: "https://shop.example.com/checkout/" + id}
	m.carts[id] = cart
	for _, l := range lines {
		m.addLine(cart, l.VariantID, l.Quantity)
	}
	return cart, nil
}

func (m *mockCommerceClient) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	cart, ok := m.carts[cartID]
	if !ok {
		return nil, commerce.ErrCartNotFound
	}
	return cart, nil
}

func (m *mockCommerceClient) AddItem(ctx context.Context, cartID, variantID string, quantity int) (*domain.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	cart, ok := m.carts[cartID]
	if !ok {
		return nil, commerce.ErrCartNotFound
	}
	m.addLine(cart, variantID, quantity)
	return cart, nil
}

func (m *mockCommerceClient) addLine(cart *domain.Cart, variantID string, quantity int) {
	unit := decimal.RequireFromString("10.00")
	cart.Lines = append(cart.Lines, domain.LineItem{
		ID:            "line-" + variantID,
		VariantID:     variantID,
		ProductTitle:  "Mini pouch",
		ProductHandle: "mini-pouch",
		Quantity:      quantity,
		Price:         unit.Mul(decimal.NewFromInt(int64(quantity))),
	})
	cart.Subtotal = cart.Subtotal.Add(unit.Mul(decimal.NewFromInt(int64(quantity))))
	cart.Total = cart.Subtotal
}

func img(url string) *domain.Image {
	return &domain.Image{URL: url}
}

func option(name, value string) domain.SelectedOption {
	return domain.SelectedOption{Name: name, Value: value}
}

// pouch is a product with sizes S/M and extras None/Gold where S/Gold does
// not exist and S/None is sold out
func pouch() *domain.Product {
	return &domain.Product{
		ID:               "p1",
		Handle:           "mini-pouch",
		Title:            "Mini pouch",
		DescriptionHTML:  "<p>Soft</p>",
		AvailableForSale: true,
		Options: []domain.Option{
			{Name: "Size", Values: []string{"S", "M"}},
			{Name: "Extras", Values: []string{"None", "Gold"}},
		},
		Variants: []domain.Variant{
			{ID: "v-s-none", Price: decimal.RequireFromString("12"), AvailableForSale: false,
				SelectedOptions: []domain.SelectedOption{option("Size", "S"), option("Extras", "None")},
				Image:           img("https://cdn.example.com/s.jpg")},
			{ID: "v-m-none", Price: decimal.RequireFromString("15.5"), AvailableForSale: true,
				SelectedOptions: []domain.SelectedOption{option("Size", "M"), option("Extras", "None")},
				Image:           img("https://cdn.example.com/m.jpg")},
			{ID: "v-m-gold", Price: decimal.RequireFromString("18"), AvailableForSale: true,
				SelectedOptions: []domain.SelectedOption{option("Size", "M"), option("Extras", "Gold")},
				Image:           img("https://cdn.example.com/gold.jpg")},
		},
	}
}
