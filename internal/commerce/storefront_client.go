package commerce

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"

	"github.com/machinebox/graphql"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const tokenHeader = "X-Shopify-Storefront-Access-Token"

const cartFields = `
fragment CartFields on Cart {
  id
  checkoutUrl
  cost {
    subtotalAmount { amount }
    totalAmount { amount }
  }
  lines(first: 100) {
    nodes {
      id
      quantity
      cost { totalAmount { amount } }
      merchandise {
        ... on ProductVariant {
          id
          title
          image { url altText }
          product { title handle }
        }
      }
    }
  }
}
`

const cartQuery = `query Cart($id: ID!) { cart(id: $id) { ...CartFields } }` + cartFields

const cartCreateMutation = `mutation CartCreate($input: CartInput!) {
  cartCreate(input: $input) { cart { ...CartFields } userErrors { field message } }
}` + cartFields

const cartLinesAddMutation = `mutation CartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!) {
  cartLinesAdd(cartId: $cartId, lines: $lines) { cart { ...CartFields } userErrors { field message } }
}` + cartFields

// StorefrontClient talks to the platform's Storefront GraphQL API
type StorefrontClient struct {
	endpoint   string
	token      string
	httpClient *http.Client
	gql        *graphql.Client
	logger     *zap.Logger
}

// NewStorefrontClient creates a client for the configured store
func NewStorefrontClient(cfg config.CommerceConfig, logger *zap.Logger) *StorefrontClient {
	endpoint := cfg.StoreDomain
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	endpoint = strings.TrimRight(endpoint, "/") + "/api/" + cfg.APIVersion + "/graphql.json"

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: &statusTransport{base: http.DefaultTransport, logger: logger},
	}

	gql := graphql.NewClient(endpoint, graphql.WithHTTPClient(httpClient))
	gql.Log = func(s string) { logger.Debug(s) }

	return &StorefrontClient{
		endpoint:   endpoint,
		token:      cfg.StorefrontToken,
		httpClient: httpClient,
		gql:        gql,
		logger:     logger,
	}
}

// statusTransport fails every non-200 answer before the GraphQL client
// decodes it, and logs the call duration.
type statusTransport struct {
	base   http.RoundTripper
	logger *zap.Logger
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	t.logger.Debug("Commerce API call",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return resp, nil
}

type amount struct {
	Amount decimal.Decimal `json:"amount"`
}

type cartPayload struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkoutUrl"`
	Cost        struct {
		SubtotalAmount amount `json:"subtotalAmount"`
		TotalAmount    amount `json:"totalAmount"`
	} `json:"cost"`
	Lines struct {
		Nodes []struct {
			ID       string `json:"id"`
			Quantity int    `json:"quantity"`
			Cost     struct {
				TotalAmount amount `json:"totalAmount"`
			} `json:"cost"`
			Merchandise struct {
				ID    string `json:"id"`
				Title string `json:"title"`
				Image *struct {
					URL     string `json:"url"`
					AltText string `json:"altText"`
				} `json:"image"`
				Product struct {
					Title  string `json:"title"`
					Handle string `json:"handle"`
				} `json:"product"`
			} `json:"merchandise"`
		} `json:"nodes"`
	} `json:"lines"`
}

type mutationPayload struct {
	Cart       *cartPayload `json:"cart"`
	UserErrors UserErrors   `json:"userErrors"`
}

// CreateCart opens a new cart, optionally with initial lines
func (c *StorefrontClient) CreateCart(ctx context.Context, lines []domain.CartLine) (*domain.Cart, error) {
	var data struct {
		CartCreate mutationPayload `json:"cartCreate"`
	}
	vars := map[string]interface{}{
		"input": map[string]interface{}{"lines": lineInputs(lines)},
	}
	if err := c.do(ctx, cartCreateMutation, vars, &data); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return fromMutation(data.CartCreate)
}

// GetCart fetches the cart by ID
func (c *StorefrontClient) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	var data struct {
		Cart *cartPayload `json:"cart"`
	}
	if err := c.do(ctx, cartQuery, map[string]interface{}{"id": cartID}, &data); err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if data.Cart == nil {
		return nil, ErrCartNotFound
	}
	return toCart(data.Cart), nil
}

// AddItem adds quantity units of the variant to an existing cart
func (c *StorefrontClient) AddItem(ctx context.Context, cartID, variantID string, quantity int) (*domain.Cart, error) {
	var data struct {
		CartLinesAdd mutationPayload `json:"cartLinesAdd"`
	}
	vars := map[string]interface{}{
		"cartId": cartID,
		"lines":  lineInputs([]domain.CartLine{{VariantID: variantID, Quantity: quantity}}),
	}
	if err := c.do(ctx, cartLinesAddMutation, vars, &data); err != nil {
		return nil, fmt.Errorf("failed to add item to cart: %w", err)
	}
	return fromMutation(data.CartLinesAdd)
}

func (c *StorefrontClient) do(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error {
	req := graphql.NewRequest(query)
	for k, v := range vars {
		req.Var(k, v)
	}
	req.Header.Set(tokenHeader, c.token)

	return c.gql.Run(ctx, req, out)
}

func lineInputs(lines []domain.CartLine) []map[string]interface{} {
	inputs := make([]map[string]interface{}, 0, len(lines))
	for _, l := range lines {
		inputs = append(inputs, map[string]interface{}{
			"merchandiseId": l.VariantID,
			"quantity":      l.Quantity,
		})
	}
	return inputs
}

func fromMutation(p mutationPayload) (*domain.Cart, error) {
	if len(p.UserErrors) > 0 {
		return nil, p.UserErrors
	}
	if p.Cart == nil {
		return nil, ErrCartNotFound
	}
	return toCart(p.Cart), nil
}

func toCart(p *cartPayload) *domain.Cart {
	cart := &domain.Cart{
		ID:          p.ID,
		CheckoutURL: p.CheckoutURL,
		Subtotal:    p.Cost.SubtotalAmount.Amount,
		Total:       p.Cost.TotalAmount.Amount,
		Lines:       make([]domain.LineItem, 0, len(p.Lines.Nodes)),
	}
	for _, n := range p.Lines.Nodes {
		line := domain.LineItem{
			ID:            n.ID,
			VariantID:     n.Merchandise.ID,
			ProductTitle:  n.Merchandise.Product.Title,
			ProductHandle: n.Merchandise.Product.Handle,
			VariantTitle:  n.Merchandise.Title,
			Quantity:      n.Quantity,
			Price:         n.Cost.TotalAmount.Amount,
		}
		if n.Merchandise.Image != nil && n.Merchandise.Image.URL != "" {
			line.Image = &domain.Image{URL: n.Merchandise.Image.URL, Alt: n.Merchandise.Image.AltText}
		}
		cart.Lines = append(cart.Lines, line)
	}
	return cart
}
