package transport

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"storefront/internal/cartcookie"
	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/view"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddToCartRequest represents the add-to-cart form
type AddToCartRequest struct {
	VariantID string `json:"variant_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=99"`
	ReturnTo  string `json:"return_to" validate:"omitempty,startswith=/"`
}

// CartSummary is the JSON answer to an add-to-cart request from a script
type CartSummary struct {
	CartID      string `json:"cart_id"`
	ItemCount   int    `json:"item_count"`
	Subtotal    string `json:"subtotal"`
	CheckoutURL string `json:"checkout_url"`
}

// StorefrontHandler handles the storefront pages and the variant API
type StorefrontHandler struct {
	catalog     service.CatalogService
	carts       service.CartService
	cookies     *cartcookie.Codec
	renderer    *view.Renderer
	placeholder string
	logger      *zap.Logger
}

// NewStorefrontHandler creates a new StorefrontHandler
func NewStorefrontHandler(
	catalog service.CatalogService,
	carts service.CartService,
	cookies *cartcookie.Codec,
	renderer *view.Renderer,
	placeholder string,
	logger *zap.Logger,
) *StorefrontHandler {
	return &StorefrontHandler{
		catalog:     catalog,
		carts:       carts,
		cookies:     cookies,
		renderer:    renderer,
		placeholder: placeholder,
		logger:      logger,
	}
}

// RegisterRoutes registers all storefront routes
func (h *StorefrontHandler) RegisterRoutes(r chi.Router, addToCartLimiter, apiCORS func(http.Handler) http.Handler) {
	r.Handle("/static/*", view.StaticHandler())

	r.Get("/", h.Home)
	r.Get("/collections/{handle}", h.Collection)
	r.Get("/pages/{slug}", h.Page)
	r.Get("/products/{handle}", h.Product)
	r.Get("/cart", h.Cart)

	r.With(addToCartLimiter).Post("/cart/items", h.AddToCart)

	r.Route("/api", func(r chi.Router) {
		r.Use(apiCORS)
		r.Get("/products/{handle}/variant", h.ResolveVariant)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.RespondWithFailure(w, r, h.RenderError, http.StatusNotFound, "Page not found")
	})
}

// Home renders the catalog landing page
func (h *StorefrontHandler) Home(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.Home(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.renderer.HTML(w, http.StatusOK, view.PageHome, page)
}

// Collection renders the product grid of one collection
func (h *StorefrontHandler) Collection(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.Collection(r.Context(), chi.URLParam(r, "handle"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.renderer.HTML(w, http.StatusOK, view.PageCollection, page)
}

// Page renders a marketing page
func (h *StorefrontHandler) Page(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.Page(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.renderer.HTML(w, http.StatusOK, view.PageMarketing, page)
}

// Product renders the product page for the option values in the query string
func (h *StorefrontHandler) Product(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := h.catalog.Product(r.Context(), chi.URLParam(r, "handle"), optionLookup(query))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page.Added = query.Get("added") == "1"
	h.renderer.HTML(w, http.StatusOK, view.PageProduct, page)
}

// ResolveVariant answers the product page script with the variant for a selection
func (h *StorefrontHandler) ResolveVariant(w http.ResponseWriter, r *http.Request) {
	result, err := h.catalog.ResolveVariant(r.Context(), chi.URLParam(r, "handle"), optionLookup(r.URL.Query()))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Variant resolution failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to resolve variant")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// Cart renders the shopper's cart
func (h *StorefrontHandler) Cart(w http.ResponseWriter, r *http.Request) {
	cartID, hasCart := h.cookies.GetCartID(w, r)

	cart, err := h.carts.View(r.Context(), cartID)
	if err != nil {
		h.RenderError(w, r, http.StatusBadGateway, "Your cart could not be loaded, please try again")
		return
	}
	if hasCart && cart.ID == "" {
		h.cookies.Clear(w)
	}

	layout, err := h.catalog.Layout(r.Context(), false)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.renderer.HTML(w, http.StatusOK, view.PageCart, service.NewCartPage(layout, cart, h.placeholder))
}

// AddToCart adds a variant to the cart and sends the shopper back
func (h *StorefrontHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAddToCart(r)
	if err != nil {
		h.logger.Debug("Add to cart validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			if middleware.WantsJSON(r) {
				middleware.RespondWithValidationErrors(w, validationErrors)
				return
			}
			h.RenderError(w, r, http.StatusBadRequest, validationMessage(validationErrors))
			return
		}

		middleware.RespondWithFailure(w, r, h.RenderError, http.StatusBadRequest, "invalid request")
		return
	}

	cartID, _ := h.cookies.GetCartID(w, r)
	cart, err := h.carts.AddItem(r.Context(), cartID, domain.CartLine{VariantID: req.VariantID, Quantity: req.Quantity})
	if err != nil {
		middleware.RespondWithFailure(w, r, h.RenderError, http.StatusBadGateway, "The item could not be added to your cart, please try again")
		return
	}
	h.cookies.Set(w, cart.ID)

	if middleware.WantsJSON(r) {
		middleware.RespondWithJSON(w, http.StatusOK, CartSummary{
			CartID:      cart.ID,
			ItemCount:   cart.ItemCount(),
			Subtotal:    domain.FormatPrice(cart.Subtotal),
			CheckoutURL: cart.CheckoutURL,
		})
		return
	}

	http.Redirect(w, r, redirectTarget(req.ReturnTo), http.StatusSeeOther)
}

// RenderError renders the HTML error page
func (h *StorefrontHandler) RenderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	layout, err := h.catalog.Layout(r.Context(), false)
	if err != nil {
		h.logger.Warn("Rendering error page without layout", zap.Error(err))
		layout = view.Layout{SiteTitle: "Storefront"}
	}
	layout.Title = http.StatusText(status)

	h.renderer.HTML(w, status, view.PageError, &view.ErrorPage{
		Layout:  layout,
		Status:  status,
		Message: message,
	})
}

// fail maps a catalog error to a status and renders it
func (h *StorefrontHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithFailure(w, r, h.RenderError, http.StatusNotFound, "Product not found")
	case errors.Is(err, repository.ErrCollectionNotFound):
		middleware.RespondWithFailure(w, r, h.RenderError, http.StatusNotFound, "Collection not found")
	case errors.Is(err, repository.ErrPageNotFound):
		middleware.RespondWithFailure(w, r, h.RenderError, http.StatusNotFound, "Page not found")
	default:
		h.logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
		middleware.RespondWithFailure(w, r, h.RenderError, http.StatusInternalServerError, "Something went wrong")
	}
}

func decodeAddToCart(r *http.Request) (*AddToCartRequest, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		req := AddToCartRequest{Quantity: 1}
		if err := middleware.DecodeAndValidate(r, &req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}

	req := &AddToCartRequest{
		VariantID: strings.TrimSpace(r.PostForm.Get("variant_id")),
		Quantity:  1,
		ReturnTo:  r.PostForm.Get("return_to"),
	}
	if q := strings.TrimSpace(r.PostForm.Get("quantity")); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			// out of range so validation reports it
			n = 0
		}
		req.Quantity = n
	}

	if err := middleware.ValidateRequest(req); err != nil {
		return nil, err
	}
	return req, nil
}

// redirectTarget returns the local page to go back to with added=1, or the cart
func redirectTarget(returnTo string) string {
	if returnTo == "" || strings.HasPrefix(returnTo, "//") || strings.Contains(returnTo, "\\") {
		return "/cart"
	}
	u, err := url.Parse(returnTo)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/cart"
	}
	q := u.Query()
	q.Set("added", "1")
	u.RawQuery = q.Encode()
	return u.String()
}

// optionLookup matches option names against query keys case-insensitively
func optionLookup(query url.Values) func(name string) (string, bool) {
	return func(name string) (string, bool) {
		if v, ok := query[name]; ok && len(v) > 0 {
			return v[0], true
		}
		for key, v := range query {
			if strings.EqualFold(key, name) && len(v) > 0 {
				return v[0], true
			}
		}
		return "", false
	}
}

func validationMessage(errs []middleware.ValidationError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return "Invalid request. " + strings.Join(parts, "; ")
}
