package service

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/imageurl"
	"storefront/internal/repository"
	"storefront/internal/variant"
	"storefront/internal/view"

	"go.uber.org/zap"
)

// DefaultPostsToShow is the Instagram widget size when none is configured
const DefaultPostsToShow = 6

// CatalogOptions tunes how catalog pages are assembled
type CatalogOptions struct {
	PlaceholderImage string
	ThumbnailOption  string
	PostsToShow      int
}

// VariantResult is the JSON answer to an option change on the product page
type VariantResult struct {
	Found            bool              `json:"found"`
	AddToCartEnabled bool              `json:"add_to_cart_enabled"`
	AvailableForSale bool              `json:"available_for_sale"`
	VariantID        string            `json:"variant_id,omitempty"`
	Title            string            `json:"title,omitempty"`
	Price            string            `json:"price,omitempty"`
	Image            string            `json:"image,omitempty"`
	Selection        map[string]string `json:"selection"`
}

// CatalogService defines the interface for building storefront pages
type CatalogService interface {
	Layout(ctx context.Context, hasSidebar bool) (view.Layout, error)
	Home(ctx context.Context) (*view.HomePage, error)
	Collection(ctx context.Context, handle string) (*view.CollectionPage, error)
	Page(ctx context.Context, slug string) (*view.MarketingPage, error)
	Product(ctx context.Context, handle string, lookup func(name string) (string, bool)) (*view.ProductPage, error)
	ResolveVariant(ctx context.Context, handle string, lookup func(name string) (string, bool)) (*VariantResult, error)
	Instagram(ctx context.Context, postsToShow int) (view.InstagramWidget, error)
}

type catalogService struct {
	content  repository.ContentRepository
	products repository.ProductRepository
	opts     CatalogOptions
	logger   *zap.Logger
	now      func() time.Time
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	content repository.ContentRepository,
	products repository.ProductRepository,
	opts CatalogOptions,
	logger *zap.Logger,
) CatalogService {
	if opts.PostsToShow <= 0 {
		opts.PostsToShow = DefaultPostsToShow
	}
	return &catalogService{
		content:  content,
		products: products,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Layout assembles the page shell. Missing site settings are tolerated so a
// freshly migrated database still renders.
func (s *catalogService) Layout(ctx context.Context, hasSidebar bool) (view.Layout, error) {
	layout := view.Layout{
		SiteTitle:  "Storefront",
		HasSidebar: hasSidebar,
		Year:       s.now().Year(),
	}

	settings, err := s.content.SiteSettings(ctx)
	switch {
	case errors.Is(err, repository.ErrSiteSettingsNotFound):
		s.logger.Warn("Site settings missing, using defaults")
	case err != nil:
		return view.Layout{}, fmt.Errorf("failed to load site settings: %w", err)
	default:
		layout.SiteTitle = settings.Title
		layout.Description = settings.Description
		layout.SiteURL = settings.SiteURL
		layout.ShareImage = settings.ShareImageURL
		layout.SocialLinks = settings.SocialLinks
	}

	collections, err := s.content.ListCollections(ctx)
	if err != nil {
		return view.Layout{}, fmt.Errorf("failed to list collections: %w", err)
	}
	layout.Nav = navigation(collections)

	pages, err := s.content.ListPages(ctx)
	if err != nil {
		return view.Layout{}, fmt.Errorf("failed to list pages: %w", err)
	}
	layout.Pages = pages

	return layout, nil
}

func navigation(collections []*domain.Collection) []domain.NavItem {
	nav := make([]domain.NavItem, 0, len(collections))
	for _, c := range collections {
		nav = append(nav, domain.NavItem{
			ID:    c.ID,
			Title: c.Title,
			Slug:  "/collections/" + c.Handle + "/",
		})
	}
	return nav
}

// Home builds the catalog landing page with the Instagram widget
func (s *catalogService) Home(ctx context.Context) (*view.HomePage, error) {
	layout, err := s.Layout(ctx, true)
	if err != nil {
		return nil, err
	}

	summaries, err := s.products.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	instagram, err := s.Instagram(ctx, s.opts.PostsToShow)
	if err != nil {
		return nil, err
	}

	return &view.HomePage{
		Layout:    layout,
		Products:  s.cards(summaries),
		Instagram: instagram,
	}, nil
}

// Collection builds the grid of one collection
func (s *catalogService) Collection(ctx context.Context, handle string) (*view.CollectionPage, error) {
	collection, err := s.content.FindCollectionByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}

	layout, err := s.Layout(ctx, true)
	if err != nil {
		return nil, err
	}
	layout.Title = collection.Title

	summaries, err := s.products.ListByCollection(ctx, collection.Handle)
	if err != nil {
		return nil, fmt.Errorf("failed to list collection products: %w", err)
	}

	return &view.CollectionPage{
		Layout:     layout,
		Collection: collection,
		Products:   s.cards(summaries),
	}, nil
}

// Page builds a marketing page. Its body is authored HTML from the content backend.
func (s *catalogService) Page(ctx context.Context, slug string) (*view.MarketingPage, error) {
	page, err := s.content.FindPageBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	layout, err := s.Layout(ctx, true)
	if err != nil {
		return nil, err
	}
	layout.Title = page.Title

	return &view.MarketingPage{
		Layout: layout,
		Page:   page,
		Body:   template.HTML(page.BodyHTML),
	}, nil
}

// Product builds the product page for the requested selection. When the
// selection matches no variant the default variant's price and image stay on
// screen and add-to-cart is disabled.
func (s *catalogService) Product(ctx context.Context, handle string, lookup func(name string) (string, bool)) (*view.ProductPage, error) {
	product, err := s.products.FindByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}

	layout, err := s.Layout(ctx, false)
	if err != nil {
		return nil, err
	}
	layout.Title = product.Title
	layout.Description = product.Description

	resolver := variant.NewResolver(product)
	sel := resolver.SelectionFromValues(lookup)
	res := resolver.Resolve(sel)

	shown, hasVariant := resolver.Default()
	if res.Found {
		shown = *res.Variant
		hasVariant = true
	}

	page := &view.ProductPage{
		Layout:           layout,
		Handle:           product.Handle,
		ProductTitle:     product.Title,
		DescriptionHTML:  template.HTML(product.DescriptionHTML),
		Found:            res.Found,
		AddToCartEnabled: res.AddToCartEnabled,
		ShowPickers:      resolver.ShowPickers(),
		Pickers:          resolver.Pickers(sel),
		ReturnPath:       productPath(product.Handle, sel),
		VariantEndpoint:  "/api/products/" + url.PathEscape(product.Handle) + "/variant",
		Placeholder:      s.opts.PlaceholderImage,
	}

	if res.Found {
		page.AvailableForSale = res.Variant.AvailableForSale
		if res.AddToCartEnabled {
			page.VariantID = res.Variant.ID
		}
	}

	img := s.primaryImage(product, shown, hasVariant)
	page.ImageSrc = imageurl.Source(img, imageurl.PrimaryWidth, s.opts.PlaceholderImage)
	if img != nil {
		page.ImageAlt = img.Alt
	}
	if hasVariant {
		page.Price = domain.FormatPrice(shown.Price)
	}
	if page.ImageAlt == "" {
		page.ImageAlt = product.Title
	}

	page.Thumbnails = s.thumbnails(product, sel)

	return page, nil
}

// ResolveVariant answers an option change with the matching variant, if any
func (s *catalogService) ResolveVariant(ctx context.Context, handle string, lookup func(name string) (string, bool)) (*VariantResult, error) {
	product, err := s.products.FindByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}

	resolver := variant.NewResolver(product)
	sel := resolver.SelectionFromValues(lookup)
	res := resolver.Resolve(sel)

	result := &VariantResult{
		Found:            res.Found,
		AddToCartEnabled: res.AddToCartEnabled,
		Selection:        sel,
	}
	if res.Found {
		v := res.Variant
		result.AvailableForSale = v.AvailableForSale
		result.VariantID = v.ID
		result.Title = v.Title
		result.Price = domain.FormatPrice(v.Price)
		if v.Image != nil {
			result.Image = imageurl.Resize(v.Image.URL, imageurl.PrimaryWidth)
		}
	}
	return result, nil
}

// Instagram builds the social widget; with no posts it shows postsToShow spinners
func (s *catalogService) Instagram(ctx context.Context, postsToShow int) (view.InstagramWidget, error) {
	if postsToShow <= 0 {
		postsToShow = DefaultPostsToShow
	}

	posts, err := s.content.ListInstagramPosts(ctx, postsToShow)
	if err != nil {
		return view.InstagramWidget{}, fmt.Errorf("failed to list instagram posts: %w", err)
	}

	if len(posts) == 0 {
		return view.InstagramWidget{Placeholders: make([]int, postsToShow)}, nil
	}

	widget := view.InstagramWidget{Posts: make([]view.InstagramTile, 0, len(posts))}
	for i, p := range posts {
		if i == postsToShow {
			break
		}
		widget.Posts = append(widget.Posts, view.InstagramTile{
			Permalink: p.Permalink,
			ImageSrc:  p.ImageURL,
			Caption:   p.Caption,
		})
	}
	return widget, nil
}

func (s *catalogService) cards(summaries []*domain.ProductSummary) []view.ProductCard {
	cards := make([]view.ProductCard, 0, len(summaries))
	for _, p := range summaries {
		card := view.ProductCard{
			Handle:     p.Handle,
			Title:      p.Title,
			Price:      domain.FormatPrice(p.MinPrice),
			PriceRange: !p.MinPrice.Equal(p.MaxPrice),
			ImageSrc:   imageurl.Source(p.Image, imageurl.CardWidth, s.opts.PlaceholderImage),
			ImageAlt:   p.Title,
			Href:       "/products/" + url.PathEscape(p.Handle) + "/",
		}
		if p.Image != nil && p.Image.Alt != "" {
			card.ImageAlt = p.Image.Alt
		}
		cards = append(cards, card)
	}
	return cards
}

// primaryImage prefers the shown variant's image, then the first product image
func (s *catalogService) primaryImage(product *domain.Product, shown domain.Variant, hasVariant bool) *domain.Image {
	if hasVariant && shown.Image != nil && shown.Image.URL != "" {
		return shown.Image
	}
	if len(product.Images) > 0 {
		img := product.Images[0]
		return &img
	}
	return nil
}

func (s *catalogService) thumbnails(product *domain.Product, sel variant.Selection) []view.Thumbnail {
	option := s.opts.ThumbnailOption
	images := variant.ImagesByOption(product.Variants, option)
	if len(images) < 2 {
		return nil
	}

	optionName := option
	for _, o := range product.Options {
		if strings.EqualFold(o.Name, option) {
			optionName = o.Name
			break
		}
	}

	thumbs := make([]view.Thumbnail, 0, len(images))
	for _, img := range images {
		thumbs = append(thumbs, view.Thumbnail{
			Option:   optionName,
			Value:    img.Value,
			ImageSrc: imageurl.Source(img.Image, imageurl.ThumbnailWidth, s.opts.PlaceholderImage),
			Href:     productPath(product.Handle, sel.With(optionName, img.Value)),
			Active:   sel.Get(optionName) == img.Value,
		})
	}
	return thumbs
}

// productPath is the canonical product URL carrying the selection as query values
func productPath(handle string, sel variant.Selection) string {
	path := "/products/" + url.PathEscape(handle) + "/"
	if len(sel) == 0 {
		return path
	}
	q := url.Values{}
	for name, value := range sel {
		q.Set(name, value)
	}
	return path + "?" + q.Encode()
}
