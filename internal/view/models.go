package view

import (
	"html/template"

	"storefront/internal/domain"
	"storefront/internal/variant"
)

// Layout is the page shell shared by every storefront page
type Layout struct {
	Title       string
	Description string
	SiteTitle   string
	SiteURL     string
	ShareImage  string
	Nav         []domain.NavItem
	Pages       []*domain.Page
	SocialLinks []domain.SocialLink
	HasSidebar  bool
	Year        int
}

// ProductCard is a product tile in a catalog grid
type ProductCard struct {
	Handle     string
	Title      string
	Price      string
	PriceRange bool
	ImageSrc   string
	ImageAlt   string
	Href       string
}

// InstagramTile is one post of the Instagram widget
type InstagramTile struct {
	Permalink string
	ImageSrc  string
	Caption   string
}

// InstagramWidget holds the posts to show, or spinner placeholders while there are none
type InstagramWidget struct {
	Posts        []InstagramTile
	Placeholders []int
}

type HomePage struct {
	Layout
	Products  []ProductCard
	Instagram InstagramWidget
}

type CollectionPage struct {
	Layout
	Collection *domain.Collection
	Products   []ProductCard
}

type MarketingPage struct {
	Layout
	Page *domain.Page
	Body template.HTML
}

// Thumbnail switches the product page to one value of the thumbnail option
type Thumbnail struct {
	Option   string
	Value    string
	ImageSrc string
	Href     string
	Active   bool
}

type ProductPage struct {
	Layout
	Handle           string
	ProductTitle     string
	DescriptionHTML  template.HTML
	VariantID        string
	Price            string
	ImageSrc         string
	ImageAlt         string
	Found            bool
	AvailableForSale bool
	AddToCartEnabled bool
	ShowPickers      bool
	Pickers          []variant.Picker
	Thumbnails       []Thumbnail
	Added            bool
	ReturnPath       string
	VariantEndpoint  string
	Placeholder      string
}

// ShowThumbnails reports whether there is more than one thumbnail to choose from
func (p *ProductPage) ShowThumbnails() bool {
	return len(p.Thumbnails) > 1
}

type CartLine struct {
	Title        string
	VariantTitle string
	Href         string
	Quantity     int
	Price        string
	ImageSrc     string
}

type CartPage struct {
	Layout
	Lines       []CartLine
	Subtotal    string
	Shipping    string
	CheckoutURL string
}

// Empty reports whether the cart has no lines
func (p *CartPage) Empty() bool {
	return len(p.Lines) == 0
}

type ErrorPage struct {
	Layout
	Status  int
	Message string
}
