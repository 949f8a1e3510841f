package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog product as sourced from the commerce backend
type Product struct {
	ID               string    `json:"id" db:"id"`
	Handle           string    `json:"handle" db:"handle"`
	Title            string    `json:"title" db:"title"`
	Description      string    `json:"description" db:"description"`
	DescriptionHTML  string    `json:"description_html" db:"description_html"`
	ProductType      string    `json:"product_type" db:"product_type"`
	AvailableForSale bool      `json:"available_for_sale" db:"available_for_sale"`
	Options          []Option  `json:"options"`
	Variants         []Variant `json:"variants"`
	Images           []Image   `json:"images"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Option is a named configuration dimension of a product, e.g. "Size"
type Option struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// SelectedOption is the value a variant carries for one option dimension
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Variant is a purchasable configuration of a product
type Variant struct {
	ID               string           `json:"id" db:"id"`
	Title            string           `json:"title" db:"title"`
	SKU              string           `json:"sku" db:"sku"`
	Price            decimal.Decimal  `json:"price" db:"price"`
	AvailableForSale bool             `json:"available_for_sale" db:"available_for_sale"`
	SelectedOptions  []SelectedOption `json:"selected_options"`
	Image            *Image           `json:"image,omitempty"`
}

// OptionValue returns the value the variant holds for the named option.
// Option names are matched case-insensitively.
func (v Variant) OptionValue(name string) (string, bool) {
	for _, so := range v.SelectedOptions {
		if strings.EqualFold(so.Name, name) {
			return so.Value, true
		}
	}
	return "", false
}

// Image references an original (unresized) image on the commerce CDN
type Image struct {
	URL string `json:"url" db:"url"`
	Alt string `json:"alt" db:"alt"`
}

// ProductSummary is the catalog card projection of a product
type ProductSummary struct {
	ID               string          `json:"id" db:"id"`
	Handle           string          `json:"handle" db:"handle"`
	Title            string          `json:"title" db:"title"`
	Description      string          `json:"description" db:"description"`
	ProductType      string          `json:"product_type" db:"product_type"`
	AvailableForSale bool            `json:"available_for_sale" db:"available_for_sale"`
	MinPrice         decimal.Decimal `json:"min_price" db:"min_price"`
	MaxPrice         decimal.Decimal `json:"max_price" db:"max_price"`
	Image            *Image          `json:"image,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// FormatPrice renders an amount the way the storefront displays prices
func FormatPrice(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}
