package variant

import "storefront/internal/domain"

// Picker describes the select control for one option dimension
type Picker struct {
	Name     string
	ID       string
	Values   []string
	Selected string
}

// Visible reports whether the picker has a choice to offer
func (p Picker) Visible() bool {
	return len(p.Values) > 1
}

// Pickers returns one picker per product option, preselected from sel
func (r *Resolver) Pickers(sel Selection) []Picker {
	pickers := make([]Picker, 0, len(r.product.Options))
	for _, opt := range r.product.Options {
		pickers = append(pickers, Picker{
			Name:     opt.Name,
			ID:       normalizeName(opt.Name),
			Values:   opt.Values,
			Selected: sel.Get(opt.Name),
		})
	}
	return pickers
}

// ShowPickers reports whether the option controls should be rendered at all:
// the product must be for sale and offer a choice in at least one dimension.
func (r *Resolver) ShowPickers() bool {
	if !r.product.AvailableForSale {
		return false
	}
	for _, opt := range r.product.Options {
		if len(opt.Values) > 1 {
			return true
		}
	}
	return false
}

// OptionImage pairs a value of an option dimension with a representative image
type OptionImage struct {
	Value string
	Image *domain.Image
}

// ImagesByOption returns one entry per distinct value of the named option in
// first-seen order, each carrying the image of the first variant with that
// value. Variants lacking the option are skipped.
func ImagesByOption(variants []domain.Variant, optionName string) []OptionImage {
	seen := make(map[string]bool)
	var images []OptionImage
	for _, v := range variants {
		value, ok := v.OptionValue(optionName)
		if !ok || seen[value] {
			continue
		}
		seen[value] = true
		images = append(images, OptionImage{Value: value, Image: v.Image})
	}
	return images
}
