// Package variant maps a shopper's option selection to a purchasable variant.
package variant

import (
	"net/url"
	"sort"
	"strings"

	"storefront/internal/domain"
)

// Selection maps an option name to the chosen value
type Selection map[string]string

// Key returns the canonical encoding of the selection: lower-cased option
// names in ascending order, names and values query-escaped. Names that
// normalize to the same option keep every value, sorted.
func (s Selection) Key() string {
	values := make(url.Values, len(s))
	for name, value := range s {
		n := normalizeName(name)
		values[n] = append(values[n], value)
	}
	for _, vs := range values {
		sort.Strings(vs)
	}
	return values.Encode()
}

// Get returns the value selected for the named option
func (s Selection) Get(name string) string {
	n := normalizeName(name)
	for k, v := range s {
		if normalizeName(k) == n {
			return v
		}
	}
	return ""
}

// With returns a copy of the selection with one dimension changed
func (s Selection) With(name, value string) Selection {
	out := make(Selection, len(s)+1)
	n := normalizeName(name)
	for k, v := range s {
		if normalizeName(k) != n {
			out[k] = v
		}
	}
	out[name] = value
	return out
}

// SelectionOf returns the selection a variant represents
func SelectionOf(v domain.Variant) Selection {
	sel := make(Selection, len(v.SelectedOptions))
	for _, so := range v.SelectedOptions {
		sel[so.Name] = so.Value
	}
	return sel
}

// Resolution is the outcome of resolving a selection
type Resolution struct {
	Selection        Selection
	Variant          *domain.Variant
	Found            bool
	AddToCartEnabled bool
}

// Resolver resolves selections against one product's variants. It is built
// once per product load and is safe for concurrent use after construction.
type Resolver struct {
	product *domain.Product
	index   map[string]int
}

// NewResolver indexes the product's variants by their canonical selection key
func NewResolver(product *domain.Product) *Resolver {
	r := &Resolver{
		product: product,
		index:   make(map[string]int, len(product.Variants)),
	}
	for i, v := range product.Variants {
		key := SelectionOf(v).Key()
		// first variant wins on duplicate keys, like a linear scan would
		if _, exists := r.index[key]; !exists {
			r.index[key] = i
		}
	}
	return r
}

// Product returns the product this resolver was built for
func (r *Resolver) Product() *domain.Product {
	return r.product
}

// Resolve finds the variant whose option values equal the selection exactly.
// Every selection resolves, possibly to a Resolution with Found == false.
func (r *Resolver) Resolve(sel Selection) Resolution {
	res := Resolution{Selection: sel}
	i, ok := r.index[sel.Key()]
	if !ok {
		return res
	}
	v := r.product.Variants[i]
	res.Variant = &v
	res.Found = true
	res.AddToCartEnabled = v.AvailableForSale
	return res
}

// Default returns the first variant available for sale, falling back to the
// first variant overall. It reports false when the product has no variants.
func (r *Resolver) Default() (domain.Variant, bool) {
	if len(r.product.Variants) == 0 {
		return domain.Variant{}, false
	}
	for _, v := range r.product.Variants {
		if v.AvailableForSale {
			return v, true
		}
	}
	return r.product.Variants[0], true
}

// DefaultSelection is the selection of the default variant
func (r *Resolver) DefaultSelection() Selection {
	v, ok := r.Default()
	if !ok {
		return Selection{}
	}
	return SelectionOf(v)
}

// SelectionFromValues builds a selection covering every option dimension of
// the product. lookup is asked for each option name; dimensions it does not
// supply keep the default variant's value.
func (r *Resolver) SelectionFromValues(lookup func(name string) (string, bool)) Selection {
	def := r.DefaultSelection()
	sel := make(Selection, len(r.product.Options))
	for _, opt := range r.product.Options {
		if value, ok := lookup(opt.Name); ok && value != "" {
			sel[opt.Name] = value
			continue
		}
		if value := def.Get(opt.Name); value != "" {
			sel[opt.Name] = value
		}
	}
	return sel
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
