package variant

import (
	"testing"

	"storefront/internal/domain"
)

func TestImagesByOption(t *testing.T) {
	gold := &domain.Image{URL: "https://cdn.example.com/gold.jpg"}
	silver := &domain.Image{URL: "https://cdn.example.com/silver.jpg"}
	variants := []domain.Variant{
		{ID: "1", Image: gold, SelectedOptions: []domain.SelectedOption{{Name: "Size", Value: "S"}, {Name: "Extras", Value: "Gold"}}},
		{ID: "2", Image: silver, SelectedOptions: []domain.SelectedOption{{Name: "Size", Value: "S"}, {Name: "Extras", Value: "Silver"}}},
		{ID: "3", Image: silver, SelectedOptions: []domain.SelectedOption{{Name: "Size", Value: "M"}, {Name: "Extras", Value: "Gold"}}},
		{ID: "4", SelectedOptions: []domain.SelectedOption{{Name: "Size", Value: "M"}}},
	}

	images := ImagesByOption(variants, "extras")

	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
	if images[0].Value != "Gold" || images[0].Image != gold {
		t.Errorf("unexpected first image %+v", images[0])
	}
	if images[1].Value != "Silver" || images[1].Image != silver {
		t.Errorf("unexpected second image %+v", images[1])
	}
}

func TestPickers(t *testing.T) {
	p := gridProduct(-1, allAvailable)
	p.Options = append(p.Options, domain.Option{Name: "Colour", Values: []string{"Pink"}})
	r := NewResolver(p)

	pickers := r.Pickers(Selection{"Size": "M", "Extras": "Gold"})

	if len(pickers) != 3 {
		t.Fatalf("expected 3 pickers, got %d", len(pickers))
	}
	if pickers[0].ID != "size" || pickers[0].Selected != "M" || !pickers[0].Visible() {
		t.Errorf("unexpected size picker %+v", pickers[0])
	}
	if pickers[2].Visible() {
		t.Error("single-value option must not render a picker")
	}
	if !r.ShowPickers() {
		t.Error("expected pickers to be shown")
	}
}

func TestShowPickers(t *testing.T) {
	t.Run("not for sale", func(t *testing.T) {
		p := gridProduct(-1, allAvailable)
		p.AvailableForSale = false
		if NewResolver(p).ShowPickers() {
			t.Error("pickers must be hidden when the product is not for sale")
		}
	})

	t.Run("no choice to make", func(t *testing.T) {
		p := &domain.Product{
			AvailableForSale: true,
			Options:          []domain.Option{{Name: "Size", Values: []string{"One size"}}},
		}
		if NewResolver(p).ShowPickers() {
			t.Error("pickers must be hidden when every option has one value")
		}
	})
}
