package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pouchFixture(id, handle string, updatedAt time.Time) fixtureProduct {
	return fixtureProduct{
		id:        id,
		handle:    handle,
		title:     "Pouch " + handle,
		available: true,
		updatedAt: updatedAt,
		options:   []string{"Size", "Extras"},
		values: map[string][]string{
			"Size":   {"S", "M"},
			"Extras": {"None", "Gold"},
		},
		variants: []fixtureVariant{
			{id: id + "-s-none", price: "12.00", available: false, options: map[string]string{"Size": "S", "Extras": "None"}},
			{id: id + "-m-none", price: "15.50", available: true, imageURL: "https://cdn.example.com/m.jpg", options: map[string]string{"Size": "M", "Extras": "None"}},
			{id: id + "-m-gold", price: "18.00", available: true, imageURL: "https://cdn.example.com/gold.jpg", options: map[string]string{"Extras": "Gold", "Size": "M"}},
		},
		images: []string{"https://cdn.example.com/main.jpg", "https://cdn.example.com/alt.jpg"},
	}
}

func TestFindByHandleLoadsFullProduct(t *testing.T) {
	cleanup(t)
	seedProduct(t, pouchFixture("p1", "mini-pouch", time.Now()))

	repo := NewProductRepository(testDB)
	product, err := repo.FindByHandle(context.Background(), "mini-pouch")
	require.NoError(t, err)

	assert.Equal(t, "p1", product.ID)
	require.Len(t, product.Options, 2)
	assert.Equal(t, "Size", product.Options[0].Name)
	assert.Equal(t, []string{"S", "M"}, product.Options[0].Values)
	assert.Equal(t, []string{"None", "Gold"}, product.Options[1].Values)

	require.Len(t, product.Variants, 3)
	assert.Equal(t, "p1-s-none", product.Variants[0].ID)
	assert.Nil(t, product.Variants[0].Image)
	assert.Equal(t, "15.5", product.Variants[1].Price.String())
	require.NotNil(t, product.Variants[2].Image)

	// selected options follow the product's option order
	gold := product.Variants[2]
	require.Len(t, gold.SelectedOptions, 2)
	assert.Equal(t, "Size", gold.SelectedOptions[0].Name)
	assert.Equal(t, "Extras", gold.SelectedOptions[1].Name)

	assert.Len(t, product.Images, 2)
	assert.Equal(t, "https://cdn.example.com/main.jpg", product.Images[0].URL)
}

func TestFindByHandleNotFound(t *testing.T) {
	cleanup(t)

	_, err := NewProductRepository(testDB).FindByHandle(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrProductNotFound))
}

func TestListAvailableFiltersAndSorts(t *testing.T) {
	cleanup(t)
	now := time.Now().UTC().Truncate(time.Second)

	seedProduct(t, pouchFixture("old", "old-pouch", now.Add(-time.Hour)))
	seedProduct(t, pouchFixture("new", "new-pouch", now))

	hidden := pouchFixture("hidden", "hidden-pouch", now)
	hidden.available = false
	seedProduct(t, hidden)

	soldOut := pouchFixture("sold", "sold-out-pouch", now)
	for i := range soldOut.variants {
		soldOut.variants[i].available = false
	}
	seedProduct(t, soldOut)

	products, err := NewProductRepository(testDB).ListAvailable(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, "new-pouch", products[0].Handle)
	assert.Equal(t, "old-pouch", products[1].Handle)
	assert.Equal(t, "12", products[0].MinPrice.String())
	assert.Equal(t, "18", products[0].MaxPrice.String())
	require.NotNil(t, products[0].Image)
	assert.Equal(t, "https://cdn.example.com/main.jpg", products[0].Image.URL)
}

func TestListByCollection(t *testing.T) {
	cleanup(t)
	_, err := testDB.Exec(`INSERT INTO collections (id, handle, title) VALUES ('c1', 'mini-pouches', 'Mini pouches'), ('c2', 'keyfobs', 'Keyfobs')`)
	require.NoError(t, err)

	inCollection := pouchFixture("p1", "mini-pouch", time.Now())
	inCollection.collections = []string{"c1"}
	seedProduct(t, inCollection)

	other := pouchFixture("p2", "keyfob", time.Now())
	other.collections = []string{"c2"}
	seedProduct(t, other)

	products, err := NewProductRepository(testDB).ListByCollection(context.Background(), "mini-pouches")
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, "mini-pouch", products[0].Handle)
}

func TestProperty_VariantsCarryOneValuePerOption(t *testing.T) {
	repo := NewProductRepository(testDB)
	properties := gopter.NewProperties(nil)

	properties.Property("every stored variant reads back with one value per option", prop.ForAll(
		func(sizeCount int, extraCount int) bool {
			cleanup(t)

			p := fixtureProduct{
				id:        "grid",
				handle:    "grid-pouch",
				title:     "Grid pouch",
				available: true,
				updatedAt: time.Now(),
				options:   []string{"Size", "Extras"},
				values:    map[string][]string{},
			}
			for s := 0; s < sizeCount; s++ {
				p.values["Size"] = append(p.values["Size"], fmt.Sprintf("S%d", s))
			}
			for e := 0; e < extraCount; e++ {
				p.values["Extras"] = append(p.values["Extras"], fmt.Sprintf("E%d", e))
			}
			for _, s := range p.values["Size"] {
				for _, e := range p.values["Extras"] {
					p.variants = append(p.variants, fixtureVariant{
						id:        "grid-" + s + "-" + e,
						price:     "9.99",
						available: true,
						options:   map[string]string{"Size": s, "Extras": e},
					})
				}
			}
			seedProduct(t, p)

			product, err := repo.FindByHandle(context.Background(), "grid-pouch")
			if err != nil {
				t.Logf("FAIL: FindByHandle: %v", err)
				return false
			}
			if len(product.Variants) != sizeCount*extraCount {
				t.Logf("FAIL: expected %d variants, got %d", sizeCount*extraCount, len(product.Variants))
				return false
			}
			for _, v := range product.Variants {
				if len(v.SelectedOptions) != len(product.Options) {
					t.Logf("FAIL: variant %s has %d options", v.ID, len(v.SelectedOptions))
					return false
				}
				for _, opt := range product.Options {
					if _, ok := v.OptionValue(opt.Name); !ok {
						t.Logf("FAIL: variant %s lacks option %s", v.ID, opt.Name)
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(1, 4),
		gen.IntRange(1, 4),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
