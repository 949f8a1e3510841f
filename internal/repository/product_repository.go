package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines read access to the synced commerce catalog
type ProductRepository interface {
	ListAvailable(ctx context.Context) ([]*domain.ProductSummary, error)
	ListByCollection(ctx context.Context, handle string) ([]*domain.ProductSummary, error)
	FindByHandle(ctx context.Context, handle string) (*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// A product is listed when it is for sale and at least one variant is too.
const summaryQuery = `
	SELECT p.id, p.handle, p.title, p.description, p.product_type, p.available_for_sale,
	       MIN(v.price), MAX(v.price),
	       COALESCE((
	           SELECT i.url FROM product_images i
	           WHERE i.product_id = p.id
	           ORDER BY i.position ASC
	           LIMIT 1
	       ), ''),
	       p.updated_at
	FROM products p
	JOIN product_variants v ON v.product_id = p.id
	WHERE p.available_for_sale = TRUE
	  AND EXISTS (
	      SELECT 1 FROM product_variants av
	      WHERE av.product_id = p.id AND av.available_for_sale = TRUE
	  )
	  %s
	GROUP BY p.id
	ORDER BY p.updated_at DESC, p.handle ASC
`

// ListAvailable returns every listable product, most recently updated first
func (r *productRepository) ListAvailable(ctx context.Context) ([]*domain.ProductSummary, error) {
	return r.listSummaries(ctx, fmt.Sprintf(summaryQuery, ""))
}

// ListByCollection returns the listable products of one collection
func (r *productRepository) ListByCollection(ctx context.Context, handle string) ([]*domain.ProductSummary, error) {
	filter := `AND EXISTS (
		SELECT 1 FROM product_collections pc
		JOIN collections c ON c.id = pc.collection_id
		WHERE pc.product_id = p.id AND c.handle = $1
	)`
	return r.listSummaries(ctx, fmt.Sprintf(summaryQuery, filter), handle)
}

func (r *productRepository) listSummaries(ctx context.Context, query string, args ...interface{}) ([]*domain.ProductSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.ProductSummary{}
	for rows.Next() {
		p := &domain.ProductSummary{}
		var imageURL string
		err := rows.Scan(
			&p.ID,
			&p.Handle,
			&p.Title,
			&p.Description,
			&p.ProductType,
			&p.AvailableForSale,
			&p.MinPrice,
			&p.MaxPrice,
			&imageURL,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if imageURL != "" {
			p.Image = &domain.Image{URL: imageURL}
		}
		products = append(products, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// FindByHandle loads a product with its options, variants and images
func (r *productRepository) FindByHandle(ctx context.Context, handle string) (*domain.Product, error) {
	query := `
		SELECT id, handle, title, description, description_html, product_type, available_for_sale, updated_at
		FROM products
		WHERE handle = $1
	`

	product := &domain.Product{}
	err := r.db.QueryRowContext(ctx, query, handle).Scan(
		&product.ID,
		&product.Handle,
		&product.Title,
		&product.Description,
		&product.DescriptionHTML,
		&product.ProductType,
		&product.AvailableForSale,
		&product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by handle: %w", err)
	}

	if product.Options, err = r.loadOptions(ctx, product.ID); err != nil {
		return nil, err
	}
	if product.Variants, err = r.loadVariants(ctx, product.ID); err != nil {
		return nil, err
	}
	if product.Images, err = r.loadImages(ctx, product.ID); err != nil {
		return nil, err
	}

	return product, nil
}

func (r *productRepository) loadOptions(ctx context.Context, productID string) ([]domain.Option, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.position, o.name, COALESCE(ov.value, '')
		FROM product_options o
		LEFT JOIN product_option_values ov
		       ON ov.product_id = o.product_id AND ov.option_position = o.position
		WHERE o.product_id = $1
		ORDER BY o.position ASC, ov.position ASC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product options: %w", err)
	}
	defer rows.Close()

	options := []domain.Option{}
	lastPosition := -1
	for rows.Next() {
		var (
			position    int
			name, value string
		)
		if err := rows.Scan(&position, &name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan product option: %w", err)
		}
		if position != lastPosition {
			options = append(options, domain.Option{Name: name, Values: []string{}})
			lastPosition = position
		}
		if value != "" {
			current := &options[len(options)-1]
			current.Values = append(current.Values, value)
		}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product options: %w", err)
	}

	return options, nil
}

func (r *productRepository) loadVariants(ctx context.Context, productID string) ([]domain.Variant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT v.id, v.title, v.sku, v.price, v.available_for_sale, v.image_url,
		       COALESCE(so.name, ''), COALESCE(so.value, '')
		FROM product_variants v
		LEFT JOIN variant_selected_options so ON so.variant_id = v.id
		LEFT JOIN product_options o ON o.product_id = v.product_id AND o.name = so.name
		WHERE v.product_id = $1
		ORDER BY v.position ASC, v.id ASC, o.position ASC NULLS LAST, so.name ASC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product variants: %w", err)
	}
	defer rows.Close()

	variants := []domain.Variant{}
	for rows.Next() {
		var (
			v                   domain.Variant
			imageURL            string
			optionName, optionV string
		)
		err := rows.Scan(&v.ID, &v.Title, &v.SKU, &v.Price, &v.AvailableForSale, &imageURL, &optionName, &optionV)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product variant: %w", err)
		}

		if n := len(variants); n == 0 || variants[n-1].ID != v.ID {
			if imageURL != "" {
				v.Image = &domain.Image{URL: imageURL}
			}
			v.SelectedOptions = []domain.SelectedOption{}
			variants = append(variants, v)
		}
		if optionName != "" {
			current := &variants[len(variants)-1]
			current.SelectedOptions = append(current.SelectedOptions, domain.SelectedOption{Name: optionName, Value: optionV})
		}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product variants: %w", err)
	}

	return variants, nil
}

func (r *productRepository) loadImages(ctx context.Context, productID string) ([]domain.Image, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT url, alt
		FROM product_images
		WHERE product_id = $1
		ORDER BY position ASC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product images: %w", err)
	}
	defer rows.Close()

	images := []domain.Image{}
	for rows.Next() {
		var img domain.Image
		if err := rows.Scan(&img.URL, &img.Alt); err != nil {
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		images = append(images, img)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product images: %w", err)
	}

	return images, nil
}
