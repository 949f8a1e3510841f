package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"
)

var (
	ErrSiteSettingsNotFound = errors.New("site settings not found")
	ErrPageNotFound         = errors.New("page not found")
	ErrCollectionNotFound   = errors.New("collection not found")
)

// ContentRepository reads site content published by the content backend
type ContentRepository interface {
	SiteSettings(ctx context.Context) (*domain.SiteSettings, error)
	ListPages(ctx context.Context) ([]*domain.Page, error)
	FindPageBySlug(ctx context.Context, slug string) (*domain.Page, error)
	ListCollections(ctx context.Context) ([]*domain.Collection, error)
	FindCollectionByHandle(ctx context.Context, handle string) (*domain.Collection, error)
	ListInstagramPosts(ctx context.Context, limit int) ([]*domain.InstagramPost, error)
}

type contentRepository struct {
	db *sql.DB
}

// NewContentRepository creates a new instance of ContentRepository
func NewContentRepository(db *sql.DB) ContentRepository {
	return &contentRepository{db: db}
}

// SiteSettings loads the singleton settings row with its social links
func (r *contentRepository) SiteSettings(ctx context.Context) (*domain.SiteSettings, error) {
	query := `
		SELECT title, description, site_url, share_image_url
		FROM site_settings
		WHERE id = 1
	`

	settings := &domain.SiteSettings{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&settings.Title,
		&settings.Description,
		&settings.SiteURL,
		&settings.ShareImageURL,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSiteSettingsNotFound
		}
		return nil, fmt.Errorf("failed to load site settings: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT key, social_network, link
		FROM social_links
		ORDER BY position ASC, key ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list social links: %w", err)
	}
	defer rows.Close()

	settings.SocialLinks = []domain.SocialLink{}
	for rows.Next() {
		var link domain.SocialLink
		if err := rows.Scan(&link.Key, &link.Network, &link.Link); err != nil {
			return nil, fmt.Errorf("failed to scan social link: %w", err)
		}
		settings.SocialLinks = append(settings.SocialLinks, link)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating social links: %w", err)
	}

	return settings, nil
}

// ListPages returns all marketing pages sorted by title
func (r *contentRepository) ListPages(ctx context.Context) ([]*domain.Page, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, slug, title, body_html
		FROM pages
		ORDER BY title ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	pages := []*domain.Page{}
	for rows.Next() {
		page := &domain.Page{}
		if err := rows.Scan(&page.ID, &page.Slug, &page.Title, &page.BodyHTML); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, page)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pages: %w", err)
	}

	return pages, nil
}

// FindPageBySlug retrieves a marketing page by its slug
func (r *contentRepository) FindPageBySlug(ctx context.Context, slug string) (*domain.Page, error) {
	page := &domain.Page{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, slug, title, body_html
		FROM pages
		WHERE slug = $1
	`, slug).Scan(&page.ID, &page.Slug, &page.Title, &page.BodyHTML)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("failed to find page by slug: %w", err)
	}

	return page, nil
}

// ListCollections returns all collections sorted by handle
func (r *contentRepository) ListCollections(ctx context.Context) ([]*domain.Collection, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, handle, title
		FROM collections
		ORDER BY handle ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	collections := []*domain.Collection{}
	for rows.Next() {
		c := &domain.Collection{}
		if err := rows.Scan(&c.ID, &c.Handle, &c.Title); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		collections = append(collections, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collections: %w", err)
	}

	return collections, nil
}

// FindCollectionByHandle retrieves a collection by handle
func (r *contentRepository) FindCollectionByHandle(ctx context.Context, handle string) (*domain.Collection, error) {
	c := &domain.Collection{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, handle, title
		FROM collections
		WHERE handle = $1
	`, handle).Scan(&c.ID, &c.Handle, &c.Title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCollectionNotFound
		}
		return nil, fmt.Errorf("failed to find collection by handle: %w", err)
	}

	return c, nil
}

// ListInstagramPosts returns the newest posts first
func (r *contentRepository) ListInstagramPosts(ctx context.Context, limit int) ([]*domain.InstagramPost, error) {
	if limit <= 0 {
		limit = 6
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, permalink, image_url, caption, posted_at
		FROM instagram_posts
		ORDER BY posted_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list instagram posts: %w", err)
	}
	defer rows.Close()

	posts := []*domain.InstagramPost{}
	for rows.Next() {
		p := &domain.InstagramPost{}
		if err := rows.Scan(&p.ID, &p.Permalink, &p.ImageURL, &p.Caption, &p.PostedAt); err != nil {
			return nil, fmt.Errorf("failed to scan instagram post: %w", err)
		}
		posts = append(posts, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating instagram posts: %w", err)
	}

	return posts, nil
}
