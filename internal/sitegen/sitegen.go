package sitegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/view"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ManifestFile is written at the root of every export
const ManifestFile = "manifest.json"

// Manifest describes one export
type Manifest struct {
	BuildID     string    `json:"build_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Routes      []string  `json:"routes"`
}

// Builder exports the catalog pages as static HTML
type Builder struct {
	content  repository.ContentRepository
	products repository.ProductRepository
	catalog  service.CatalogService
	renderer *view.Renderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewBuilder creates a new Builder
func NewBuilder(
	content repository.ContentRepository,
	products repository.ProductRepository,
	catalog service.CatalogService,
	renderer *view.Renderer,
	logger *zap.Logger,
) *Builder {
	return &Builder{
		content:  content,
		products: products,
		catalog:  catalog,
		renderer: renderer,
		logger:   logger,
		now:      time.Now,
	}
}

// page is one route to export
type page struct {
	route string
	name  string
	load  func(ctx context.Context) (interface{}, error)
}

// Build renders every route into outDir as <route>/index.html, copies the
// static assets and writes the manifest. The cart is dynamic and is skipped.
func (b *Builder) Build(ctx context.Context, outDir string) (*Manifest, error) {
	pages, err := b.plan(ctx)
	if err != nil {
		return nil, err
	}

	manifest := &Manifest{
		BuildID:     uuid.NewString(),
		GeneratedAt: b.now().UTC(),
		Routes:      make([]string, 0, len(pages)),
	}
	b.logger.Info("Starting static export",
		zap.String("build_id", manifest.BuildID),
		zap.String("out", outDir),
		zap.Int("pages", len(pages)),
	)

	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := p.load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", p.route, err)
		}

		var buf bytes.Buffer
		if err := b.renderer.Render(&buf, p.name, data); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", p.route, err)
		}

		dir := routeDir(p.route)
		if dir != "" && !filepath.IsLocal(dir) {
			return nil, fmt.Errorf("route %s escapes the output directory", p.route)
		}
		if err := writeFile(filepath.Join(outDir, dir, "index.html"), buf.Bytes()); err != nil {
			return nil, err
		}
		manifest.Routes = append(manifest.Routes, p.route)
		b.logger.Debug("Exported page", zap.String("route", p.route))
	}

	if err := copyStatic(filepath.Join(outDir, "static")); err != nil {
		return nil, err
	}

	encoded, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := writeFile(filepath.Join(outDir, ManifestFile), encoded); err != nil {
		return nil, err
	}

	b.logger.Info("Static export completed",
		zap.String("build_id", manifest.BuildID),
		zap.Int("routes", len(manifest.Routes)),
	)
	return manifest, nil
}

func (b *Builder) plan(ctx context.Context) ([]page, error) {
	pages := []page{{
		route: "/",
		name:  view.PageHome,
		load:  func(ctx context.Context) (interface{}, error) { return b.catalog.Home(ctx) },
	}}

	collections, err := b.content.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	for _, c := range collections {
		handle := c.Handle
		if !b.safeSegment("collection", handle) {
			continue
		}
		pages = append(pages, page{
			route: "/collections/" + handle + "/",
			name:  view.PageCollection,
			load:  func(ctx context.Context) (interface{}, error) { return b.catalog.Collection(ctx, handle) },
		})
	}

	marketing, err := b.content.ListPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	for _, p := range marketing {
		slug := p.Slug
		if !b.safeSegment("page", slug) {
			continue
		}
		pages = append(pages, page{
			route: "/pages/" + slug + "/",
			name:  view.PageMarketing,
			load:  func(ctx context.Context) (interface{}, error) { return b.catalog.Page(ctx, slug) },
		})
	}

	products, err := b.products.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	for _, p := range products {
		handle := p.Handle
		if !b.safeSegment("product", handle) {
			continue
		}
		pages = append(pages, page{
			route: "/products/" + handle + "/",
			name:  view.PageProduct,
			load: func(ctx context.Context) (interface{}, error) {
				return b.catalog.Product(ctx, handle, noSelection)
			},
		})
	}

	return pages, nil
}

// safeSegment reports whether a handle or slug can be used as a single
// directory name; unusable ones are skipped with a warning
func (b *Builder) safeSegment(kind, segment string) bool {
	if segment == "" || segment == "." || segment == ".." || strings.ContainsAny(segment, `/\`) {
		b.logger.Warn("Skipping route with unsafe path segment",
			zap.String("kind", kind),
			zap.String("segment", segment),
		)
		return false
	}
	return true
}

// noSelection makes the product page show its default variant
func noSelection(string) (string, bool) { return "", false }

func routeDir(route string) string {
	return filepath.FromSlash(strings.Trim(route, "/"))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func copyStatic(dst string) error {
	static := view.StaticFS()
	return fs.WalkDir(static, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(static, path)
		if err != nil {
			return fmt.Errorf("failed to read static asset %s: %w", path, err)
		}
		return writeFile(filepath.Join(dst, filepath.FromSlash(path)), data)
	})
}
