// Package imageurl builds resized image URLs for the commerce CDN.
package imageurl

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"storefront/internal/domain"
)

// Standard rendition widths used by the storefront pages
const (
	ThumbnailWidth = 300
	CardWidth      = 600
	PrimaryWidth   = 800
)

// Resize returns the CDN URL of the image scaled to width pixels. The CDN
// serves renditions by suffixing the file name with "_<width>x", so
// "pouch.jpg?v=1" becomes "pouch_300x.jpg?v=1". URLs without a file
// extension are returned unchanged.
func Resize(rawURL string, width int) string {
	if rawURL == "" || width <= 0 {
		return rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	ext := path.Ext(u.Path)
	if ext == "" {
		return rawURL
	}

	u.Path = fmt.Sprintf("%s_%dx%s", strings.TrimSuffix(u.Path, ext), width, ext)
	u.RawPath = ""
	return u.String()
}

// Source returns the resized URL for img, or placeholder when there is no image
func Source(img *domain.Image, width int, placeholder string) string {
	if img == nil || img.URL == "" {
		return placeholder
	}
	return Resize(img.URL, width)
}
