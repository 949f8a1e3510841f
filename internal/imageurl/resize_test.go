package imageurl

import (
	"testing"

	"storefront/internal/domain"
)

func TestResize(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		width int
		want  string
	}{
		{
			name:  "keeps query string",
			url:   "https://cdn.example.com/s/files/1/products/pouch.jpg?v=1612",
			width: 300,
			want:  "https://cdn.example.com/s/files/1/products/pouch_300x.jpg?v=1612",
		},
		{
			name:  "plain file",
			url:   "https://cdn.example.com/pouch.png",
			width: 800,
			want:  "https://cdn.example.com/pouch_800x.png",
		},
		{
			name:  "no extension",
			url:   "https://cdn.example.com/images/pouch",
			width: 300,
			want:  "https://cdn.example.com/images/pouch",
		},
		{
			name:  "host only",
			url:   "https://cdn.example.com",
			width: 300,
			want:  "https://cdn.example.com",
		},
		{
			name:  "empty",
			url:   "",
			width: 300,
			want:  "",
		},
		{
			name:  "non-positive width",
			url:   "https://cdn.example.com/pouch.jpg",
			width: 0,
			want:  "https://cdn.example.com/pouch.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resize(tt.url, tt.width); got != tt.want {
				t.Errorf("Resize(%q, %d) = %q, want %q", tt.url, tt.width, got, tt.want)
			}
		})
	}
}

func TestSourceFallsBackToPlaceholder(t *testing.T) {
	const placeholder = "/static/placeholder.png"

	if got := Source(nil, ThumbnailWidth, placeholder); got != placeholder {
		t.Errorf("expected placeholder, got %q", got)
	}
	if got := Source(&domain.Image{}, ThumbnailWidth, placeholder); got != placeholder {
		t.Errorf("expected placeholder for empty url, got %q", got)
	}

	img := &domain.Image{URL: "https://cdn.example.com/pouch.jpg"}
	if got := Source(img, ThumbnailWidth, placeholder); got != "https://cdn.example.com/pouch_300x.jpg" {
		t.Errorf("unexpected source %q", got)
	}
}
