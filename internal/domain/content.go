package domain

import "time"

// SiteSettings holds the site-wide settings managed in the content backend
type SiteSettings struct {
	Title         string       `json:"title" db:"title"`
	Description   string       `json:"description" db:"description"`
	SiteURL       string       `json:"site_url" db:"site_url"`
	ShareImageURL string       `json:"share_image_url" db:"share_image_url"`
	SocialLinks   []SocialLink `json:"social_links"`
}

// SocialLink points at one of the shop's social network profiles
type SocialLink struct {
	Key     string `json:"key" db:"key"`
	Network string `json:"network" db:"social_network"`
	Link    string `json:"link" db:"link"`
}

// Page is a marketing page authored in the content backend
type Page struct {
	ID       string `json:"id" db:"id"`
	Slug     string `json:"slug" db:"slug"`
	Title    string `json:"title" db:"title"`
	BodyHTML string `json:"body_html" db:"body_html"`
}

// Collection groups products under a handle
type Collection struct {
	ID     string `json:"id" db:"id"`
	Handle string `json:"handle" db:"handle"`
	Title  string `json:"title" db:"title"`
}

// InstagramPost is a post shown in the social widget
type InstagramPost struct {
	ID        string    `json:"id" db:"id"`
	Permalink string    `json:"permalink" db:"permalink"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	Caption   string    `json:"caption" db:"caption"`
	PostedAt  time.Time `json:"posted_at" db:"posted_at"`
}

// NavItem is an entry of the sidebar navigation
type NavItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}
