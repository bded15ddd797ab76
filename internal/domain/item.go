package domain

import (
	"encoding/json"
	"time"
)

type NewsItem struct {
	ID           string     `db:"id" json:"id"`
	SiteSlug     string     `db:"site_slug" json:"site_slug"`
	Title        string     `db:"title" json:"title"`
	Content      string     `db:"content" json:"content"`
	ImageURL     *string    `db:"image_url" json:"image_url"`
	PublishedAt  *time.Time `db:"published_at" json:"published_at"`
	DisplayOrder int        `db:"display_order" json:"display_order"`
	IsPublished  bool       `db:"is_published" json:"is_published"`
}

type Sponsor struct {
	ID           string  `db:"id" json:"id"`
	SiteSlug     string  `db:"site_slug" json:"site_slug"`
	Name         string  `db:"name" json:"name"`
	Description  *string `db:"description" json:"description"`
	LogoURL      *string `db:"logo_url" json:"logo_url"`
	WebsiteURL   *string `db:"website_url" json:"website_url"`
	Tier         *string `db:"tier" json:"tier"`
	DisplayOrder int     `db:"display_order" json:"display_order"`
	IsPublished  bool    `db:"is_published" json:"is_published"`
}

type Resource struct {
	ID           string  `db:"id" json:"id"`
	SiteSlug     string  `db:"site_slug" json:"site_slug"`
	Title        string  `db:"title" json:"title"`
	Description  *string `db:"description" json:"description"`
	FileURL      string  `db:"file_url" json:"file_url"`
	Category     *string `db:"category" json:"category"`
	FileSize     *int64  `db:"file_size" json:"file_size"`
	DisplayOrder int     `db:"display_order" json:"display_order"`
	IsPublished  bool    `db:"is_published" json:"is_published"`
}

type Judge struct {
	ID           string  `db:"id" json:"id"`
	SiteSlug     string  `db:"site_slug" json:"site_slug"`
	Name         string  `db:"name" json:"name"`
	Title        *string `db:"title" json:"title"`
	Organization *string `db:"organization" json:"organization"`
	Bio          *string `db:"bio" json:"bio"`
	PhotoURL     *string `db:"photo_url" json:"photo_url"`
	DisplayOrder int     `db:"display_order" json:"display_order"`
	IsPublished  bool    `db:"is_published" json:"is_published"`
}

// Prize is shared by the main and additional prize tables.
type Prize struct {
	ID           string  `db:"id" json:"id"`
	SiteSlug     string  `db:"site_slug" json:"site_slug"`
	Title        string  `db:"title" json:"title"`
	Description  *string `db:"description" json:"description"`
	Amount       *string `db:"amount" json:"amount"`
	ImageURL     *string `db:"image_url" json:"image_url"`
	DisplayOrder int     `db:"display_order" json:"display_order"`
	IsPublished  bool    `db:"is_published" json:"is_published"`
}

type FAQ struct {
	ID           string `db:"id" json:"id"`
	SiteSlug     string `db:"site_slug" json:"site_slug"`
	Question     string `db:"question" json:"question"`
	Answer       string `db:"answer" json:"answer"`
	DisplayOrder int    `db:"display_order" json:"display_order"`
	IsPublished  bool   `db:"is_published" json:"is_published"`
}

type WorkExample struct {
	ID           string  `db:"id" json:"id"`
	SiteSlug     string  `db:"site_slug" json:"site_slug"`
	Title        string  `db:"title" json:"title"`
	Description  *string `db:"description" json:"description"`
	ImageURL     *string `db:"image_url" json:"image_url"`
	Author       *string `db:"author" json:"author"`
	DisplayOrder int     `db:"display_order" json:"display_order"`
	IsPublished  bool    `db:"is_published" json:"is_published"`
}

// SiteSettings is the per-tenant configuration row. It has no ordering or
// publish flag.
type SiteSettings struct {
	ID           string          `db:"id" json:"id"`
	SiteSlug     string          `db:"site_slug" json:"site_slug"`
	SiteName     string          `db:"site_name" json:"site_name"`
	ContactEmail *string         `db:"contact_email" json:"contact_email"`
	Theme        json.RawMessage `db:"theme" json:"theme,omitempty"`
}
