package views

import "github.com/eringen/artistsite/content"

// SiteConfig holds the site-wide settings every template can read.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "profile"
	Image       string
}

// Page is the data for every public page. Content is always fully merged.
type Page struct {
	Site    SiteConfig
	Meta    PageMeta
	Content content.SiteContent
	// JSONLD holds pre-encoded structured data blocks.
	JSONLD []string
	// Active names the nav entry to highlight.
	Active string
}

type AdminLogin struct {
	Site      SiteConfig
	CSRFToken string
	Error     string
}

// AdminSetup lists the configuration entries that must be provided before
// the admin can be used.
type AdminSetup struct {
	Site    SiteConfig
	Missing []string
}

type AdminDashboard struct {
	Site      SiteConfig
	Email     string
	CSRFToken string
	Sections  []AdminSection
	Status    string
	Message   string
	Dirty     bool
	ReadError string
}

// AdminSection is one editable block of the draft, shown as JSON.
type AdminSection struct {
	Name string
	JSON string
}
