package views

import (
	"html/template"
	"net/url"
	"path"
	"strings"

	"github.com/eringen/artistsite/content"
	"github.com/eringen/artistsite/markdown"
)

// buildURL joins path segments onto a base URL, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// StatusLabel is the ticket badge text for a show.
func StatusLabel(s content.ShowStatus) string {
	switch s {
	case content.StatusSoldOut:
		return "Sold Out"
	case content.StatusSellingFast:
		return "Selling Fast"
	default:
		return "Tickets"
	}
}

// NavClass returns CSS classes for a nav link, with active variant.
func NavClass(active bool) string {
	base := "uppercase tracking-[0.2em] text-xs hover:opacity-100 transition"
	if active {
		return base + " opacity-100 underline underline-offset-8"
	}
	return base + " opacity-60"
}

// socialLinks returns the non-empty profile links in display order.
func socialLinks(s content.Socials) [][2]string {
	all := [][2]string{
		{"Instagram", s.Instagram},
		{"Twitter", s.Twitter},
		{"Spotify", s.Spotify},
		{"SoundCloud", s.Soundcloud},
		{"YouTube", s.Youtube},
	}
	out := all[:0]
	for _, l := range all {
		if strings.TrimSpace(l[1]) != "" {
			out = append(out, l)
		}
	}
	return out
}

var funcs = template.FuncMap{
	"url":         buildURL,
	"statusLabel": StatusLabel,
	"navClass":    NavClass,
	"socials":     socialLinks,
	"md": func(s string) template.HTML {
		return template.HTML(markdown.FormatInline(s))
	},
	"jsonld": func(s string) template.JS {
		return template.JS(s)
	},
	"isSoldOut": func(s content.ShowStatus) bool {
		return s == content.StatusSoldOut
	},
}
