package artistsite

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/artistsite/content"
	"github.com/eringen/artistsite/views"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
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

// absURL resolves a content media reference against the site URL. Absolute
// URLs are returned unchanged.
func absURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil || r.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func marshalJSONLD(data map[string]any) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// MusicGroupJSONLD returns the schema.org MusicGroup block for the artist.
func MusicGroupJSONLD(cfg SiteConfig, sc content.SiteContent) string {
	data := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "MusicGroup",
		"name":        cfg.Author,
		"url":         BuildURL(cfg.URL),
		"description": cfg.Description,
	}
	if img := absURL(cfg.URL, sc.Bio.HeaderImage); img != "" {
		data["image"] = img
	}
	s := sc.Contact.Socials
	var same []string
	for _, link := range []string{s.Instagram, s.Twitter, s.Spotify, s.Soundcloud, s.Youtube} {
		if strings.TrimSpace(link) != "" {
			same = append(same, link)
		}
	}
	if len(same) > 0 {
		data["sameAs"] = same
	}
	return marshalJSONLD(data)
}

// MusicEventJSONLD returns the schema.org MusicEvent block for one show.
func MusicEventJSONLD(cfg SiteConfig, show content.Show) string {
	data := map[string]any{
		"@context":  "https://schema.org",
		"@type":     "MusicEvent",
		"name":      cfg.Author + " at " + show.Venue,
		"startDate": showDate(show),
		"location": map[string]any{
			"@type": "Place",
			"name":  show.Venue,
			"address": map[string]string{
				"@type":           "PostalAddress",
				"addressLocality": show.City,
				"addressCountry":  show.Country,
			},
		},
		"performer": map[string]string{
			"@type": "MusicGroup",
			"name":  cfg.Author,
		},
	}
	offer := map[string]string{"@type": "Offer", "availability": "https://schema.org/InStock"}
	if show.Status == content.StatusSoldOut {
		offer["availability"] = "https://schema.org/SoldOut"
	} else if show.TicketLink != "" {
		offer["url"] = show.TicketLink
	}
	data["offers"] = offer
	return marshalJSONLD(data)
}

// showDate joins the display date and year of a show, e.g. "Mar 14 2026".
func showDate(s content.Show) string {
	return strings.TrimSpace(s.Date + " " + s.Year)
}

func (a *App) siteView() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
	}
}

// newPage builds the data for a public page from the cached content.
func (a *App) newPage(c echo.Context, active, title, description string, segments ...string) views.Page {
	sc := a.Cache.Get(c.Request().Context())
	if title == "" {
		title = a.Config.Name
	} else {
		title = title + " | " + a.Config.Name
	}
	if description == "" {
		description = a.Config.Description
	}
	return views.Page{
		Site: a.siteView(),
		Meta: views.PageMeta{
			Title:       title,
			Description: description,
			URL:         BuildURL(a.Config.URL, segments...),
			OGType:      "website",
			Image:       absURL(a.Config.URL, sc.Home.LatestRelease.ArtworkSrc),
		},
		Content: sc,
		Active:  active,
	}
}
