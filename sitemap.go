package artistsite

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// sitePages are the public page paths, relative to the site URL.
var sitePages = [][]string{
	{},
	{"bio"},
	{"work"},
	{"live"},
	{"contact"},
	{"lab"},
	{"lab", "gear"},
	{"lab", "playlists"},
	{"lab", "tutorials"},
}

func (a *App) handleSitemap(c echo.Context) error {
	urls := make([]sitemapURL, 0, len(sitePages))
	for _, segs := range sitePages {
		urls = append(urls, sitemapURL{Loc: BuildURL(a.Config.URL, segs...)})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
