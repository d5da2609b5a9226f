package artistsite

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/artistsite/content"
	"github.com/eringen/artistsite/views"
)

func (a *App) handleHome(c echo.Context) error {
	p := a.newPage(c, "home", "", "")
	p.JSONLD = []string{MusicGroupJSONLD(a.Config, p.Content)}
	return Render(c, a.Views.Home(p))
}

func (a *App) handleBio(c echo.Context) error {
	p := a.newPage(c, "bio", "Bio", "", "bio")
	p.Meta.OGType = "profile"
	if img := absURL(a.Config.URL, p.Content.Bio.HeaderImage); img != "" {
		p.Meta.Image = img
	}
	if len(p.Content.Bio.Paragraphs) > 0 {
		p.Meta.Description = truncate(p.Content.Bio.Paragraphs[0], 160)
	}
	p.JSONLD = []string{MusicGroupJSONLD(a.Config, p.Content)}
	return Render(c, a.Views.Bio(p))
}

func (a *App) handleWork(c echo.Context) error {
	p := a.newPage(c, "work", "Work", "", "work")
	return Render(c, a.Views.Work(p))
}

func (a *App) handleLive(c echo.Context) error {
	p := a.newPage(c, "live", "Live", "Upcoming shows by "+a.Config.Author, "live")
	for _, s := range p.Content.Live.Shows {
		p.JSONLD = append(p.JSONLD, MusicEventJSONLD(a.Config, s))
	}
	return Render(c, a.Views.Live(p))
}

func (a *App) handleContact(c echo.Context) error {
	p := a.newPage(c, "contact", "Contact", "", "contact")
	return Render(c, a.Views.Contact(p))
}

func (a *App) handleLab(c echo.Context) error {
	p := a.newPage(c, "lab", "Lab", "", "lab")
	return Render(c, a.Views.Lab(p))
}

func (a *App) handleLabPage(c echo.Context) error {
	slug := c.Param("slug")
	switch slug {
	case "gear":
		return Render(c, a.Views.LabGear(a.newPage(c, "lab", "Gear", "", "lab", slug)))
	case "playlists":
		return Render(c, a.Views.LabPlaylists(a.newPage(c, "lab", "Playlists", "", "lab", slug)))
	case "tutorials":
		return Render(c, a.Views.LabTutorials(a.newPage(c, "lab", "Tutorials", "", "lab", slug)))
	}
	return echo.ErrNotFound
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nDisallow: /admin/\nSitemap: " + strings.TrimRight(a.Config.URL, "/") + sitemapPath + "\n"
	return c.String(http.StatusOK, body)
}

func (a *App) errorPage(c echo.Context) views.Page {
	p := views.Page{Site: a.siteView(), Content: content.Defaults()}
	if a.Cache != nil {
		p.Content = a.Cache.Get(c.Request().Context())
	}
	p.Meta = views.PageMeta{Title: a.Config.Name, Description: a.Config.Description, OGType: "website"}
	return p
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.errorPage(c)))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.log.Error("server error", "path", c.Request().URL.Path, "error", err)
		_ = RenderStatus(c, code, a.Views.ServerError(a.errorPage(c)))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// truncate shortens s to at most n runes, cutting at a word boundary.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	cut := string(r[:n])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
