package artistsite

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/artistsite/content"
	"github.com/eringen/artistsite/views"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	GUID        string `xml:"guid"`
}

// showsFeed lists every show in document order. The link of a show is its
// ticket page when tickets are on sale and the live page otherwise.
func showsFeed(cfg SiteConfig, live content.Live) rssXML {
	liveURL := BuildURL(cfg.URL, "live")
	items := make([]rssItem, 0, len(live.Shows))
	for _, s := range live.Shows {
		link := liveURL
		if s.Status != content.StatusSoldOut && s.TicketLink != "" {
			link = s.TicketLink
		}
		desc := s.City
		if s.Country != "" {
			desc += ", " + s.Country
		}
		desc += " · " + views.StatusLabel(s.Status)
		items = append(items, rssItem{
			Title:       showDate(s) + " · " + s.Venue,
			Link:        link,
			Description: desc,
			GUID:        liveURL + "#" + s.ID,
		})
	}
	title := cfg.Name + " · " + live.Headline
	if live.Headline == "" {
		title = cfg.Name
	}
	return rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       title,
			Link:        liveURL,
			Description: live.Subtitle,
			Items:       items,
		},
	}
}

func (a *App) handleFeed(c echo.Context) error {
	sc := a.Cache.Get(c.Request().Context())
	feed := showsFeed(a.Config, sc.Live)
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(feed)
}
