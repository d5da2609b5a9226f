package views

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/eringen/artistsite/content"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := c.Render(context.Background(), &b); err != nil {
		t.Fatalf("render: %v", err)
	}
	return b.String()
}

func testPage() Page {
	return Page{
		Site:    SiteConfig{Name: "Charlesky", URL: "https://example.com"},
		Meta:    PageMeta{Title: "Live", URL: "https://example.com/live/"},
		Content: content.Defaults(),
		JSONLD:  []string{`{"@type":"MusicGroup"}`},
	}
}

func TestPublicPagesRender(t *testing.T) {
	p := testPage()
	pages := map[string]func(Page) templ.Component{
		"home": Home, "bio": Bio, "work": Work, "live": Live, "contact": Contact,
		"lab": Lab, "gear": LabGear, "playlists": LabPlaylists, "tutorials": LabTutorials,
		"404": NotFound, "500": ServerError,
	}
	for name, fn := range pages {
		out := renderString(t, fn(p))
		if !strings.Contains(out, "<title>") || !strings.Contains(out, "Charlesky") {
			t.Errorf("%s: missing layout: %.200s", name, out)
		}
	}
}

func TestJSONLDIsNotEscaped(t *testing.T) {
	out := renderString(t, Home(testPage()))
	if !strings.Contains(out, `{"@type":"MusicGroup"}`) {
		t.Fatalf("JSON-LD block was escaped: %s", out)
	}
}

func TestHiddenCardsAreNotRendered(t *testing.T) {
	p := testPage()
	p.Content.Lab.Home.Cards = []content.LabCard{
		{ID: "a", Title: "Shown Card", Link: "/lab/gear/"},
		{ID: "b", Title: "Hidden Card", Link: "/lab/playlists/", Hidden: true},
	}
	out := renderString(t, Lab(p))
	if !strings.Contains(out, "Shown Card") || strings.Contains(out, "Hidden Card") {
		t.Fatalf("lab cards rendered wrong")
	}
}

func TestBioRendersInlineMarkdown(t *testing.T) {
	p := testPage()
	p.Content.Bio.Paragraphs = []string{"Born in **Berlin**", "<b>raw</b>"}
	out := renderString(t, Bio(p))
	if !strings.Contains(out, "<strong>Berlin</strong>") {
		t.Error("markdown not rendered")
	}
	if strings.Contains(out, "<b>raw</b>") {
		t.Error("raw HTML passed through")
	}
}

func TestSoldOutShowHasNoTicketLink(t *testing.T) {
	p := testPage()
	p.Content.Live.Shows = []content.Show{
		{ID: "1", Venue: "Berghain", Status: content.StatusSoldOut, TicketLink: "https://tickets.example/1"},
	}
	out := renderString(t, Live(p))
	if strings.Contains(out, "https://tickets.example/1") || !strings.Contains(out, "Sold Out") {
		t.Fatal("sold out show rendered a ticket link")
	}
}

func TestAdminPagesRender(t *testing.T) {
	site := SiteConfig{Name: "Charlesky"}
	login := renderString(t, AdminLoginPage(AdminLogin{Site: site, CSRFToken: "tok", Error: "invalid email or password"}))
	if !strings.Contains(login, `value="tok"`) || !strings.Contains(login, "invalid email or password") {
		t.Errorf("login page: %s", login)
	}
	setup := renderString(t, AdminSetupPage(AdminSetup{Site: site, Missing: []string{"DATABASE_URL"}}))
	if !strings.Contains(setup, "DATABASE_URL") {
		t.Errorf("setup page: %s", setup)
	}
	dash := renderString(t, AdminDashboardPage(AdminDashboard{
		Site: site, Email: "a@b.com", CSRFToken: "tok", Status: "idle",
		Sections: []AdminSection{{Name: "home", JSON: `{"tagline":"x"}`}},
	}))
	if !strings.Contains(dash, `data-section="home"`) || !strings.Contains(dash, "EventSource") {
		t.Errorf("dashboard missing editor: %.300s", dash)
	}
}

func TestStatusLabel(t *testing.T) {
	if StatusLabel(content.StatusSellingFast) != "Selling Fast" || StatusLabel(content.StatusAvailable) != "Tickets" {
		t.Error("unexpected labels")
	}
}
