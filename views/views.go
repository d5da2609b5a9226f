// Package views holds the default page templates. Each page is an
// html/template set (layout plus page file) exposed as a templ.Component so
// callers can swap any of them for their own templ components.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"
)

//go:embed templates/*.html
var templateFS embed.FS

// page file -> template set rooted at layout.html
var sets = map[string]*template.Template{}

func init() {
	public := []string{
		"home", "bio", "work", "live", "contact",
		"lab", "lab_gear", "lab_playlists", "lab_tutorials",
		"not_found", "server_error",
	}
	for _, name := range public {
		sets[name] = template.Must(template.New("layout.html").Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
	}
	for _, name := range []string{"admin_login", "admin_setup", "admin_dashboard"} {
		sets[name] = template.Must(template.New("admin_layout.html").Funcs(funcs).
			ParseFS(templateFS, "templates/admin_layout.html", "templates/"+name+".html"))
	}
}

func page(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		t, ok := sets[name]
		if !ok {
			return fmt.Errorf("views: unknown template %q", name)
		}
		return t.Execute(w, data)
	})
}

func Home(p Page) templ.Component         { return page("home", p) }
func Bio(p Page) templ.Component          { return page("bio", p) }
func Work(p Page) templ.Component         { return page("work", p) }
func Live(p Page) templ.Component         { return page("live", p) }
func Contact(p Page) templ.Component      { return page("contact", p) }
func Lab(p Page) templ.Component          { return page("lab", p) }
func LabGear(p Page) templ.Component      { return page("lab_gear", p) }
func LabPlaylists(p Page) templ.Component { return page("lab_playlists", p) }
func LabTutorials(p Page) templ.Component { return page("lab_tutorials", p) }
func NotFound(p Page) templ.Component     { return page("not_found", p) }
func ServerError(p Page) templ.Component  { return page("server_error", p) }

func AdminLoginPage(d AdminLogin) templ.Component { return page("admin_login", d) }

// AdminSetupPage is shown instead of the login form while store
// configuration is missing.
func AdminSetupPage(d AdminSetup) templ.Component { return page("admin_setup", d) }

func AdminDashboardPage(d AdminDashboard) templ.Component { return page("admin_dashboard", d) }
