package artistsite

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/eringen/artistsite/auth"
	"github.com/eringen/artistsite/content"
	"github.com/eringen/artistsite/draft"
	"github.com/eringen/artistsite/media"
	"github.com/eringen/artistsite/revalidate"
	"github.com/eringen/artistsite/store"
	"github.com/eringen/artistsite/views"
)

// maxDraftBody bounds JSON request bodies on the draft endpoints.
const maxDraftBody = 2 << 20

func (a *App) handleAdmin(c echo.Context) error {
	if a.setupErr != nil {
		return a.renderSetup(c)
	}
	id, ok := currentIdentity(c)
	if !ok {
		return Render(c, a.Views.AdminLogin(views.AdminLogin{Site: a.siteView(), CSRFToken: CsrfToken(c)}))
	}
	return a.renderAdminDashboard(c, id)
}

func (a *App) renderSetup(c echo.Context) error {
	var keys []string
	var mce *MissingConfigError
	if errors.As(a.setupErr, &mce) {
		keys = mce.Keys
	}
	return RenderStatus(c, http.StatusServiceUnavailable, a.Views.AdminSetup(views.AdminSetup{Site: a.siteView(), Missing: keys}))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	if a.setupErr != nil {
		return a.renderSetup(c)
	}
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	id, err := a.Auth.SignIn(c.Request().Context(), c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		a.loginLimiter.Record(ip)
		a.log.Warn("admin sign-in failed", "ip", ip)
		return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(views.AdminLogin{
			Site:      a.siteView(),
			CSRFToken: CsrfToken(c),
			Error:     err.Error(),
		}))
	}
	a.loginLimiter.Reset(ip)
	if err := setAdminSession(c, id); err != nil {
		return err
	}
	a.log.Info("admin signed in", "email", id.Email)
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminLogout(c echo.Context) error {
	id, ok := currentIdentity(c)
	if err := clearAdminSession(c); err != nil {
		return err
	}
	if ok {
		a.Auth.SignOut(id)
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) renderAdminDashboard(c echo.Context, id auth.Identity) error {
	sess := a.editors.Get(id.SessionID)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()
	if err := sess.editor.WaitLoaded(ctx); err != nil {
		a.log.Warn("editor not loaded before render", "error", err)
	}

	d := sess.editor.Draft()
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	var bySection map[string]json.RawMessage
	if err := json.Unmarshal(raw, &bySection); err != nil {
		return err
	}
	sections := make([]views.AdminSection, 0, len(content.Sections))
	for _, name := range content.Sections {
		pretty, err := json.MarshalIndent(bySection[name], "", "  ")
		if err != nil {
			return err
		}
		sections = append(sections, views.AdminSection{Name: name, JSON: string(pretty)})
	}
	st := sess.editor.State()
	return Render(c, a.Views.AdminDashboard(views.AdminDashboard{
		Site:      a.siteView(),
		Email:     id.Email,
		CSRFToken: CsrfToken(c),
		Sections:  sections,
		Status:    string(st.Status),
		Message:   st.Message,
		Dirty:     st.Dirty,
		ReadError: st.ReadError,
	}))
}

// requireStore rejects API requests with 503 while the store is not
// configured.
func (a *App) requireStore(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if a.setupErr != nil {
			return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: a.setupErr.Error()})
		}
		return next(c)
	}
}

func (a *App) session(c echo.Context) *editorSession {
	return a.editors.Get(identity(c).SessionID)
}

func (a *App) draftJSON(c echo.Context, code int, sess *editorSession) error {
	return c.JSON(code, draftResponse{Draft: sess.editor.Draft(), State: sess.editor.State()})
}

func (a *App) handleGetDraft(c echo.Context) error {
	sess := a.session(c)
	if err := sess.editor.WaitLoaded(c.Request().Context()); err != nil {
		return err
	}
	return a.draftJSON(c, http.StatusOK, sess)
}

func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxDraftBody))
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, errBadRequest("empty body")
	}
	return body, nil
}

// handlePutDraft replaces the whole draft. Fields missing from the body
// take their default value.
func (a *App) handlePutDraft(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return a.apiError(c, err)
	}
	sc, err := content.MergeBody(body, content.Defaults())
	if err != nil {
		return a.apiError(c, badRequest(err))
	}
	sess := a.session(c)
	sess.editor.Replace(sc)
	return a.draftJSON(c, http.StatusOK, sess)
}

func (a *App) handlePutSection(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return a.apiError(c, err)
	}
	name := c.Param("section")
	sess := a.session(c)
	if err := sess.editor.Edit(func(sc *content.SiteContent) error {
		return content.ReplaceSection(sc, name, body)
	}); err != nil {
		return a.apiError(c, badRequest(err))
	}
	return a.draftJSON(c, http.StatusOK, sess)
}

func (a *App) handlePutParagraphs(c echo.Context) error {
	var req paragraphsRequest
	if err := c.Bind(&req); err != nil {
		return a.apiError(c, badRequest(err))
	}
	sess := a.session(c)
	_ = sess.editor.Edit(func(sc *content.SiteContent) error {
		sc.Bio.Paragraphs = content.SplitParagraphs(req.Text)
		return nil
	})
	return a.draftJSON(c, http.StatusOK, sess)
}

func (a *App) handleListOp(c echo.Context) error {
	var op content.ListOp
	if err := c.Bind(&op); err != nil {
		return a.apiError(c, badRequest(err))
	}
	sess := a.session(c)
	if err := sess.editor.Edit(func(sc *content.SiteContent) error {
		return content.Apply(sc, op, uuid.NewString)
	}); err != nil {
		return a.apiError(c, badRequest(err))
	}
	return a.draftJSON(c, http.StatusOK, sess)
}

func (a *App) handleSave(c echo.Context) error {
	sess := a.session(c)
	if err := sess.editor.Save(c.Request().Context()); err != nil {
		return a.apiError(c, err)
	}
	return c.JSON(http.StatusOK, stateResponse{State: sess.editor.State()})
}

// handleSeed fills fields missing from the stored document with defaults.
func (a *App) handleSeed(c echo.Context) error {
	ctx := c.Request().Context()
	if err := a.Content.EnsureSeeded(ctx); err != nil {
		return a.apiError(c, err)
	}
	if err := a.invalidator.Invalidate(ctx, revalidate.TagSiteContent); err != nil {
		a.log.Warn("invalidate after seed", "error", err)
	}
	return a.draftJSON(c, http.StatusOK, a.session(c))
}

type requestError struct{ err error }

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error { return &requestError{err: err} }

func errBadRequest(msg string) error { return &requestError{err: errors.New(msg)} }

// apiError maps err to a status code and writes the JSON error body.
func (a *App) apiError(c echo.Context, err error) error {
	code := http.StatusInternalServerError
	var reqErr *requestError
	var writeErr *store.ContentWriteError
	switch {
	case errors.As(err, &reqErr), errors.Is(err, media.ErrUnsupportedFileType):
		code = http.StatusBadRequest
	case errors.Is(err, media.ErrUploadFailed):
		code = http.StatusBadGateway
	case errors.Is(err, draft.ErrSaveInProgress):
		code = http.StatusConflict
	case errors.As(err, &writeErr):
		a.log.Error("content write failed", "op", writeErr.Op, "error", writeErr.Err)
	default:
		a.log.Error("admin request failed", "path", c.Path(), "error", err)
	}
	return c.JSON(code, errorResponse{Error: err.Error()})
}
