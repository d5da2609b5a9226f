package artistsite

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/eringen/artistsite/content"
	"github.com/eringen/artistsite/draft"
	"github.com/eringen/artistsite/media"
)

const (
	testEmail    = "owner@example.com"
	testPassword = "correct horse battery"
)

func testConfig(t *testing.T) SiteConfig {
	t.Helper()
	dir := t.TempDir()
	return SiteConfig{
		Name:          "Test Artist",
		URL:           "http://example.test",
		Author:        "Test Artist",
		Database:      DatabaseConfig{Driver: "sqlite", URL: filepath.Join(dir, "site.db")},
		Media:         MediaConfig{Dir: filepath.Join(dir, "media")},
		AdminEmail:    testEmail,
		AdminPassword: testPassword,
		SessionSecret: "0123456789abcdef0123456789abcdef",
	}
}

type testSite struct {
	t      *testing.T
	app    *App
	srv    *httptest.Server
	client *http.Client
}

func newTestSite(t *testing.T, cfg SiteConfig) *testSite {
	t.Helper()
	a := New(cfg, WithStaticDir(t.TempDir()))
	if err := a.Setup(context.Background()); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	srv := httptest.NewServer(a.Echo)
	t.Cleanup(func() {
		srv.Close()
		_ = a.Close()
	})
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &testSite{t: t, app: a, srv: srv, client: &http.Client{Jar: jar, Timeout: 10 * time.Second}}
}

// csrf returns the token the CSRF middleware set as a cookie, fetching a
// page first when none is set yet.
func (s *testSite) csrf() string {
	s.t.Helper()
	u, _ := url.Parse(s.srv.URL)
	for i := 0; i < 2; i++ {
		for _, c := range s.client.Jar.Cookies(u) {
			if c.Name == "_csrf" {
				return c.Value
			}
		}
		s.get("/admin/")
	}
	s.t.Fatal("no csrf cookie")
	return ""
}

func (s *testSite) get(path string) (int, string) {
	s.t.Helper()
	resp, err := s.client.Get(s.srv.URL + path)
	if err != nil {
		s.t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func (s *testSite) do(method, path, contentType string, body io.Reader) (int, []byte) {
	s.t.Helper()
	token := s.csrf()
	req, err := http.NewRequest(method, s.srv.URL+path, body)
	if err != nil {
		s.t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-CSRF-Token", token)
	resp, err := s.client.Do(req)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

func (s *testSite) doJSON(method, path string, v any) (int, []byte) {
	s.t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		s.t.Fatal(err)
	}
	return s.do(method, path, "application/json", bytes.NewReader(b))
}

func (s *testSite) login(email, password string) int {
	s.t.Helper()
	form := url.Values{"email": {email}, "password": {password}}
	code, _ := s.do(http.MethodPost, "/admin/login/", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	return code
}

func decodeDraft(t *testing.T, body []byte) draftResponse {
	t.Helper()
	var dr draftResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		t.Fatalf("decode draft response %s: %v", body, err)
	}
	return dr
}

func TestPublicPagesServeDefaults(t *testing.T) {
	s := newTestSite(t, testConfig(t))
	def := content.Defaults()

	pages := map[string]string{
		"/":               def.Home.Tagline,
		"/bio/":           def.Bio.Headline,
		"/live/":          def.Live.Headline,
		"/work/":          def.Work.Headline,
		"/contact/":       def.Contact.Headline,
		"/lab/":           "",
		"/lab/gear/":      "",
		"/lab/playlists/": "",
		"/lab/tutorials/": "",
	}
	for path, want := range pages {
		code, body := s.get(path)
		if code != http.StatusOK {
			t.Errorf("GET %s = %d", path, code)
			continue
		}
		if want != "" && !strings.Contains(body, html.EscapeString(want)) {
			t.Errorf("GET %s: missing %q", path, want)
		}
	}
}

func TestUnknownPagesRenderNotFound(t *testing.T) {
	s := newTestSite(t, testConfig(t))
	for _, path := range []string{"/nope/", "/lab/synths/"} {
		if code, _ := s.get(path); code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, code)
		}
	}
}

func TestFeedSitemapRobots(t *testing.T) {
	s := newTestSite(t, testConfig(t))

	code, body := s.get("/live/feed.xml")
	if code != http.StatusOK || !strings.Contains(body, "<rss") {
		t.Fatalf("feed = %d %q", code, body)
	}
	if shows := content.Defaults().Live.Shows; len(shows) > 0 && !strings.Contains(body, shows[0].Venue) {
		t.Errorf("feed missing venue %q", shows[0].Venue)
	}

	code, body = s.get("/sitemap.xml")
	if code != http.StatusOK || !strings.Contains(body, "http://example.test/lab/gear/") {
		t.Fatalf("sitemap = %d %q", code, body)
	}

	code, body = s.get("/robots.txt")
	if code != http.StatusOK || !strings.Contains(body, "Sitemap: http://example.test/sitemap.xml") {
		t.Fatalf("robots = %d %q", code, body)
	}
}

func TestAdminAPIRequiresSession(t *testing.T) {
	s := newTestSite(t, testConfig(t))
	if code, _ := s.get("/admin/api/draft/"); code != http.StatusUnauthorized {
		t.Fatalf("GET draft without session = %d, want 401", code)
	}
	_, body := s.get("/admin/")
	if !strings.Contains(body, `name="password"`) {
		t.Fatal("admin should render the login page")
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	s := newTestSite(t, testConfig(t))
	if code := s.login(testEmail, "wrong"); code != http.StatusUnauthorized {
		t.Fatalf("bad login = %d, want 401", code)
	}
	if code, _ := s.get("/admin/api/draft/"); code != http.StatusUnauthorized {
		t.Fatalf("draft after bad login = %d", code)
	}
}

func TestLoginRateLimited(t *testing.T) {
	s := newTestSite(t, testConfig(t))
	for i := 0; i < 5; i++ {
		s.login(testEmail, "wrong")
	}
	if code := s.login(testEmail, testPassword); code != http.StatusTooManyRequests {
		t.Fatalf("login after 5 failures = %d, want 429", code)
	}
}

func TestEditSaveAndRender(t *testing.T) {
	s := newTestSite(t, testConfig(t))
	if code := s.login(testEmail, testPassword); code != http.StatusOK {
		t.Fatalf("login = %d", code)
	}

	code, body := s.do(http.MethodGet, "/admin/api/draft/", "", nil)
	if code != http.StatusOK {
		t.Fatalf("GET draft = %d %s", code, body)
	}
	dr := decodeDraft(t, body)
	if dr.State.Dirty {
		t.Fatal("fresh draft should not be dirty")
	}

	code, body = s.doJSON(http.MethodPut, "/admin/api/draft/bio/", map[string]string{"headline": "NEW HEADLINE"})
	if code != http.StatusOK {
		t.Fatalf("PUT bio = %d %s", code, body)
	}
	dr = decodeDraft(t, body)
	if dr.Draft.Bio.Headline != "NEW HEADLINE" || !dr.State.Dirty || dr.State.Status != draft.StatusEditing {
		t.Fatalf("after edit: %+v", dr.State)
	}
	if len(dr.Draft.Bio.Paragraphs) == 0 {
		t.Fatal("section replace dropped paragraphs")
	}

	// Not published until saved.
	if _, page := s.get("/bio/"); strings.Contains(page, "NEW HEADLINE") {
		t.Fatal("unsaved draft leaked to the public page")
	}

	code, body = s.do(http.MethodPost, "/admin/api/save/", "", nil)
	if code != http.StatusOK {
		t.Fatalf("save = %d %s", code, body)
	}
	var sr stateResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		t.Fatal(err)
	}
	if sr.State.Status != draft.StatusSaved {
		t.Fatalf("status after save = %q", sr.State.Status)
	}

	if _, page := s.get("/bio/"); !strings.Contains(page, "NEW HEADLINE") {
		t.Fatal("saved headline not rendered; cache was not invalidated")
	}
}

func TestListOpsAndUnknownSection(t *testing.T) {
	s := newTestSite(t, testConfig(t))
	s.login(testEmail, testPassword)

	_, body := s.do(http.MethodGet, "/admin/api/draft/", "", nil)
	before := len(decodeDraft(t, body).Draft.Live.Shows)

	code, body := s.doJSON(http.MethodPost, "/admin/api/draft/list/", content.ListOp{List: content.ListShows, Op: content.OpAdd})
	if code != http.StatusOK {
		t.Fatalf("add show = %d %s", code, body)
	}
	shows := decodeDraft(t, body).Draft.Live.Shows
	if len(shows) != before+1 || shows[len(shows)-1].ID == "" {
		t.Fatalf("shows after add: %+v", shows)
	}

	code, _ = s.doJSON(http.MethodPost, "/admin/api/draft/list/", content.ListOp{List: "nope", Op: content.OpAdd})
	if code != http.StatusBadRequest {
		t.Fatalf("unknown list = %d, want 400", code)
	}
	code, _ = s.doJSON(http.MethodPut, "/admin/api/draft/nope/", map[string]string{})
	if code != http.StatusBadRequest {
		t.Fatalf("unknown section = %d, want 400", code)
	}
}

func TestReplaceDraftFillsDefaults(t *testing.T) {
	s := newTestSite(t, testConfig(t))
	s.login(testEmail, testPassword)

	code, body := s.doJSON(http.MethodPut, "/admin/api/draft/", map[string]any{
		"home": map[string]string{"tagline": "Only this"},
	})
	if code != http.StatusOK {
		t.Fatalf("PUT draft = %d %s", code, body)
	}
	d := decodeDraft(t, body).Draft
	if d.Home.Tagline != "Only this" {
		t.Errorf("tagline = %q", d.Home.Tagline)
	}
	if d.Bio.Headline != content.Defaults().Bio.Headline {
		t.Errorf("missing section not defaulted: %q", d.Bio.Headline)
	}

	if code, _ := s.do(http.MethodPut, "/admin/api/draft/", "application/json", strings.NewReader("{not json")); code != http.StatusBadRequest {
		t.Errorf("malformed body = %d, want 400", code)
	}
}

func TestBioParagraphs(t *testing.T) {
	s := newTestSite(t, testConfig(t))
	s.login(testEmail, testPassword)
	code, body := s.doJSON(http.MethodPut, "/admin/api/draft/bio/paragraphs/", paragraphsRequest{Text: "one\n\ntwo\n"})
	if code != http.StatusOK {
		t.Fatalf("PUT paragraphs = %d %s", code, body)
	}
	got := decodeDraft(t, body).Draft.Bio.Paragraphs
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Fatalf("paragraphs = %q", got)
	}
}

func uploadBody(t *testing.T, field, name string, data []byte) (string, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		_ = w.WriteField("field", field)
	}
	fw, err := w.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write(data)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return w.FormDataContentType(), &buf
}

func TestMediaUploadListDelete(t *testing.T) {
	s := newTestSite(t, testConfig(t))
	s.login(testEmail, testPassword)

	ct, body := uploadBody(t, "home.latestRelease.audioSrc", "My Track.mp3", []byte("ID3 fake audio"))
	code, out := s.do(http.MethodPost, "/admin/api/media/?kind=audio", ct, body)
	if code != http.StatusCreated {
		t.Fatalf("upload = %d %s", code, out)
	}
	var ur uploadResponse
	if err := json.Unmarshal(out, &ur); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(ur.URL, "My_Track.mp3") && !strings.Contains(ur.URL, ".mp3") {
		t.Fatalf("upload url = %q", ur.URL)
	}
	if !ur.State.Dirty {
		t.Error("field reference should dirty the draft")
	}

	_, out = s.do(http.MethodGet, "/admin/api/draft/", "", nil)
	if got := decodeDraft(t, out).Draft.Home.LatestRelease.AudioSrc; got != ur.URL {
		t.Fatalf("audioSrc = %q, want %q", got, ur.URL)
	}

	code, out = s.do(http.MethodGet, "/admin/api/media/?kind=audio", "", nil)
	if code != http.StatusOK {
		t.Fatalf("list = %d %s", code, out)
	}
	var lr mediaListResponse
	if err := json.Unmarshal(out, &lr); err != nil {
		t.Fatal(err)
	}
	if len(lr.Assets) != 1 || lr.Assets[0].URL != ur.URL {
		t.Fatalf("assets = %+v", lr.Assets)
	}

	q := url.Values{"url": {ur.URL}, "field": {"home.latestRelease.audioSrc"}}
	code, out = s.do(http.MethodDelete, "/admin/api/media/?"+q.Encode(), "", nil)
	if code != http.StatusOK {
		t.Fatalf("delete = %d %s", code, out)
	}
	if got := decodeDraft(t, out).Draft.Home.LatestRelease.AudioSrc; got != "" {
		t.Fatalf("audioSrc after delete = %q", got)
	}
	_, out = s.do(http.MethodGet, "/admin/api/media/?kind=audio", "", nil)
	lr = mediaListResponse{}
	_ = json.Unmarshal(out, &lr)
	if len(lr.Assets) != 0 {
		t.Fatalf("assets after delete = %+v", lr.Assets)
	}
}

// brokenBucket fails every write and serves the rest from the wrapped bucket.
type brokenBucket struct{ media.Bucket }

func (brokenBucket) Put(context.Context, string, io.Reader, int64, string, func(int64)) error {
	return errors.New("bucket unavailable")
}

func TestMediaUploadFailureLeavesDraft(t *testing.T) {
	s := newTestSite(t, testConfig(t))
	s.app.Media = media.NewManager(brokenBucket{s.app.Media.Bucket()}, nil)
	s.login(testEmail, testPassword)

	_, out := s.do(http.MethodGet, "/admin/api/draft/", "", nil)
	before := decodeDraft(t, out).Draft.Home.LatestRelease.AudioSrc

	ct, body := uploadBody(t, "home.latestRelease.audioSrc", "track.mp3", []byte("ID3 fake audio"))
	if code, out := s.do(http.MethodPost, "/admin/api/media/?kind=audio", ct, body); code != http.StatusBadGateway {
		t.Fatalf("upload = %d %s, want 502", code, out)
	}

	_, out = s.do(http.MethodGet, "/admin/api/draft/", "", nil)
	dr := decodeDraft(t, out)
	if got := dr.Draft.Home.LatestRelease.AudioSrc; got != before {
		t.Fatalf("audioSrc = %q after failed upload, want %q", got, before)
	}
	if dr.State.Dirty {
		t.Fatal("failed upload should not dirty the draft")
	}
}

func TestMediaRejectsUnsupportedType(t *testing.T) {
	s := newTestSite(t, testConfig(t))
	s.login(testEmail, testPassword)
	ct, body := uploadBody(t, "", "notes.txt", []byte("hello"))
	if code, out := s.do(http.MethodPost, "/admin/api/media/?kind=audio", ct, body); code != http.StatusBadRequest {
		t.Fatalf("upload txt = %d %s", code, out)
	}
}

func TestDeleteExternalURLSucceeds(t *testing.T) {
	s := newTestSite(t, testConfig(t))
	s.login(testEmail, testPassword)
	q := url.Values{"url": {"https://cdn.elsewhere.test/photo.jpg"}}
	if code, out := s.do(http.MethodDelete, "/admin/api/media/?"+q.Encode(), "", nil); code != http.StatusOK {
		t.Fatalf("delete external = %d %s", code, out)
	}
}

func TestLogoutDropsEditor(t *testing.T) {
	s := newTestSite(t, testConfig(t))
	s.login(testEmail, testPassword)
	s.do(http.MethodGet, "/admin/api/draft/", "", nil)
	if n := s.app.editors.Len(); n != 1 {
		t.Fatalf("editors = %d, want 1", n)
	}
	s.do(http.MethodPost, "/admin/logout/", "", nil)
	if n := s.app.editors.Len(); n != 0 {
		t.Fatalf("editors after logout = %d, want 0", n)
	}
	if code, _ := s.get("/admin/api/draft/"); code != http.StatusUnauthorized {
		t.Fatalf("draft after logout = %d", code)
	}
}

func TestSetupPageWhenStoreUnconfigured(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database = DatabaseConfig{Driver: "postgres"}
	s := newTestSite(t, cfg)

	code, body := s.get("/admin/")
	if code != http.StatusServiceUnavailable || !strings.Contains(body, "DATABASE_URL") {
		t.Fatalf("admin = %d %q", code, body)
	}
	if code, body := s.get("/"); code != http.StatusOK || !strings.Contains(body, html.EscapeString(content.Defaults().Home.Tagline)) {
		t.Fatalf("home without store = %d", code)
	}
}

func TestEventStreamStartsWithSnapshot(t *testing.T) {
	s := newTestSite(t, testConfig(t))
	s.login(testEmail, testPassword)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.srv.URL+"/admin/api/events/", nil)
	if err != nil {
		t.Fatal(err)
	}
	client := &http.Client{Jar: s.client.Jar}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	var event string
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "event: ") {
			event = strings.TrimPrefix(line, "event: ")
			continue
		}
		if strings.HasPrefix(line, "data: ") {
			if event != "snapshot" {
				t.Fatalf("first event = %q", event)
			}
			var ev snapshotEvent
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
				t.Fatal(err)
			}
			if ev.Draft.Home.Tagline != content.Defaults().Home.Tagline {
				t.Fatalf("snapshot tagline = %q", ev.Draft.Home.Tagline)
			}
			return
		}
	}
	t.Fatalf("stream ended before a snapshot: %v", sc.Err())
}
