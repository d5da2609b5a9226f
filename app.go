// Package artistsite serves an artist marketing site and its admin panel
// from one structured content document.
//
// The public pages render the merged site content from a TTL cache. The
// admin panel edits a per-session draft that is saved back to the document
// store as a whole, and manages the media files the content references.
// Users can provide their own templ components via the ViewFuncs struct.
package artistsite

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"

	"github.com/eringen/artistsite/auth"
	"github.com/eringen/artistsite/content"
	"github.com/eringen/artistsite/draft"
	"github.com/eringen/artistsite/feed"
	"github.com/eringen/artistsite/logging"
	"github.com/eringen/artistsite/media"
	"github.com/eringen/artistsite/revalidate"
	"github.com/eringen/artistsite/store"
	"github.com/eringen/artistsite/views"
)

// ViewFuncs holds the templ components the handlers call when rendering
// pages. Any of them can be replaced with WithViews.
type ViewFuncs struct {
	Home           func(p views.Page) templ.Component
	Bio            func(p views.Page) templ.Component
	Work           func(p views.Page) templ.Component
	Live           func(p views.Page) templ.Component
	Contact        func(p views.Page) templ.Component
	Lab            func(p views.Page) templ.Component
	LabGear        func(p views.Page) templ.Component
	LabPlaylists   func(p views.Page) templ.Component
	LabTutorials   func(p views.Page) templ.Component
	NotFound       func(p views.Page) templ.Component
	ServerError    func(p views.Page) templ.Component
	AdminLogin     func(d views.AdminLogin) templ.Component
	AdminSetup     func(d views.AdminSetup) templ.Component
	AdminDashboard func(d views.AdminDashboard) templ.Component
}

// DefaultViews returns the embedded html/template pages.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:           views.Home,
		Bio:            views.Bio,
		Work:           views.Work,
		Live:           views.Live,
		Contact:        views.Contact,
		Lab:            views.Lab,
		LabGear:        views.LabGear,
		LabPlaylists:   views.LabPlaylists,
		LabTutorials:   views.LabTutorials,
		NotFound:       views.NotFound,
		ServerError:    views.ServerError,
		AdminLogin:     views.AdminLoginPage,
		AdminSetup:     views.AdminSetupPage,
		AdminDashboard: views.AdminDashboardPage,
	}
}

// App is the central application. It wires together the content store,
// cache, media manager, handlers, middleware, and templates.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *store.Store
	Content *store.Client
	Cache   *ContentCache
	Media   *media.Manager
	Auth    *auth.Authenticator
	Views   ViewFuncs

	// Revalidate holds the local handlers for invalidation tags.
	Revalidate *revalidate.Registry

	log          *logging.Logger
	invalidator  revalidate.Invalidator
	editors      *editorRegistry
	loginLimiter *LoginLimiter
	// setupErr is set when the content store is not configured; the admin
	// then renders the setup page and the public site serves defaults.
	setupErr     error
	closers      []func() error
	customRoutes []func(*App)
	staticDir    string
	ctx          context.Context
	cancel       context.CancelFunc
}

// New creates an App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:     cfg,
		Echo:       echo.New(),
		Views:      DefaultViews(),
		Revalidate: revalidate.NewRegistry(),
		staticDir:  "public",
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logging.Nop()
	}
	return a
}

// Setup connects the store, feed, media bucket and invalidation, then
// registers middleware and routes. It does not listen.
func (a *App) Setup(ctx context.Context) error {
	if err := a.Config.ValidateAdmin(); err != nil {
		return err
	}
	authn, err := auth.New(a.Config.AdminEmail, a.Config.AdminPassword, a.Config.AdminPasswordHash)
	if err != nil {
		return fmt.Errorf("artistsite: init auth: %w", err)
	}
	a.Auth = authn
	a.ctx, a.cancel = context.WithCancel(context.WithoutCancel(ctx))
	a.loginLimiter = NewLoginLimiter(5, time.Minute)
	a.closers = append(a.closers, func() error { a.loginLimiter.Stop(); return nil })

	switch err := a.Config.Validate(); {
	case errors.Is(err, ErrConfigMissing):
		a.log.Warn("content store not configured, serving defaults", "error", err)
		a.setupErr = err
		a.invalidator = a.Revalidate
		a.Cache = NewContentCache(defaultsOnly{}, a.Config.ContentCacheTTL)
	case err != nil:
		return err
	default:
		if err := a.connect(ctx); err != nil {
			_ = a.Close()
			return err
		}
	}
	a.Revalidate.On(revalidate.TagSiteContent, a.Cache.Invalidate)

	var docs draft.Store
	if a.Content != nil {
		docs = a.Content
	}
	a.editors = newEditorRegistry(a.ctx, docs, a.invalidator, a.log)
	a.closers = append(a.closers, func() error { a.editors.Close(); return nil })
	stopWatch := a.Auth.Watch(func(ev auth.Event) {
		if !ev.SignedIn {
			a.editors.Drop(ev.Identity.SessionID)
		}
	})
	a.closers = append(a.closers, func() error { stopWatch(); return nil })
	go a.editors.sweep(a.ctx, 30*time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) connect(ctx context.Context) error {
	storeOpts := []store.Option{store.WithLogger(a.log)}
	a.invalidator = a.Revalidate

	if a.Config.RedisURL != "" {
		ropts, err := goredis.ParseURL(a.Config.RedisURL)
		if err != nil {
			return fmt.Errorf("artistsite: parse REDIS_URL: %w", err)
		}
		rdb := goredis.NewClient(ropts)
		a.closers = append(a.closers, rdb.Close)

		bus, err := feed.NewRedisBus(ctx, rdb, feed.DefaultChannel, a.log)
		if err != nil {
			return fmt.Errorf("artistsite: init change feed: %w", err)
		}
		a.closers = append(a.closers, bus.Close)
		storeOpts = append(storeOpts, store.WithFeed(bus))

		inv, err := revalidate.NewRedisInvalidator(ctx, rdb, a.Revalidate, revalidate.DefaultChannel, a.log)
		if err != nil {
			return fmt.Errorf("artistsite: init invalidation: %w", err)
		}
		a.closers = append(a.closers, inv.Close)
		a.invalidator = inv
	}

	st, err := store.Open(ctx, a.Config.Database.Driver, a.Config.Database.URL, storeOpts...)
	if err != nil {
		return fmt.Errorf("artistsite: init store: %w", err)
	}
	a.Store = st
	a.closers = append(a.closers, st.Close)
	a.Content = store.NewClient(st, a.log)
	a.Cache = NewContentCache(a.Content, a.Config.ContentCacheTTL)

	bucket, err := a.openBucket(ctx)
	if err != nil {
		return fmt.Errorf("artistsite: init media: %w", err)
	}
	a.Media = media.NewManager(bucket, a.log)
	return nil
}

func (a *App) openBucket(ctx context.Context) (media.Bucket, error) {
	m := a.Config.Media
	switch m.Backend {
	case "s3":
		return media.NewS3Bucket(media.S3Config{
			Endpoint:  m.S3Endpoint,
			AccessKey: m.S3AccessKey,
			SecretKey: m.S3SecretKey,
			Bucket:    m.S3Bucket,
			UseSSL:    m.S3UseSSL,
			Region:    m.S3Region,
			PublicURL: m.PublicURL,
		})
	case "gcs":
		b, err := media.NewGCSBucket(ctx, media.GCSConfig{
			Bucket:          m.GCSBucket,
			PublicURL:       m.PublicURL,
			CredentialsFile: m.GCSCredentials,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, b.Close)
		return b, nil
	default:
		return media.NewLocalBucket(m.Dir, m.PublicURL)
	}
}

// Start runs Setup and serves until the server is shut down.
func (a *App) Start(ctx context.Context) error {
	if err := a.Setup(ctx); err != nil {
		return err
	}
	a.log.Info("listening", "addr", a.Config.Addr, "url", a.Config.URL)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	return errors.Join(err, a.Close())
}

// Close cleans up resources in reverse order of creation.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

type defaultsOnly struct{}

func (defaultsOnly) FetchOnce(context.Context) content.SiteContent { return content.Defaults() }
