package artistsite

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/eringen/artistsite/logging"
)

// ErrConfigMissing is returned by Validate when parameters needed to reach
// the content store or media bucket are absent.
var ErrConfigMissing = errors.New("artistsite: configuration missing")

// MissingConfigError lists the absent settings by environment name.
type MissingConfigError struct {
	Keys []string
}

func (e *MissingConfigError) Error() string {
	return "artistsite: missing configuration: " + strings.Join(e.Keys, ", ")
}

func (e *MissingConfigError) Is(target error) bool { return target == ErrConfigMissing }

// SiteConfig holds all configuration for the site.
type SiteConfig struct {
	Name        string `toml:"name"`        // Site name (default "Charlesky")
	URL         string `toml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `toml:"description"` // Site description for RSS and meta tags
	Author      string `toml:"author"`      // Artist name for JSON-LD

	Addr string `toml:"addr"` // Listen address (default ":3000")

	Database DatabaseConfig `toml:"database"`
	RedisURL string         `toml:"redis_url"` // Optional; enables cross-instance feed and invalidation
	Media    MediaConfig    `toml:"media"`

	AdminEmail        string `toml:"admin_email"`
	AdminPassword     string `toml:"admin_password"`
	AdminPasswordHash string `toml:"admin_password_hash"` // bcrypt; wins over AdminPassword
	SessionSecret     string `toml:"session_secret"`
	CookieSecure      bool   `toml:"cookie_secure"` // Set true for HTTPS

	ContentCacheTTL time.Duration `toml:"-"`                 // default 5min
	CacheTTL        string        `toml:"content_cache_ttl"` // duration text, e.g. "90s"
	LogMode         string        `toml:"log_mode"`          // "prod" or "dev"
}

type DatabaseConfig struct {
	Driver string `toml:"driver"` // "sqlite" (default) or "postgres"
	URL    string `toml:"url"`    // SQLite path or postgres DSN
}

type MediaConfig struct {
	Backend   string `toml:"backend"` // "local" (default), "s3" or "gcs"
	Dir       string `toml:"dir"`
	PublicURL string `toml:"public_url"`

	S3Endpoint  string `toml:"s3_endpoint"`
	S3AccessKey string `toml:"s3_access_key"`
	S3SecretKey string `toml:"s3_secret_key"`
	S3Bucket    string `toml:"s3_bucket"`
	S3UseSSL    bool   `toml:"s3_use_ssl"`
	S3Region    string `toml:"s3_region"`

	GCSBucket      string `toml:"gcs_bucket"`
	GCSCredentials string `toml:"gcs_credentials"`
}

// LoadConfig reads the optional TOML file at path, applies environment
// overrides and fills defaults. It does not validate.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if cfg.CacheTTL != "" {
		d, err := time.ParseDuration(cfg.CacheTTL)
		if err != nil {
			return cfg, fmt.Errorf("content_cache_ttl: %w", err)
		}
		cfg.ContentCacheTTL = d
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"SITE_NAME":           &c.Name,
		"SITE_URL":            &c.URL,
		"SITE_DESCRIPTION":    &c.Description,
		"SITE_AUTHOR":         &c.Author,
		"ADDR":                &c.Addr,
		"DATABASE_DRIVER":     &c.Database.Driver,
		"DATABASE_URL":        &c.Database.URL,
		"REDIS_URL":           &c.RedisURL,
		"MEDIA_BACKEND":       &c.Media.Backend,
		"MEDIA_DIR":           &c.Media.Dir,
		"MEDIA_PUBLIC_URL":    &c.Media.PublicURL,
		"S3_ENDPOINT":         &c.Media.S3Endpoint,
		"S3_ACCESS_KEY":       &c.Media.S3AccessKey,
		"S3_SECRET_KEY":       &c.Media.S3SecretKey,
		"S3_BUCKET":           &c.Media.S3Bucket,
		"S3_REGION":           &c.Media.S3Region,
		"GCS_BUCKET":          &c.Media.GCSBucket,
		"GCS_CREDENTIALS":     &c.Media.GCSCredentials,
		"ADMIN_EMAIL":         &c.AdminEmail,
		"ADMIN_PASSWORD":      &c.AdminPassword,
		"ADMIN_PASSWORD_HASH": &c.AdminPasswordHash,
		"SESSION_SECRET":      &c.SessionSecret,
		"LOG_MODE":            &c.LogMode,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	flags := map[string]*bool{
		"COOKIE_SECURE": &c.CookieSecure,
		"S3_USE_SSL":    &c.Media.S3UseSSL,
	}
	for key, dst := range flags {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = b
		}
	}
	if v, ok := lookup("CONTENT_CACHE_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CONTENT_CACHE_TTL: %w", err)
		}
		c.ContentCacheTTL = d
	}
	return nil
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Charlesky"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.URL == "" && c.Database.Driver == "sqlite" {
		c.Database.URL = "data/site.db"
	}
	if c.Media.Backend == "" {
		c.Media.Backend = "local"
	}
	if c.Media.Dir == "" {
		c.Media.Dir = "public/media"
	}
	if c.Media.PublicURL == "" && c.Media.Backend == "local" {
		c.Media.PublicURL = c.URL + "/public/media"
	}
	if c.ContentCacheTTL == 0 {
		c.ContentCacheTTL = 5 * time.Minute
	}
	if c.LogMode == "" {
		c.LogMode = "dev"
	}
}

// Validate reports missing content store and media parameters as a
// *MissingConfigError matching ErrConfigMissing. Admin credentials are
// checked separately by ValidateAdmin.
func (c SiteConfig) Validate() error {
	var missing []string
	switch c.Database.Driver {
	case "sqlite", "postgres":
		if c.Database.URL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	default:
		return fmt.Errorf("artistsite: unknown database driver %q", c.Database.Driver)
	}
	switch c.Media.Backend {
	case "local":
	case "s3":
		for key, v := range map[string]string{
			"S3_ENDPOINT":   c.Media.S3Endpoint,
			"S3_ACCESS_KEY": c.Media.S3AccessKey,
			"S3_SECRET_KEY": c.Media.S3SecretKey,
			"S3_BUCKET":     c.Media.S3Bucket,
		} {
			if v == "" {
				missing = append(missing, key)
			}
		}
	case "gcs":
		if c.Media.GCSBucket == "" {
			missing = append(missing, "GCS_BUCKET")
		}
	default:
		return fmt.Errorf("artistsite: unknown media backend %q", c.Media.Backend)
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return &MissingConfigError{Keys: missing}
	}
	return nil
}

// ValidateAdmin checks the settings the admin login needs.
func (c SiteConfig) ValidateAdmin() error {
	switch {
	case c.AdminEmail == "":
		return fmt.Errorf("artistsite: ADMIN_EMAIL is required")
	case c.AdminPassword == "" && c.AdminPasswordHash == "":
		return fmt.Errorf("artistsite: ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	case c.SessionSecret == "":
		return fmt.Errorf("artistsite: SESSION_SECRET is required")
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithViews replaces the default templates.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

func WithLogger(log *logging.Logger) Option {
	return func(a *App) {
		a.log = log
	}
}
