package blogindex

import (
	"time"

	"go.uber.org/zap"
)

// SiteConfig holds all configuration for a blogindex site.
type SiteConfig struct {
	Name        string `mapstructure:"name"`        // Site name (default "Blog")
	URL         string `mapstructure:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `mapstructure:"description"` // Site description for RSS and meta tags
	Author      string `mapstructure:"author"`      // Author name for JSON-LD

	Addr         string `mapstructure:"addr"`          // Listen address (default ":3000")
	DatabasePath string `mapstructure:"database_path"` // CMS SQLite path (default "data/blog.db")
	ContentDir   string `mapstructure:"content_dir"`   // Markdown posts (default "content/posts")
	ImagesDir    string `mapstructure:"images_dir"`    // Images referenced by markdown posts (default "content/images")
	ThumbsDir    string `mapstructure:"thumbs_dir"`    // Generated thumbnails (default "data/thumbs")

	PerPage int `mapstructure:"per_page"` // Listing page size (default 10)

	// CategorySlugs maps category names to URL path segments, for names
	// that do not slugify well.
	CategorySlugs map[string]string `mapstructure:"category_slugs"`

	AdminPassword string `mapstructure:"admin_password"` // Required: admin login password
	SessionSecret string `mapstructure:"session_secret"` // Required: session encryption secret
	CookieSecure  bool   `mapstructure:"cookie_secure"`  // Set true for HTTPS

	PostCacheTTL time.Duration `mapstructure:"post_cache_ttl"` // Post cache TTL (default 5min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content/posts"
	}
	if c.ImagesDir == "" {
		c.ImagesDir = "content/images"
	}
	if c.ThumbsDir == "" {
		c.ThumbsDir = "data/thumbs"
	}
	if c.PerPage <= 0 {
		c.PerPage = 10
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger sets the logger used by the app and its loaders.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.Logger = l
		}
	}
}

// WithStore uses an already opened store instead of opening Config.DatabasePath.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}
