// Package blogindex serves and builds a blog whose posts come from two places:
// markdown files on disk and a small SQLite-backed CMS edited through the admin.
// Both are merged into one listing, and every article page carries a list of
// related posts ranked by shared tags and category.
//
// Users provide their own templ templates via the ViewFuncs struct; the views
// package ships a default set.
package blogindex

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/blogindex/assets"
	"github.com/eringen/blogindex/content"
	"github.com/eringen/blogindex/markdown"
)

const (
	// ThumbsPrefix is the URL path generated image thumbnails are served under.
	ThumbsPrefix = "/thumbs"
	// uploadsSubdir is where admin uploads live, relative to the static dir.
	uploadsSubdir = "uploads"
)

// ViewFuncs holds user-provided templ components that the app calls when
// rendering pages.
type ViewFuncs struct {
	List           func(page content.Page) templ.Component
	Post           func(post content.Post, related []content.Post) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(posts []CMSPost, message string, csrfToken string) templ.Component
	AdminForm      func(post CMSPost, media []Media, csrfToken string) templ.Component
	AdminMedia     func(media []Media, csrfToken string) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// App wires together the store, cache, handlers, middleware, and
// user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *PostCache
	Views  ViewFuncs
	Logger *zap.Logger

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
}

// New creates a new App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		Logger:    zap.NewNop(),
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Open initializes the store and the post cache. Serving, building and
// importing all start here.
func (a *App) Open() error {
	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("blogindex: init store: %w", err)
		}
		a.Store = store
	}
	if a.Cache == nil {
		a.Cache = NewPostCache(a.Sources(), a.Config.PostCacheTTL, a.Logger)
	}
	return nil
}

// Setup opens the app and registers middleware and routes without starting
// the listener.
func (a *App) Setup() error {
	if a.Config.AdminPassword == "" {
		return errors.New("blogindex: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return errors.New("blogindex: SessionSecret is required")
	}
	if err := a.Open(); err != nil {
		return err
	}

	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start sets the app up and serves until the listener fails or is shut down.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	a.Logger.Info("listening", zap.String("addr", a.Config.Addr), zap.String("url", a.Config.URL))
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Sources returns the loaders the post cache merges: markdown files from
// ContentDir, published CMS posts, and thumbnails generated from ImagesDir.
func (a *App) Sources() Sources {
	catalog := assets.Catalog{
		SrcDir:    a.Config.ImagesDir,
		ThumbDir:  a.Config.ThumbsDir,
		URLPrefix: ThumbsPrefix,
	}
	return Sources{
		Markdown: func() ([]content.MarkdownNode, error) {
			if _, err := os.Stat(a.Config.ContentDir); os.IsNotExist(err) {
				a.Logger.Warn("content directory missing", zap.String("dir", a.Config.ContentDir))
				return nil, nil
			}
			return markdown.LoadDir(os.DirFS(a.Config.ContentDir), a.Logger)
		},
		CMS: func() ([]content.CMSNode, error) {
			return a.Store.ListNodes(a.mediaThumbPrefix())
		},
		Assets: func() ([]content.ImageAsset, error) {
			return catalog.Scan(a.Logger)
		},
	}
}

func (a *App) mediaThumbPrefix() string {
	return "/public/" + uploadsSubdir + "/thumbs"
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.Static(ThumbsPrefix, a.Config.ThumbsDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleList)
	e.GET("/page/:page/", a.handleListPage)

	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.GET("/admin/new/", a.handleAdminNew)
	e.GET("/admin/post/:slug/", a.handleAdminPost)
	e.POST("/admin/save/", a.handleAdminSave)
	e.DELETE("/admin/post/:slug/", a.handleAdminDelete)
	e.GET("/admin/media/", a.handleMediaList)
	e.POST("/admin/media/upload/", a.handleMediaUpload)
	e.DELETE("/admin/media/:filename/", a.handleMediaDelete)

	// Registered last: any other two-segment path is an article.
	e.GET("/:category/:slug/", a.handlePost)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
