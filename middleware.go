package blogindex

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const (
	sessionName   = "admin_session"
	sessionMaxAge = 12 * 60 * 60
	gzipLevel     = 5
	hstsMaxAge    = 365 * 24 * 60 * 60
)

// contentSecurityPolicy allows the inline delete script on admin pages,
// data: URIs for thumbnail placeholders and remote images inside imported
// post bodies.
var contentSecurityPolicy = strings.Join([]string{
	"default-src 'self'",
	"script-src 'self' 'unsafe-inline'",
	"style-src 'self' 'unsafe-inline'",
	"img-src 'self' https: data:",
	"form-action 'self'",
	"frame-ancestors 'none'",
	"base-uri 'self'",
}, "; ")

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Pre(middleware.NonWWWRedirect())

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			a.Logger.Info("request", fields...)
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: gzipLevel,
		Skipper: func(c echo.Context) bool {
			return isFilePath(c.Request().URL.Path)
		},
	}))

	e.Use(middleware.SecureWithConfig(a.secureConfig()))

	// Sessions and CSRF cookies only exist under /admin so public pages stay
	// cookie-free and cacheable.
	e.Use(session.MiddlewareWithConfig(session.Config{
		Skipper: skipPublic,
		Store:   a.newSessionStore(),
	}))

	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		Skipper:        skipPublic,
		ContextKey:     middleware.DefaultCSRFConfig.ContextKey,
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/admin/",
		CookieSameSite: http.SameSiteStrictMode,
		CookieSecure:   a.Config.CookieSecure,
		CookieHTTPOnly: true,
		ErrorHandler: func(err error, c echo.Context) error {
			a.Logger.Warn("csrf rejected", zap.String("path", c.Request().URL.Path), zap.String("ip", c.RealIP()))
			return c.String(http.StatusForbidden, "Forbidden")
		},
	}))

	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return isFilePath(path) || isFeedPath(path) || path == "/favicon.svg"
		},
	}))

	e.Use(cacheControlMiddleware)
}

// secureConfig sends HSTS only when the site is configured for HTTPS.
func (a *App) secureConfig() middleware.SecureConfig {
	cfg := middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: contentSecurityPolicy,
	}
	if a.Config.CookieSecure {
		cfg.HSTSMaxAge = hstsMaxAge
	}
	return cfg
}

func skipPublic(c echo.Context) bool {
	return !isAdminPath(c.Request().URL.Path)
}

func isAdminPath(path string) bool {
	return path == "/admin" || strings.HasPrefix(path, "/admin/")
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		switch {
		case strings.HasPrefix(path, "/public/"+uploadsSubdir+"/"), strings.HasPrefix(path, ThumbsPrefix+"/"):
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		case strings.HasPrefix(path, "/public/"):
			c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		case isFeedPath(path):
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		case isAdminPath(path):
			c.Response().Header().Set("Cache-Control", "no-store")
		default:
			c.Response().Header().Set("Cache-Control", "public, max-age=3600")
		}
		return next(c)
	}
}

// isFilePath reports whether path is served from disk rather than a handler.
func isFilePath(path string) bool {
	return strings.HasPrefix(path, "/public/") || strings.HasPrefix(path, ThumbsPrefix+"/")
}

func isFeedPath(path string) bool {
	return path == "/sitemap.xml" || path == "/feed.xml" || path == "/robots.txt"
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/admin/",
		HttpOnly: true,
		MaxAge:   sessionMaxAge,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// IsAdmin checks if the current session is authenticated.
func IsAdmin(c echo.Context) bool {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return false
	}
	auth, ok := sess.Values["authenticated"].(bool)
	return ok && auth
}

func setAdminSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values["authenticated"] = true
	return sess.Save(c.Request(), c.Response())
}

func clearAdminSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
