package blogindex

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/blogindex/content"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

func (a *App) notFound(c echo.Context) error {
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
}

func (a *App) handleList(c echo.Context) error {
	return a.renderPage(c, 1)
}

func (a *App) handleListPage(c echo.Context) error {
	n, err := strconv.Atoi(c.Param("page"))
	if err != nil || n < 1 {
		return a.notFound(c)
	}
	if n == 1 {
		return c.Redirect(http.StatusMovedPermanently, "/")
	}
	return a.renderPage(c, n)
}

func (a *App) renderPage(c echo.Context, n int) error {
	page, ok, err := a.Cache.Page(n, a.Config.PerPage)
	if err != nil {
		return err
	}
	if !ok {
		return a.notFound(c)
	}
	return Render(c, a.Views.List(page))
}

func (a *App) handlePost(c echo.Context) error {
	post, err := a.Cache.Post(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return a.notFound(c)
		}
		return err
	}
	// Redirect to the canonical category segment.
	canonical := a.Config.PostPath(post)
	if want, err := url.PathUnescape(canonical); err == nil && c.Request().URL.Path != want {
		return c.Redirect(http.StatusMovedPermanently, canonical)
	}
	related, err := a.Cache.Related(post)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Post(post, related))
}

func (a *App) handleSitemap(c echo.Context) error {
	return a.renderXML(c, "application/xml; charset=utf-8", WriteSitemap)
}

func (a *App) handleFeed(c echo.Context) error {
	return a.renderXML(c, "application/rss+xml; charset=utf-8", WriteFeed)
}

func (a *App) renderXML(c echo.Context, contentType string, write func(io.Writer, SiteConfig, []content.Post) error) error {
	posts, err := a.Cache.Posts()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := write(&buf, a.Config, posts); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.File(a.staticDir + "/robots.txt")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = a.notFound(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err))
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
