package blogindex

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminNew(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return a.renderAdminForm(c, CMSPost{Date: time.Now().Format(dateLayout)})
}

func (a *App) handleAdminPost(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	post, err := a.Store.GetPostAny(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return a.renderAdminForm(c, post)
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	a.Logger.Warn("failed admin login", zap.String("ip", ip))
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// postFromForm reads a CMSPost from the admin form. The returned message is
// non-empty when the form is invalid.
func postFromForm(c echo.Context, now time.Time) (CMSPost, string) {
	title := strings.TrimSpace(c.FormValue("title"))
	slug := strings.Trim(strings.TrimSpace(c.FormValue("slug")), "/")
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return CMSPost{}, "Slug is required. Add a title or slug."
	}
	if strings.Contains(slug, "/") {
		return CMSPost{}, "Slug must not contain slashes."
	}

	date := strings.TrimSpace(c.FormValue("date"))
	if date == "" {
		date = now.Format(dateLayout)
	}
	published, err := time.Parse(dateLayout, date)
	if err != nil {
		return CMSPost{}, "Invalid date format. Use YYYY-MM-DD."
	}
	modified := strings.TrimSpace(c.FormValue("modified"))
	if modified == "" {
		modified = date
	}
	mod, err := time.Parse(dateLayout, modified)
	if err != nil {
		return CMSPost{}, "Invalid modified date format. Use YYYY-MM-DD."
	}
	if mod.Before(published) {
		return CMSPost{}, "Modified date cannot be before the publish date."
	}

	return CMSPost{
		Slug:          slug,
		Title:         title,
		Excerpt:       c.FormValue("excerpt"),
		Content:       c.FormValue("content"),
		Date:          date,
		Modified:      modified,
		Categories:    SplitList(c.FormValue("categories")),
		Tags:          SplitList(c.FormValue("tags")),
		FeaturedImage: strings.TrimSpace(c.FormValue("featured_image")),
		Published:     c.FormValue("published") != "",
	}, ""
}

func (a *App) handleAdminSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}
	post, msg := postFromForm(c, time.Now())
	if msg != "" {
		return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape(msg))
	}
	if err := a.Store.SavePost(post); err != nil {
		return err
	}
	a.Cache.Invalidate()
	a.Logger.Info("post saved", zap.String("slug", post.Slug), zap.Bool("published", post.Published))
	return a.renderAdminDashboard(c, "saved")
}

func (a *App) handleAdminDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	slug := c.Param("slug")
	if err := a.Store.DeletePost(slug); err != nil {
		return err
	}
	a.Cache.Invalidate()
	a.Logger.Info("post deleted", zap.String("slug", slug))
	return a.renderAdminDashboard(c, "deleted")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	posts, err := a.Store.ListAllPosts()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(posts, msg, CsrfToken(c)))
}

func (a *App) renderAdminForm(c echo.Context, post CMSPost) error {
	media, err := a.Store.ListMedia()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminForm(post, media, CsrfToken(c)))
}
