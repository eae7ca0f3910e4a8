package blogindex

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicPagesSetNoCookies(t *testing.T) {
	a := newTestApp(t)

	for _, target := range []string{"/", "/go/a/", "/feed.xml"} {
		rec := get(a, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Empty(t, rec.Result().Cookies(), target)
	}

	rec := get(a, "/admin/")
	var names []string
	for _, ck := range rec.Result().Cookies() {
		names = append(names, ck.Name)
		assert.Equal(t, "/admin/", ck.Path, ck.Name)
	}
	assert.Contains(t, names, "_csrf")
}

func TestSecurityHeaders(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXForwardedProto, "https")
	rec := do(a, req)
	assert.Equal(t, contentSecurityPolicy, rec.Header().Get(echo.HeaderContentSecurityPolicy))
	assert.Equal(t, "DENY", rec.Header().Get(echo.HeaderXFrameOptions))
	assert.Empty(t, rec.Header().Get(echo.HeaderStrictTransportSecurity), "no HSTS without cookie_secure")

	a.Config.CookieSecure = true
	assert.Equal(t, hstsMaxAge, a.secureConfig().HSTSMaxAge)
}

func TestIsAdminPath(t *testing.T) {
	assert.True(t, isAdminPath("/admin"))
	assert.True(t, isAdminPath("/admin/media/"))
	assert.False(t, isAdminPath("/administration/post/"))
	assert.False(t, isAdminPath("/go/admin/"))
}
