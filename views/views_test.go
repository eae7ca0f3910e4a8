package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/blogindex"
	"github.com/eringen/blogindex/content"
)

var cfg = blogindex.SiteConfig{Name: "Test Blog", URL: "https://example.com", Description: "A blog"}

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func post(slug, category string, thumb bool) content.Post {
	p := content.Post{
		Slug:     slug,
		Title:    "Title " + slug,
		Excerpt:  "Excerpt of " + slug,
		Body:     "<p>Body of " + slug + "</p>",
		Category: category,
		Tags:     []string{"go"},
		Date:     time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC),
	}
	if thumb {
		p.Thumbnail = &content.Thumbnail{
			Image:   content.Image{Src: "/thumbs/" + slug + ".jpg", Width: 100, Height: 100, Placeholder: "data:image/jpeg;base64,AA=="},
			AltText: "Alt " + slug,
		}
	}
	return p
}

func TestNewFillsEveryView(t *testing.T) {
	v := New(cfg)
	assert.NotNil(t, v.List)
	assert.NotNil(t, v.Post)
	assert.NotNil(t, v.AdminLogin)
	assert.NotNil(t, v.AdminDashboard)
	assert.NotNil(t, v.AdminForm)
	assert.NotNil(t, v.AdminMedia)
	assert.NotNil(t, v.NotFound)
	assert.NotNil(t, v.ServerError)
}

func TestListPage(t *testing.T) {
	v := New(cfg)
	out := render(t, v.List(content.Page{
		Posts:   []content.Post{post("a", "Go", true), post("b", "", false)},
		Current: 2,
		MaxPage: 3,
		Total:   5,
	}))

	assert.Contains(t, out, "<title>Page 2 | Test Blog</title>")
	assert.Contains(t, out, `<link rel="canonical" href="https://example.com/page/2/">`)
	assert.Contains(t, out, `href="/go/a/"`)
	assert.Contains(t, out, `href="/uncategorized/b/"`)
	assert.Contains(t, out, `src="/thumbs/a.jpg"`)
	assert.Contains(t, out, `alt="Alt a"`)
	assert.Equal(t, 1, strings.Count(out, "<img"), "posts without a thumbnail render no image")
	assert.Contains(t, out, `<a rel="prev" href="/">Newer</a>`)
	assert.Contains(t, out, `<a rel="next" href="/page/3/">Older</a>`)
	assert.Contains(t, out, `<span aria-current="page">2</span>`)
	assert.Contains(t, out, "May 17, 2024")
}

func TestListPageSinglePageHasNoPagination(t *testing.T) {
	out := render(t, New(cfg).List(content.Page{Posts: []content.Post{post("a", "", false)}, Current: 1, MaxPage: 1, Total: 1}))
	assert.NotContains(t, out, "pagination")
	assert.Contains(t, out, "<title>Test Blog</title>")
}

func TestListPageEmpty(t *testing.T) {
	out := render(t, New(cfg).List(content.Page{Current: 1, MaxPage: 1}))
	assert.Contains(t, out, "No posts yet.")
}

func TestPostPage(t *testing.T) {
	v := New(cfg)
	p := post("a", "Go", false)
	p.Title = `Tricky <script>"title"</script>`
	out := render(t, v.Post(p, []content.Post{post("b", "Go", true), post("c", "Web", false)}))

	assert.Contains(t, out, "<h1>Tricky &lt;script&gt;&#34;title&#34;&lt;/script&gt;</h1>")
	assert.NotContains(t, out, "<script>\"title\"")
	assert.Contains(t, out, "<p>Body of a</p>")
	assert.Contains(t, out, `<meta property="og:type" content="article">`)
	assert.Contains(t, out, `application/ld+json`)
	assert.Contains(t, out, "Related posts")
	assert.Contains(t, out, `href="/go/b/"`)
	assert.Contains(t, out, `href="/web/c/"`)
	assert.Contains(t, out, `src="/thumbs/b.jpg"`)
}

func TestPostPageWithoutRelated(t *testing.T) {
	out := render(t, New(cfg).Post(post("a", "Go", false), nil))
	assert.NotContains(t, out, "Related posts")
}

func TestAdminForm(t *testing.T) {
	out := render(t, New(cfg).AdminForm(blogindex.CMSPost{
		Slug:          "hello",
		Title:         "Hello",
		Categories:    []string{"Go", "Web"},
		Tags:          []string{"a", "b"},
		FeaturedImage: "two.jpg",
		Published:     true,
	}, []blogindex.Media{{Filename: "one.jpg"}, {Filename: "two.jpg"}}, "tok"))

	assert.Contains(t, out, `<input type="hidden" name="_csrf" value="tok">`)
	assert.Contains(t, out, `name="categories" value="Go, Web"`)
	assert.Contains(t, out, `name="tags" value="a, b"`)
	assert.Contains(t, out, `<option value="two.jpg" selected>`)
	assert.NotContains(t, out, `<option value="one.jpg" selected>`)
	assert.Contains(t, out, `value="1" checked`)
}

func TestAdminDashboardAndMedia(t *testing.T) {
	v := New(cfg)
	out := render(t, v.AdminDashboard([]blogindex.CMSPost{
		{Slug: "a", Title: "A", Date: "2024-01-01", Categories: []string{"Go"}, Published: true},
		{Slug: "b", Title: "B", Date: "2024-01-02"},
	}, "saved", "tok"))
	assert.Contains(t, out, "saved")
	assert.Contains(t, out, `href="/admin/post/a/"`)
	assert.Contains(t, out, `data-delete="/admin/post/b/"`)
	assert.Contains(t, out, "draft")

	out = render(t, v.AdminMedia([]blogindex.Media{{Filename: "x.jpg", AltText: "X", Width: 800, Height: 600}}, "tok"))
	assert.Contains(t, out, `src="/public/uploads/thumbs/x.jpg"`)
	assert.Contains(t, out, "(800x600)")
	assert.Contains(t, out, `data-delete="/admin/media/x.jpg/"`)
}

func TestErrorPages(t *testing.T) {
	v := New(cfg)
	assert.Contains(t, render(t, v.NotFound()), "Page not found")
	assert.Contains(t, render(t, v.ServerError()), "Something went wrong")
	assert.Contains(t, render(t, v.AdminLogin(true, "tok")), "Wrong password.")
}
