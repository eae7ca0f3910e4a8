package blogindex

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/blogindex/content"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello World", "hello-world"},
		{"  Go 1.24: What's new?  ", "go-1-24-what-s-new"},
		{"---", ""},
		{"Ünïcode", "n-code"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}

func TestCategoryPath(t *testing.T) {
	cfg := SiteConfig{CategorySlugs: map[string]string{"C++": "cpp"}}
	assert.Equal(t, "uncategorized", cfg.CategoryPath(""))
	assert.Equal(t, "cpp", cfg.CategoryPath("C++"))
	assert.Equal(t, "web-dev", cfg.CategoryPath("Web Dev"))
	assert.Equal(t, "%E6%97%A5%E6%9C%AC", cfg.CategoryPath("日本"))

	folded := SiteConfig{CategorySlugs: map[string]string{"c++": "cpp", "go": "golang"}}
	assert.Equal(t, "cpp", folded.CategoryPath("C++"))
	assert.Equal(t, "golang", folded.CategoryPath("Go"))
}

func TestPostPath(t *testing.T) {
	cfg := SiteConfig{}
	assert.Equal(t, "/go/hello/", cfg.PostPath(content.Post{Slug: "hello", Category: "Go"}))
	assert.Equal(t, "/uncategorized/hello/", cfg.PostPath(content.Post{Slug: "hello"}))
}

func TestBuildURL(t *testing.T) {
	assert.Equal(t, "https://example.com/blog/post/", BuildURL("https://example.com", "blog", "post"))
	assert.Equal(t, "https://example.com", BuildURL("https://example.com"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b c", "d"}, SplitList(" a, b c ,, d ,"))
	assert.Nil(t, SplitList("  "))
}

func TestBlogPostingJsonLD(t *testing.T) {
	cfg := SiteConfig{Name: "Blog", URL: "https://example.com/", Author: "Sam"}
	post := content.Post{
		Slug: "hello", Title: "Hello", Category: "Go", Tags: []string{"a", "b"},
		Date: day(2), DateModified: day(5),
		Thumbnail: &content.Thumbnail{Image: content.Image{Src: "/thumbs/x.jpg"}},
	}

	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(BlogPostingJsonLD(post, cfg)), &data))
	assert.Equal(t, "https://example.com/go/hello/", data["url"])
	assert.Equal(t, "https://example.com/thumbs/x.jpg", data["image"])
	assert.Equal(t, "2024-01-02", data["datePublished"])
	assert.Equal(t, "2024-01-05", data["dateModified"])
	assert.Equal(t, "a, b", data["keywords"])
}

func samplePosts() []content.Post {
	return []content.Post{
		{Slug: "b", Title: "B <&>", Excerpt: "second", Category: "Go", Tags: []string{"x"}, Date: day(3), DateModified: day(4)},
		{Slug: "a", Title: "A", Excerpt: "first", Date: day(1)},
	}
}

func TestWriteSitemap(t *testing.T) {
	cfg := SiteConfig{URL: "https://example.com", PerPage: 1}
	var buf bytes.Buffer
	require.NoError(t, WriteSitemap(&buf, cfg, samplePosts()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, "<loc>https://example.com</loc>")
	assert.Contains(t, out, "<loc>https://example.com/page/2/</loc>")
	assert.Contains(t, out, "<loc>https://example.com/go/b/</loc>")
	assert.Contains(t, out, "<lastmod>2024-01-04</lastmod>")
	assert.Contains(t, out, "<loc>https://example.com/uncategorized/a/</loc>")
	assert.NotContains(t, out, "/page/3/")
}

func TestWriteFeed(t *testing.T) {
	cfg := SiteConfig{Name: "Blog", URL: "https://example.com", Description: "desc"}
	var buf bytes.Buffer
	require.NoError(t, WriteFeed(&buf, cfg, samplePosts()))

	feed, err := gofeed.NewParser().ParseString(buf.String())
	require.NoError(t, err)
	assert.Equal(t, "Blog", feed.Title)
	require.Len(t, feed.Items, 2)
	assert.Equal(t, "B <&>", feed.Items[0].Title)
	assert.Equal(t, "https://example.com/go/b/", feed.Items[0].Link)
	assert.Equal(t, []string{"Go", "x"}, feed.Items[0].Categories)
	require.NotNil(t, feed.Items[0].PublishedParsed)
	assert.True(t, feed.Items[0].PublishedParsed.Equal(day(3)))
}

func TestWriteFeedCapsItems(t *testing.T) {
	var posts []content.Post
	for i := 0; i < feedSize+5; i++ {
		posts = append(posts, content.Post{Slug: Slugify(strings.Repeat("p", i+1)), Title: "p", Date: day(1)})
	}
	var buf bytes.Buffer
	require.NoError(t, WriteFeed(&buf, SiteConfig{URL: "https://example.com"}, posts))
	assert.Equal(t, feedSize, strings.Count(buf.String(), "<item>"))
}
