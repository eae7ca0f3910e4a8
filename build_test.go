package blogindex

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/blogindex/content"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestBuild(t *testing.T) {
	a := newTestApp(t)
	writeFiles(t, a.staticDir, map[string]string{"style.css": "body{}"})
	out := filepath.Join(t.TempDir(), "dist")

	stats, err := a.Build(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, BuildStats{Pages: 2, Posts: 3}, stats)

	assert.Equal(t, "list 1/2 b,c", readFile(t, filepath.Join(out, "index.html")))
	assert.Equal(t, "list 2/2 a", readFile(t, filepath.Join(out, "page", "2", "index.html")))
	assert.Equal(t, "post a related=b", readFile(t, filepath.Join(out, "go", "a", "index.html")))
	assert.Equal(t, "post c related=", readFile(t, filepath.Join(out, "uncategorized", "c", "index.html")))
	assert.Equal(t, "not found", readFile(t, filepath.Join(out, "404.html")))
	assert.Contains(t, readFile(t, filepath.Join(out, "feed.xml")), "<rss version=\"2.0\">")
	assert.Contains(t, readFile(t, filepath.Join(out, "sitemap.xml")), "https://example.com/go/b/")
	assert.Equal(t, "body{}", readFile(t, filepath.Join(out, "public", "style.css")))

	_, err = os.Stat(filepath.Join(out, "page", "1"))
	assert.True(t, os.IsNotExist(err), "page 1 is the index")
}

func TestBuildRequiresOpen(t *testing.T) {
	a := New(SiteConfig{}, stubViews())
	_, err := a.Build(context.Background(), t.TempDir())
	assert.Error(t, err)
}

func TestPostFile(t *testing.T) {
	cfg := SiteConfig{}
	tests := []struct {
		name string
		post content.Post
		want string
	}{
		{"latin", content.Post{Slug: "hello", Category: "Go"}, filepath.Join("go", "hello", "index.html")},
		{"non-latin", content.Post{Slug: "はじめに", Category: "技術"}, filepath.Join("技術", "はじめに", "index.html")},
		{"space in slug", content.Post{Slug: "a b", Category: "Go"}, filepath.Join("go", "a b", "index.html")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, postFile(cfg.PostPath(tt.post)))
		})
	}
}

func TestPageFile(t *testing.T) {
	assert.Equal(t, "index.html", pageFile(1))
	assert.Equal(t, filepath.Join("page", "3", "index.html"), pageFile(3))
}
