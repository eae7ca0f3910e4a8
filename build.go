package blogindex

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/blogindex/content"
)

// buildWorkers bounds how many pages Build renders at once.
const buildWorkers = 8

// BuildStats summarizes a static build.
type BuildStats struct {
	Pages int
	Posts int
}

// Build renders the whole site into outDir: every listing page, every article
// with its related posts, the sitemap, the feed and the 404 page. Static files
// and generated thumbnails are copied alongside. The app must be opened first.
func (a *App) Build(ctx context.Context, outDir string) (BuildStats, error) {
	if a.Cache == nil {
		return BuildStats{}, fmt.Errorf("blogindex: build before Open")
	}
	// Thumbnails are generated while the cache loads.
	a.Cache.Invalidate()
	posts, err := a.Cache.Posts()
	if err != nil {
		return BuildStats{}, fmt.Errorf("blogindex: load posts: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return BuildStats{}, fmt.Errorf("blogindex: create output dir: %w", err)
	}

	maxPage := content.MaxPage(len(posts), a.Config.PerPage)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(buildWorkers)

	for n := 1; n <= maxPage; n++ {
		g.Go(func() error {
			page, _ := content.Paginate(posts, a.Config.PerPage, n)
			return a.writeComponent(gctx, outDir, pageFile(n), a.Views.List(page))
		})
	}
	for _, p := range posts {
		g.Go(func() error {
			related := content.Related(posts, content.TargetOf(p))
			return a.writeComponent(gctx, outDir, postFile(a.Config.PostPath(p)), a.Views.Post(p, related))
		})
	}
	g.Go(func() error {
		return a.writeComponent(gctx, outDir, "404.html", a.Views.NotFound())
	})
	g.Go(func() error {
		return writeFile(outDir, "sitemap.xml", func(w io.Writer) error { return WriteSitemap(w, a.Config, posts) })
	})
	g.Go(func() error {
		return writeFile(outDir, "feed.xml", func(w io.Writer) error { return WriteFeed(w, a.Config, posts) })
	})
	if err := g.Wait(); err != nil {
		return BuildStats{}, err
	}

	if err := copyDir(a.staticDir, filepath.Join(outDir, "public")); err != nil {
		return BuildStats{}, err
	}
	if err := copyDir(a.Config.ThumbsDir, filepath.Join(outDir, strings.TrimPrefix(ThumbsPrefix, "/"))); err != nil {
		return BuildStats{}, err
	}

	stats := BuildStats{Pages: maxPage, Posts: len(posts)}
	a.Logger.Info("site built", zap.String("out", outDir), zap.Int("pages", stats.Pages), zap.Int("posts", stats.Posts))
	return stats, nil
}

// pageFile returns the output file of listing page n, mirroring PageURL.
func pageFile(n int) string {
	if n <= 1 {
		return "index.html"
	}
	return filepath.Join("page", strconv.Itoa(n), "index.html")
}

// postFile maps a post path like /go/hello/ to go/hello/index.html. Escaped
// segments are decoded since static hosts look files up by the decoded path.
func postFile(postPath string) string {
	rel := strings.Trim(postPath, "/")
	if raw, err := url.PathUnescape(rel); err == nil {
		rel = raw
	}
	return filepath.Join(filepath.FromSlash(rel), "index.html")
}

func (a *App) writeComponent(ctx context.Context, outDir, rel string, cmp templ.Component) error {
	var buf bytes.Buffer
	if err := cmp.Render(ctx, &buf); err != nil {
		return fmt.Errorf("render %s: %w", rel, err)
	}
	return writeFile(outDir, rel, func(w io.Writer) error {
		_, err := buf.WriteTo(w)
		return err
	})
}

func writeFile(outDir, rel string, write func(io.Writer) error) error {
	dst := filepath.Join(outDir, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", rel, err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", rel, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return f.Close()
}

// copyDir copies the tree under src into dst. A missing src is not an error.
func copyDir(src, dst string) error {
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", p, err)
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(p, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
