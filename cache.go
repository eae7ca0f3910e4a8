package blogindex

import (
	"database/sql"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eringen/blogindex/content"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = sql.ErrNoRows

// Sources resolves the raw collections a merge runs over. Each loader is
// called once per cache refresh.
type Sources struct {
	Markdown func() ([]content.MarkdownNode, error)
	CMS      func() ([]content.CMSNode, error)
	Assets   func() ([]content.ImageAsset, error)
}

func (s Sources) load() (md []content.MarkdownNode, cms []content.CMSNode, assets []content.ImageAsset, err error) {
	if s.Markdown != nil {
		if md, err = s.Markdown(); err != nil {
			return nil, nil, nil, err
		}
	}
	if s.CMS != nil {
		if cms, err = s.CMS(); err != nil {
			return nil, nil, nil, err
		}
	}
	if s.Assets != nil {
		if assets, err = s.Assets(); err != nil {
			return nil, nil, nil, err
		}
	}
	return md, cms, assets, nil
}

// PostCache is an in-memory cache of the merged post list with TTL.
type PostCache struct {
	mu      sync.RWMutex
	posts   []content.Post // newest first
	bySlug  map[string]int
	fetched time.Time
	ttl     time.Duration
	src     Sources
	logger  *zap.Logger
}

// NewPostCache creates a PostCache that merges the given sources.
func NewPostCache(src Sources, ttl time.Duration, logger *zap.Logger) *PostCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostCache{src: src, ttl: ttl, logger: logger}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.bySlug = nil
	c.mu.Unlock()
}

func (c *PostCache) load() error {
	if c.valid() {
		return nil
	}
	md, cms, assets, err := c.src.load()
	if err != nil {
		return err
	}
	merged := content.Merge(md, cms, assets)

	// Markdown posts come first in the merge, so they win slug collisions.
	kept := make([]content.Post, 0, len(merged))
	seen := make(map[string]bool, len(merged))
	for _, p := range merged {
		if p.Slug == "" || seen[p.Slug] {
			c.logger.Warn("dropping post with empty or duplicate slug",
				zap.String("slug", p.Slug), zap.String("title", p.Title))
			continue
		}
		seen[p.Slug] = true
		kept = append(kept, p)
	}

	posts := content.SortByDate(kept)
	bySlug := make(map[string]int, len(posts))
	for i, p := range posts {
		bySlug[p.Slug] = i
	}
	c.posts = posts
	c.bySlug = bySlug
	c.fetched = time.Now()
	c.logger.Debug("post cache loaded",
		zap.Int("markdown", len(md)), zap.Int("cms", len(cms)),
		zap.Int("assets", len(assets)), zap.Int("posts", len(posts)))
	return nil
}

// ensureLoaded returns cached posts after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded() ([]content.Post, map[string]int, error) {
	c.mu.RLock()
	if c.valid() {
		posts, bySlug := c.posts, c.bySlug
		c.mu.RUnlock()
		return posts, bySlug, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, err
	}
	return c.posts, c.bySlug, nil
}

// Posts returns every post, newest first.
func (c *PostCache) Posts() ([]content.Post, error) {
	posts, _, err := c.ensureLoaded()
	return posts, err
}

// Post returns a single post by slug.
func (c *PostCache) Post(slug string) (content.Post, error) {
	posts, bySlug, err := c.ensureLoaded()
	if err != nil {
		return content.Post{}, err
	}
	i, ok := bySlug[slug]
	if !ok {
		return content.Post{}, ErrNotFound
	}
	return posts[i], nil
}

// Related returns the posts related to p, best match first.
func (c *PostCache) Related(p content.Post) ([]content.Post, error) {
	posts, _, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	return content.Related(posts, content.TargetOf(p)), nil
}

// Page returns listing page n. ok is false when n is out of range.
func (c *PostCache) Page(n, perPage int) (content.Page, bool, error) {
	posts, _, err := c.ensureLoaded()
	if err != nil {
		return content.Page{}, false, err
	}
	page, ok := content.Paginate(posts, perPage, n)
	return page, ok, nil
}
