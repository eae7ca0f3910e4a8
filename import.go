package blogindex

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

// ImportStats summarizes a feed import.
type ImportStats struct {
	Imported int
	Skipped  int
}

// ImportFeed reads an RSS, Atom or JSON feed from r and saves each item as a
// published CMS post. The first item category becomes the post category and
// the rest become tags. Items that already exist are left untouched.
func (a *App) ImportFeed(r io.Reader) (ImportStats, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return ImportStats{}, fmt.Errorf("blogindex: parse feed: %w", err)
	}

	var stats ImportStats
	now := time.Now()
	for _, item := range feed.Items {
		post, ok := postFromItem(item, now)
		if !ok {
			a.Logger.Warn("skipping feed item without slug", zap.String("title", item.Title))
			stats.Skipped++
			continue
		}
		_, err := a.Store.GetPostAny(post.Slug)
		if err == nil {
			a.Logger.Debug("feed item already imported", zap.String("slug", post.Slug))
			stats.Skipped++
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return stats, fmt.Errorf("blogindex: look up %s: %w", post.Slug, err)
		}
		if err := a.Store.SavePost(post); err != nil {
			return stats, fmt.Errorf("blogindex: save %s: %w", post.Slug, err)
		}
		stats.Imported++
	}
	if a.Cache != nil {
		a.Cache.Invalidate()
	}
	a.Logger.Info("feed imported", zap.String("feed", feed.Title),
		zap.Int("imported", stats.Imported), zap.Int("skipped", stats.Skipped))
	return stats, nil
}

func postFromItem(item *gofeed.Item, now time.Time) (CMSPost, bool) {
	slug := Slugify(item.Title)
	if s := slugFromLink(item.Link); s != "" {
		slug = s
	}
	if slug == "" {
		return CMSPost{}, false
	}

	published := now
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	}
	modified := published
	if item.UpdatedParsed != nil && item.UpdatedParsed.After(published) {
		modified = *item.UpdatedParsed
	}

	body := item.Content
	if strings.TrimSpace(body) == "" {
		body = item.Description
	}

	post := CMSPost{
		Slug:      slug,
		Title:     strings.TrimSpace(item.Title),
		Excerpt:   item.Description,
		Content:   body,
		Date:      published.Format(dateLayout),
		Modified:  modified.Format(dateLayout),
		Published: true,
	}
	if cats := FilterEmpty(item.Categories); len(cats) > 0 {
		post.Categories = cats[:1]
		post.Tags = cats[1:]
	}
	return post, true
}

// slugFromLink returns the last path segment of link, slugified.
func slugFromLink(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Path == "" {
		return ""
	}
	return Slugify(path.Base(strings.TrimRight(u.Path, "/")))
}
