package blogindex

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"

	"github.com/eringen/blogindex/content"
)

// uncategorized is the path segment for posts without a category.
const uncategorized = "uncategorized"

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// CategoryPath maps a category name to its URL path segment. Explicit entries
// in CategorySlugs win, matched case-insensitively since config loaders fold
// map keys to lower case; otherwise the name is slugified. Names that slugify to
// nothing (e.g. non-Latin scripts) are path-escaped as is.
func (c SiteConfig) CategoryPath(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return uncategorized
	}
	if s := c.categorySlug(category); s != "" {
		return s
	}
	if s := Slugify(category); s != "" {
		return s
	}
	return url.PathEscape(category)
}

func (c SiteConfig) categorySlug(category string) string {
	if s, ok := c.CategorySlugs[category]; ok {
		return s
	}
	for name, s := range c.CategorySlugs {
		if strings.EqualFold(name, category) {
			return s
		}
	}
	return ""
}

// PostPath returns the site-relative URL of a post: /<category>/<slug>/.
func (c SiteConfig) PostPath(p content.Post) string {
	return "/" + c.CategoryPath(p.Category) + "/" + url.PathEscape(p.Slug) + "/"
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// absURL prefixes a site-relative path with the site's base URL.
func absURL(base, p string) string {
	return strings.TrimRight(base, "/") + p
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SplitList splits a comma-separated form value into trimmed, non-empty items.
func SplitList(s string) []string {
	return FilterEmpty(strings.Split(s, ","))
}

// JoinTags joins tags with ", ".
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        cfg.Name,
		"url":         BuildURL(cfg.URL),
		"description": cfg.Description,
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(post content.Post, cfg SiteConfig) string {
	postURL := absURL(cfg.URL, cfg.PostPath(post))
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "BlogPosting",
		"headline": post.Title,
		"url":      postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if !post.Date.IsZero() {
		data["datePublished"] = post.Date.Format(dateLayout)
	}
	if !post.DateModified.IsZero() {
		data["dateModified"] = post.DateModified.Format(dateLayout)
	}
	if post.Thumbnail != nil {
		data["image"] = absURL(cfg.URL, post.Thumbnail.Image.Src)
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	if len(post.Tags) > 0 {
		data["keywords"] = strings.Join(post.Tags, ", ")
	}
	if post.Category != "" {
		data["articleSection"] = post.Category
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
