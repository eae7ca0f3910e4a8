// Package views is the default set of page components for a blogindex site.
// Sites with their own design pass their own blogindex.ViewFuncs instead.
package views

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/blogindex"
	"github.com/eringen/blogindex/markdown"
)

// New returns the default views for cfg.
func New(cfg blogindex.SiteConfig) blogindex.ViewFuncs {
	v := &site{cfg: cfg}
	return blogindex.ViewFuncs{
		List:           v.list,
		Post:           v.post,
		AdminLogin:     v.adminLogin,
		AdminDashboard: v.adminDashboard,
		AdminForm:      v.adminForm,
		AdminMedia:     v.adminMedia,
		NotFound:       v.notFound,
		ServerError:    v.serverError,
	}
}

type site struct {
	cfg blogindex.SiteConfig
}

// page writes HTML and remembers the first write error so components can be
// written straight through.
type page struct {
	w   io.Writer
	err error
}

func (p *page) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *page) rawf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

// text writes s escaped for element content and attribute values.
func (p *page) text(s string) {
	p.raw(templ.EscapeString(s))
}

func component(fn func(ctx context.Context, p *page)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		fn(ctx, p)
		return p.err
	})
}

// layout wraps body in the site chrome.
func (s *site) layout(meta blogindex.PageMeta, jsonLD string, body func(ctx context.Context, p *page)) templ.Component {
	return component(func(ctx context.Context, p *page) {
		title := s.cfg.Name
		if meta.Title != "" {
			title = meta.Title + " | " + s.cfg.Name
		}
		description := meta.Description
		if description == "" {
			description = s.cfg.Description
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}

		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw(`<title>`)
		p.text(title)
		p.raw(`</title><meta name="description" content="`)
		p.text(description)
		p.raw(`">`)
		if meta.URL != "" {
			p.raw(`<link rel="canonical" href="`)
			p.text(meta.URL)
			p.raw(`"><meta property="og:url" content="`)
			p.text(meta.URL)
			p.raw(`">`)
		}
		p.raw(`<meta property="og:title" content="`)
		p.text(title)
		p.raw(`"><meta property="og:type" content="`)
		p.text(ogType)
		p.raw(`">`)
		p.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml">`)
		p.raw(`<link rel="icon" href="/favicon.svg">`)
		p.raw(`<link rel="stylesheet" href="/public/style.css">`)
		if jsonLD != "" {
			// json.Marshal escapes <, > and &.
			p.raw(`<script type="application/ld+json">`)
			p.raw(jsonLD)
			p.raw(`</script>`)
		}
		p.raw(`</head><body><header class="site-header"><a class="site-name" href="/">`)
		p.text(s.cfg.Name)
		p.raw(`</a></header><main>`)
		body(ctx, p)
		p.raw(`</main><footer class="site-footer"><a href="/feed.xml">RSS</a></footer></body></html>`)
	})
}

func (s *site) url(path string) string {
	return strings.TrimRight(s.cfg.URL, "/") + path
}

// excerptText reduces an HTML excerpt to plain text for meta tags.
func excerptText(excerpt string) string {
	return html.UnescapeString(markdown.Excerpt(excerpt, 0))
}
