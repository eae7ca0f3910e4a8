package views

import (
	"context"

	"github.com/a-h/templ"

	"github.com/eringen/blogindex"
	"github.com/eringen/blogindex/content"
)

func (s *site) post(post content.Post, related []content.Post) templ.Component {
	meta := blogindex.PageMeta{
		Title:       post.Title,
		Description: excerptText(post.Excerpt),
		URL:         s.url(s.cfg.PostPath(post)),
		OGType:      "article",
	}
	return s.layout(meta, blogindex.BlogPostingJsonLD(post, s.cfg), func(ctx context.Context, p *page) {
		p.raw(`<article class="post"><header><h1>`)
		p.text(post.Title)
		p.raw(`</h1>`)
		byline(p, post)
		if len(post.Tags) > 0 {
			p.raw(`<ul class="tags">`)
			for _, tag := range post.Tags {
				p.raw(`<li>`)
				p.text(tag)
				p.raw(`</li>`)
			}
			p.raw(`</ul>`)
		}
		p.raw(`</header><div class="post-body">`)
		// Bodies are rendered through the sanitizing markdown pipeline.
		p.raw(post.Body)
		p.raw(`</div></article>`)
		s.relatedList(p, related)
	})
}

// relatedList renders nothing when there are no related posts.
func (s *site) relatedList(p *page, related []content.Post) {
	if len(related) == 0 {
		return
	}
	p.raw(`<aside class="related"><h2>Related posts</h2><ul>`)
	for _, r := range related {
		href := s.cfg.PostPath(r)
		p.raw(`<li>`)
		if r.Thumbnail != nil {
			p.raw(`<a class="related-thumb" href="`)
			p.text(href)
			p.raw(`">`)
			thumbnail(p, *r.Thumbnail)
			p.raw(`</a>`)
		}
		p.raw(`<a href="`)
		p.text(href)
		p.raw(`">`)
		p.text(r.Title)
		p.raw(`</a>`)
		if !r.Date.IsZero() {
			p.raw(` <time datetime="`)
			p.text(r.Date.Format("2006-01-02"))
			p.raw(`">`)
			p.text(r.Date.Format(dateFormat))
			p.raw(`</time>`)
		}
		p.raw(`</li>`)
	}
	p.raw(`</ul></aside>`)
}
