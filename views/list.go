package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/blogindex"
	"github.com/eringen/blogindex/content"
)

const dateFormat = "January 2, 2006"

func (s *site) list(pg content.Page) templ.Component {
	meta := blogindex.PageMeta{
		URL:    s.url(content.PageURL(pg.Current)),
		OGType: "website",
	}
	if pg.Current > 1 {
		meta.Title = "Page " + strconv.Itoa(pg.Current)
	}
	return s.layout(meta, blogindex.WebsiteJsonLD(s.cfg), func(ctx context.Context, p *page) {
		if len(pg.Posts) == 0 {
			p.raw(`<p class="empty">No posts yet.</p>`)
			return
		}
		p.raw(`<ol class="post-list">`)
		for _, post := range pg.Posts {
			p.raw(`<li>`)
			s.card(p, post)
			p.raw(`</li>`)
		}
		p.raw(`</ol>`)
		pagination(p, pg)
	})
}

// card renders a post summary: thumbnail, title, date, category and excerpt.
func (s *site) card(p *page, post content.Post) {
	href := s.cfg.PostPath(post)
	p.raw(`<article class="post-card">`)
	if post.Thumbnail != nil {
		p.raw(`<a class="post-thumb" href="`)
		p.text(href)
		p.raw(`">`)
		thumbnail(p, *post.Thumbnail)
		p.raw(`</a>`)
	}
	p.raw(`<h2><a href="`)
	p.text(href)
	p.raw(`">`)
	p.text(post.Title)
	p.raw(`</a></h2>`)
	byline(p, post)
	if post.Excerpt != "" {
		// Excerpts are sanitized or escaped HTML from both sources.
		p.raw(`<p class="excerpt">`)
		p.raw(post.Excerpt)
		p.raw(`</p>`)
	}
	p.raw(`</article>`)
}

func thumbnail(p *page, t content.Thumbnail) {
	p.raw(`<img src="`)
	p.text(t.Image.Src)
	p.raw(`" alt="`)
	p.text(t.AltText)
	p.raw(`" loading="lazy"`)
	if t.Image.Width > 0 && t.Image.Height > 0 {
		p.rawf(` width="%d" height="%d"`, t.Image.Width, t.Image.Height)
	}
	if t.Image.Placeholder != "" {
		p.raw(` style="background-size:cover;background-image:url(`)
		p.text(t.Image.Placeholder)
		p.raw(`)"`)
	}
	p.raw(`>`)
}

func byline(p *page, post content.Post) {
	p.raw(`<p class="byline">`)
	if !post.Date.IsZero() {
		p.raw(`<time datetime="`)
		p.text(post.Date.Format("2006-01-02"))
		p.raw(`">`)
		p.text(post.Date.Format(dateFormat))
		p.raw(`</time>`)
	}
	if post.Category != "" {
		p.raw(` <span class="category">`)
		p.text(post.Category)
		p.raw(`</span>`)
	}
	p.raw(`</p>`)
}

func pagination(p *page, pg content.Page) {
	if pg.MaxPage <= 1 {
		return
	}
	p.raw(`<nav class="pagination" aria-label="Pagination">`)
	if pg.HasPrev() {
		p.raw(`<a rel="prev" href="`)
		p.text(content.PageURL(pg.Current - 1))
		p.raw(`">Newer</a>`)
	}
	for n := 1; n <= pg.MaxPage; n++ {
		if n == pg.Current {
			p.rawf(`<span aria-current="page">%d</span>`, n)
			continue
		}
		p.raw(`<a href="`)
		p.text(content.PageURL(n))
		p.rawf(`">%d</a>`, n)
	}
	if pg.HasNext() {
		p.raw(`<a rel="next" href="`)
		p.text(content.PageURL(pg.Current + 1))
		p.raw(`">Older</a>`)
	}
	p.raw(`</nav>`)
}
