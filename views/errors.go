package views

import (
	"context"

	"github.com/a-h/templ"

	"github.com/eringen/blogindex"
)

func (s *site) notFound() templ.Component {
	return s.layout(blogindex.PageMeta{Title: "Not found"}, "", func(ctx context.Context, p *page) {
		p.raw(`<section class="error"><h1>Page not found</h1><p>The page you are looking for does not exist. <a href="/">Back to the blog</a>.</p></section>`)
	})
}

func (s *site) serverError() templ.Component {
	return s.layout(blogindex.PageMeta{Title: "Server error"}, "", func(ctx context.Context, p *page) {
		p.raw(`<section class="error"><h1>Something went wrong</h1><p>Please try again in a moment.</p></section>`)
	})
}
