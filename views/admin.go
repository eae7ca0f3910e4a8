package views

import (
	"context"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/blogindex"
)

func csrfField(p *page, token string) {
	p.raw(`<input type="hidden" name="_csrf" value="`)
	p.text(token)
	p.raw(`">`)
}

// deleteButton issues a DELETE to action; deleteScript wires it up.
func deleteButton(p *page, action string) {
	p.raw(`<button type="button" data-delete="`)
	p.text(action)
	p.raw(`">Delete</button>`)
}

func deleteScript(p *page, token string) {
	p.raw(`<script>document.addEventListener("click",function(e){var u=e.target.dataset&&e.target.dataset.delete;if(!u||!confirm("Delete?"))return;fetch(u,{method:"DELETE",headers:{"X-CSRF-Token":"`)
	p.text(token)
	p.raw(`"}}).then(function(r){return r.text()}).then(function(h){document.open();document.write(h);document.close()})});</script>`)
}

func (s *site) adminLogin(showError bool, csrfToken string) templ.Component {
	return s.layout(blogindex.PageMeta{Title: "Admin"}, "", func(ctx context.Context, p *page) {
		p.raw(`<section class="admin-login"><h1>Admin</h1>`)
		if showError {
			p.raw(`<p class="error" role="alert">Wrong password.</p>`)
		}
		p.raw(`<form method="post" action="/admin/login/">`)
		csrfField(p, csrfToken)
		p.raw(`<label>Password <input type="password" name="password" required autofocus></label>`)
		p.raw(`<button type="submit">Log in</button></form></section>`)
	})
}

func (s *site) adminDashboard(posts []blogindex.CMSPost, message string, csrfToken string) templ.Component {
	return s.layout(blogindex.PageMeta{Title: "Admin"}, "", func(ctx context.Context, p *page) {
		p.raw(`<section class="admin"><h1>Posts</h1>`)
		if message != "" {
			p.raw(`<p class="flash" role="status">`)
			p.text(message)
			p.raw(`</p>`)
		}
		p.raw(`<p><a href="/admin/new/">New post</a> · <a href="/admin/media/">Media</a></p>`)
		p.raw(`<table><thead><tr><th>Title</th><th>Date</th><th>Category</th><th>Status</th><th></th></tr></thead><tbody>`)
		for _, post := range posts {
			p.raw(`<tr><td><a href="/admin/post/`)
			p.text(post.Slug)
			p.raw(`/">`)
			p.text(post.Title)
			p.raw(`</a></td><td>`)
			p.text(post.Date)
			p.raw(`</td><td>`)
			if len(post.Categories) > 0 {
				p.text(post.Categories[0])
			}
			p.raw(`</td><td>`)
			if post.Published {
				p.raw(`published`)
			} else {
				p.raw(`draft`)
			}
			p.raw(`</td><td>`)
			deleteButton(p, "/admin/post/"+post.Slug+"/")
			p.raw(`</td></tr>`)
		}
		p.raw(`</tbody></table><form method="post" action="/admin/logout/">`)
		csrfField(p, csrfToken)
		p.raw(`<button type="submit">Log out</button></form></section>`)
		deleteScript(p, csrfToken)
	})
}

func (s *site) adminForm(post blogindex.CMSPost, media []blogindex.Media, csrfToken string) templ.Component {
	title := "New post"
	if post.Slug != "" {
		title = "Edit " + post.Title
	}
	return s.layout(blogindex.PageMeta{Title: title}, "", func(ctx context.Context, p *page) {
		p.raw(`<section class="admin"><h1>`)
		p.text(title)
		p.raw(`</h1><form method="post" action="/admin/save/">`)
		csrfField(p, csrfToken)
		input(p, "Title", "title", "text", post.Title)
		input(p, "Slug", "slug", "text", post.Slug)
		input(p, "Date", "date", "date", post.Date)
		input(p, "Modified", "modified", "date", post.Modified)
		input(p, "Categories", "categories", "text", strings.Join(post.Categories, ", "))
		input(p, "Tags", "tags", "text", blogindex.JoinTags(post.Tags))

		p.raw(`<label>Featured image <select name="featured_image"><option value="">None</option>`)
		for _, m := range media {
			p.raw(`<option value="`)
			p.text(m.Filename)
			p.raw(`"`)
			if m.Filename == post.FeaturedImage {
				p.raw(` selected`)
			}
			p.raw(`>`)
			p.text(m.Filename)
			p.raw(`</option>`)
		}
		p.raw(`</select></label>`)

		textarea(p, "Excerpt", "excerpt", post.Excerpt, 3)
		textarea(p, "Content", "content", post.Content, 20)
		p.raw(`<label><input type="checkbox" name="published" value="1"`)
		if post.Published {
			p.raw(` checked`)
		}
		p.raw(`> Published</label><button type="submit">Save</button></form></section>`)
	})
}

func (s *site) adminMedia(media []blogindex.Media, csrfToken string) templ.Component {
	return s.layout(blogindex.PageMeta{Title: "Media"}, "", func(ctx context.Context, p *page) {
		p.raw(`<section class="admin"><h1>Media</h1>`)
		p.raw(`<form method="post" action="/admin/media/upload/" enctype="multipart/form-data">`)
		csrfField(p, csrfToken)
		p.raw(`<input type="file" name="image" accept="image/*" required>`)
		input(p, "Alt text", "alt_text", "text", "")
		p.raw(`<button type="submit">Upload</button></form><ul class="media-grid">`)
		for _, m := range media {
			p.raw(`<li><img src="/public/uploads/thumbs/`)
			p.text(m.Filename)
			p.raw(`" alt="`)
			p.text(m.AltText)
			p.raw(`" loading="lazy"><span>`)
			p.text(m.Filename)
			p.rawf(` (%dx%d)</span>`, m.Width, m.Height)
			deleteButton(p, "/admin/media/"+m.Filename+"/")
			p.raw(`</li>`)
		}
		p.raw(`</ul><p><a href="/admin/">Back to posts</a></p></section>`)
		deleteScript(p, csrfToken)
	})
}

func input(p *page, label, name, typ, value string) {
	p.raw(`<label>`)
	p.text(label)
	p.raw(` <input type="`)
	p.text(typ)
	p.raw(`" name="`)
	p.text(name)
	p.raw(`" value="`)
	p.text(value)
	p.raw(`"></label>`)
}

func textarea(p *page, label, name, value string, rows int) {
	p.raw(`<label>`)
	p.text(label)
	p.raw(` <textarea name="`)
	p.text(name)
	p.rawf(`" rows="%d">`, rows)
	p.text(value)
	p.raw(`</textarea></label>`)
}
