package blogindex

import (
	"encoding/xml"
	"io"
	"strconv"

	"github.com/eringen/blogindex/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// WriteSitemap writes a sitemap listing the home page, every further listing
// page and every post. posts must be sorted newest first.
func WriteSitemap(w io.Writer, cfg SiteConfig, posts []content.Post) error {
	base := cfg.URL
	urls := make([]sitemapURL, 0, len(posts)+2)

	home := sitemapURL{Loc: BuildURL(base)}
	if len(posts) > 0 {
		home.LastMod = lastMod(posts[0])
	}
	urls = append(urls, home)

	for n := 2; n <= content.MaxPage(len(posts), cfg.PerPage); n++ {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, "page", strconv.Itoa(n))})
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     absURL(base, cfg.PostPath(p)),
			LastMod: lastMod(p),
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	})
}

func lastMod(p content.Post) string {
	t := p.DateModified
	if t.IsZero() {
		t = p.Date
	}
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
