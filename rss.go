package blogindex

import (
	"encoding/xml"
	"io"
	"time"

	"github.com/eringen/blogindex/content"
)

// feedSize caps how many posts the RSS feed carries.
const feedSize = 20

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Category    []string `xml:"category,omitempty"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        string   `xml:"guid"`
}

// WriteFeed writes an RSS 2.0 feed of the newest posts. posts must be sorted
// newest first.
func WriteFeed(w io.Writer, cfg SiteConfig, posts []content.Post) error {
	base := cfg.URL
	if len(posts) > feedSize {
		posts = posts[:feedSize]
	}
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		pubDate := ""
		if !p.Date.IsZero() {
			pubDate = p.Date.Format(time.RFC1123Z)
		}
		link := absURL(base, cfg.PostPath(p))
		item := rssItem{
			Title:       p.Title,
			Link:        link,
			Description: p.Excerpt,
			PubDate:     pubDate,
			GUID:        link,
		}
		if p.Category != "" {
			item.Category = append(item.Category, p.Category)
		}
		item.Category = append(item.Category, p.Tags...)
		items = append(items, item)
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.Name,
			Link:        base,
			Description: cfg.Description,
			Items:       items,
		},
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(feed)
}
