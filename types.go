package blogindex

// CMSPost is a post as edited in the admin and stored in SQLite. It is the
// CMS content source; readers see it through Store.ListNodes.
type CMSPost struct {
	Slug          string
	Title         string
	Excerpt       string // HTML
	Content       string // markdown
	Date          string // YYYY-MM-DD
	Modified      string // YYYY-MM-DD
	Categories    []string
	Tags          []string
	FeaturedImage string // media filename, empty for none
	Published     bool
}

// Media is an uploaded image. The file lives under the uploads directory and
// its thumbnail under uploads/thumbs.
type Media struct {
	Filename     string
	OriginalName string
	AltText      string
	Width        int
	Height       int
	Size         int
	Placeholder  string
	UploadedAt   string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}
