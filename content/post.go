// Package content normalizes posts from the markdown pipeline and the CMS store
// into a single list and selects related posts for an article page.
//
// Nothing in this package performs I/O. Callers resolve the source collections
// first and hand them in as plain slices.
package content

import "time"

// Post is the normalized article record used by listings and related lists.
type Post struct {
	Slug         string
	Title        string
	Excerpt      string // HTML snippet
	Body         string // full HTML, may be empty
	Category     string
	Tags         []string
	Date         time.Time
	DateModified time.Time
	Thumbnail    *Thumbnail // nil when the post has no resolvable image
}

// HasTag reports whether tag is one of the post's tags.
func (p Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Thumbnail pairs a processed image with its alt text.
type Thumbnail struct {
	Image   Image
	AltText string
}

// Image describes a processed, ready-to-serve image.
type Image struct {
	Src         string
	Width       int
	Height      int
	Placeholder string // blurred preview as a data URI, may be empty
}

// MarkdownNode is a post as produced by the markdown pipeline.
type MarkdownNode struct {
	Excerpt     string
	HTML        string
	Fields      MarkdownFields
	Frontmatter Frontmatter
}

// MarkdownFields holds values derived from the file location.
type MarkdownFields struct {
	Slug string
}

// Frontmatter is the metadata block at the top of a markdown file.
type Frontmatter struct {
	Title             string
	Date              time.Time
	DateModified      time.Time
	Description       string
	FeaturedImagePath string // relative to the images directory
	Category          string
	Tags              []string
}

// CMSNode is a post as exposed by the CMS store, with relational fields nested
// the way the CMS returns them.
type CMSNode struct {
	Title         string
	Excerpt       string
	Content       string // HTML
	Slug          string
	Date          time.Time
	Modified      time.Time
	FeaturedImage *FeaturedImage
	Categories    TermConnection
	Tags          TermConnection
}

// FeaturedImage wraps the media item attached to a CMS post.
type FeaturedImage struct {
	Node MediaNode
}

// MediaNode is a CMS media item.
type MediaNode struct {
	AltText string
	Image   *Image
}

// TermConnection is a list of taxonomy terms.
type TermConnection struct {
	Nodes []Term
}

// Names returns the term names in order, skipping blanks.
func (c TermConnection) Names() []string {
	var names []string
	for _, n := range c.Nodes {
		if n.Name != "" {
			names = append(names, n.Name)
		}
	}
	return names
}

// Term is a category or tag.
type Term struct {
	Name string
}

// ImageAsset is an entry of the image directory, keyed by its path relative to it.
type ImageAsset struct {
	RelativePath string
	Image        *Image // nil when the file could not be processed
}
