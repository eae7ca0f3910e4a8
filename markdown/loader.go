package markdown

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/eringen/blogindex/content"
)

// dateLayouts are tried in order when parsing frontmatter dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// matter mirrors the frontmatter keys a post may set.
type matter struct {
	Title             string   `yaml:"title"`
	Slug              string   `yaml:"slug"`
	Date              string   `yaml:"date"`
	DateModified      string   `yaml:"dateModified"`
	Description       string   `yaml:"description"`
	FeaturedImagePath string   `yaml:"featuredImagePath"`
	Category          string   `yaml:"category"`
	Tags              []string `yaml:"tags"`
	Draft             bool     `yaml:"draft"`
}

// LoadDir walks fsys for .md and .mdx files and returns one node per
// non-draft post. Files whose frontmatter cannot be parsed are treated as
// plain markdown.
func LoadDir(fsys fs.FS, logger *zap.Logger) ([]content.MarkdownNode, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var nodes []content.MarkdownNode
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isMarkdown(p) {
			return nil
		}
		src, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		node, ok, err := Parse(p, src, logger)
		if err != nil {
			return err
		}
		if ok {
			nodes = append(nodes, node)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// Parse builds a node from the file at path p with contents src. ok is false
// for drafts.
func Parse(p string, src []byte, logger *zap.Logger) (node content.MarkdownNode, ok bool, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var fm matter
	body, fmErr := frontmatter.Parse(bytes.NewReader(src), &fm)
	if fmErr != nil {
		logger.Warn("unparseable frontmatter, treating as plain markdown",
			zap.String("path", p), zap.Error(fmErr))
		body = src
		fm = matter{}
	}
	if fm.Draft {
		return content.MarkdownNode{}, false, nil
	}

	rendered, err := Render(body)
	if err != nil {
		return content.MarkdownNode{}, false, fmt.Errorf("render %s: %w", p, err)
	}

	slug := fm.Slug
	if slug == "" {
		slug = slugFromPath(p)
	}
	title := fm.Title
	if title == "" {
		title = titleFromSlug(slug)
	}
	date := parseDate(fm.Date, p, logger)
	modified := parseDate(fm.DateModified, p, logger)
	if modified.IsZero() {
		modified = date
	}

	return content.MarkdownNode{
		Excerpt: Excerpt(rendered, ExcerptLength),
		HTML:    rendered,
		Fields:  content.MarkdownFields{Slug: slug},
		Frontmatter: content.Frontmatter{
			Title:             title,
			Date:              date,
			DateModified:      modified,
			Description:       fm.Description,
			FeaturedImagePath: fm.FeaturedImagePath,
			Category:          strings.TrimSpace(fm.Category),
			Tags:              trimAll(fm.Tags),
		},
	}, true, nil
}

func isMarkdown(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".md", ".mdx":
		return true
	}
	return false
}

// slugFromPath maps "2024/hello.md" to "hello" and "hello/index.md" to "hello".
func slugFromPath(p string) string {
	base := strings.TrimSuffix(path.Base(p), path.Ext(p))
	if strings.EqualFold(base, "index") {
		if dir := path.Base(path.Dir(p)); dir != "." && dir != "/" {
			return dir
		}
	}
	return base
}

func titleFromSlug(slug string) string {
	words := strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	return cases.Title(language.English).String(words)
}

func parseDate(s, p string, logger *zap.Logger) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	logger.Warn("unparseable date", zap.String("path", p), zap.String("value", s))
	return time.Time{}
}

func trimAll(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}
