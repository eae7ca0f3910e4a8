// Package markdown loads blog posts written as markdown files with a YAML
// frontmatter block and renders markdown bodies to sanitized HTML.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ExcerptLength is the number of characters kept in a generated excerpt.
const ExcerptLength = 140

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			// Raw HTML passes through; bodyPolicy sanitizes the output.
			gmhtml.WithUnsafe(),
		),
	)
	bodyPolicy = newBodyPolicy()
	textPolicy = newTextPolicy()
)

func newTextPolicy() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}

func newBodyPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre")
	p.RequireNoFollowOnLinks(true)
	return p
}

// Markdown returns a templ.Component that renders src as HTML.
func Markdown(src string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out, err := Render([]byte(src))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	})
}

// Render converts markdown to sanitized HTML.
func Render(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return "", err
	}
	return bodyPolicy.Sanitize(buf.String()), nil
}

// Excerpt reduces rendered HTML to at most n characters of escaped plain text,
// appending an ellipsis when it had to cut.
func Excerpt(renderedHTML string, n int) string {
	text := html.UnescapeString(textPolicy.Sanitize(renderedHTML))
	text = strings.Join(strings.Fields(text), " ")
	if n > 0 && utf8.RuneCountInString(text) > n {
		runes := []rune(text)
		text = strings.TrimSpace(string(runes[:n])) + "…"
	}
	return html.EscapeString(text)
}
