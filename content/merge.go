package content

import (
	"path"
	"strings"
)

// Merge projects both source collections into Posts. Markdown posts come first,
// then CMS posts, each in source order. The result is not sorted.
func Merge(markdown []MarkdownNode, cms []CMSNode, assets []ImageAsset) []Post {
	lookup := newAssetIndex(assets)
	posts := make([]Post, 0, len(markdown)+len(cms))
	for _, n := range markdown {
		posts = append(posts, fromMarkdown(n, lookup))
	}
	for _, n := range cms {
		posts = append(posts, fromCMS(n))
	}
	return posts
}

func fromMarkdown(n MarkdownNode, assets assetIndex) Post {
	fm := n.Frontmatter
	excerpt := n.Excerpt
	if excerpt == "" {
		excerpt = fm.Description
	}
	p := Post{
		Slug:         cleanSlug(n.Fields.Slug),
		Title:        fm.Title,
		Excerpt:      excerpt,
		Body:         n.HTML,
		Category:     fm.Category,
		Tags:         append([]string(nil), fm.Tags...),
		Date:         fm.Date,
		DateModified: fm.DateModified,
	}
	if img := assets.find(fm.FeaturedImagePath); img != nil {
		p.Thumbnail = &Thumbnail{Image: *img, AltText: fm.Title}
	}
	return p
}

func fromCMS(n CMSNode) Post {
	p := Post{
		Slug:         cleanSlug(n.Slug),
		Title:        n.Title,
		Excerpt:      n.Excerpt,
		Body:         n.Content,
		Tags:         n.Tags.Names(),
		Date:         n.Date,
		DateModified: n.Modified,
	}
	if cats := n.Categories.Names(); len(cats) > 0 {
		p.Category = cats[0]
	}
	if fi := n.FeaturedImage; fi != nil && fi.Node.Image != nil {
		p.Thumbnail = &Thumbnail{Image: *fi.Node.Image, AltText: fi.Node.AltText}
	}
	return p
}

func cleanSlug(s string) string {
	return strings.Trim(strings.TrimSpace(s), "/")
}

// assetIndex resolves image paths by full relative path first, then by base name.
type assetIndex struct {
	byPath map[string]*Image
	byName map[string]*Image
}

func newAssetIndex(assets []ImageAsset) assetIndex {
	idx := assetIndex{
		byPath: make(map[string]*Image, len(assets)),
		byName: make(map[string]*Image, len(assets)),
	}
	for i := range assets {
		a := assets[i]
		if a.Image == nil {
			continue
		}
		key := normalizeAssetPath(a.RelativePath)
		if key == "" {
			continue
		}
		if _, dup := idx.byPath[key]; !dup {
			idx.byPath[key] = a.Image
		}
		// first asset wins on base-name collisions
		if _, dup := idx.byName[path.Base(key)]; !dup {
			idx.byName[path.Base(key)] = a.Image
		}
	}
	return idx
}

func (idx assetIndex) find(rel string) *Image {
	key := normalizeAssetPath(rel)
	if key == "" {
		return nil
	}
	if img, ok := idx.byPath[key]; ok {
		return img
	}
	return idx.byName[path.Base(key)]
}

func normalizeAssetPath(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" {
		return ""
	}
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "." {
		return ""
	}
	return p
}
