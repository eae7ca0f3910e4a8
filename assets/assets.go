// Package assets turns the site's image directory into thumbnail assets that
// markdown posts reference by relative path.
package assets

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/eringen/blogindex/content"
)

const (
	// ThumbSize is the edge length of generated square thumbnails.
	ThumbSize   = 100
	jpegQuality = 80

	placeholderSize    = 8
	placeholderQuality = 40
)

// Catalog describes where source images live and where thumbnails go.
type Catalog struct {
	SrcDir    string // directory holding original images
	ThumbDir  string // output directory for generated thumbnails
	URLPrefix string // URL path thumbnails are served under, e.g. "/thumbs"
}

// Scan walks SrcDir and returns one asset per image file. A thumbnail is
// written for each image unless an up-to-date one already exists. Files that
// fail to decode yield an asset without an Image.
func (c Catalog) Scan(logger *zap.Logger) ([]content.ImageAsset, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := os.Stat(c.SrcDir); os.IsNotExist(err) {
		return nil, nil
	}
	var out []content.ImageAsset
	err := filepath.WalkDir(c.SrcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsImage(p) {
			return nil
		}
		rel, err := filepath.Rel(c.SrcDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		img, err := c.thumbnail(p, rel)
		if err != nil {
			logger.Warn("skipping image", zap.String("path", p), zap.Error(err))
		}
		out = append(out, content.ImageAsset{RelativePath: rel, Image: img})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", c.SrcDir, err)
	}
	return out, nil
}

// ThumbName maps an image's relative path to its thumbnail's relative path.
// The source extension is kept so cover.png and cover.jpg do not collide.
func ThumbName(rel string) string {
	return rel + ".jpg"
}

// thumbnail returns the asset image for srcPath. An up-to-date thumbnail on
// disk is reused and only its placeholder is recomputed.
func (c Catalog) thumbnail(srcPath, rel string) (*content.Image, error) {
	name := ThumbName(rel)
	dst := filepath.Join(c.ThumbDir, filepath.FromSlash(name))
	img := &content.Image{
		Src:    strings.TrimRight(c.URLPrefix, "/") + "/" + name,
		Width:  ThumbSize,
		Height: ThumbSize,
	}

	if fresh(srcPath, dst) {
		placeholder, err := placeholderFromFile(dst)
		if err == nil {
			img.Placeholder = placeholder
			return img, nil
		}
	}

	f, err := os.Open(srcPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	thumb, err := Thumbnail(f, ThumbSize, ThumbSize)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(dst, thumb.Data, 0o644); err != nil {
		return nil, fmt.Errorf("write thumbnail: %w", err)
	}
	img.Width, img.Height, img.Placeholder = thumb.Width, thumb.Height, thumb.Placeholder
	return img, nil
}

// placeholderFromFile derives the placeholder from an existing thumbnail.
func placeholderFromFile(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()
	img, err := jpeg.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode thumbnail: %w", err)
	}
	return blurredPlaceholder(img)
}

// fresh reports whether dst exists and is newer than src.
func fresh(src, dst string) bool {
	si, err := os.Stat(src)
	if err != nil {
		return false
	}
	di, err := os.Stat(dst)
	if err != nil {
		return false
	}
	return !di.ModTime().Before(si.ModTime())
}

// IsImage reports whether p has an extension the decoder understands.
func IsImage(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	}
	return false
}

// Thumb is an encoded thumbnail.
type Thumb struct {
	Data        []byte // JPEG bytes
	Width       int
	Height      int
	Placeholder string // data URI
}

// Thumbnail decodes an image from src, center-crops it to the w:h aspect
// ratio, scales it to w x h and encodes it as JPEG. It also renders a tiny
// blurred preview for use as a placeholder.
func Thumbnail(src io.Reader, w, h int) (Thumb, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Thumb{}, fmt.Errorf("decode image: %w", err)
	}

	crop := centerCrop(img.Bounds(), w, h)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Thumb{}, fmt.Errorf("encode jpeg: %w", err)
	}

	placeholder, err := blurredPlaceholder(dst)
	if err != nil {
		return Thumb{}, err
	}
	return Thumb{Data: buf.Bytes(), Width: w, Height: h, Placeholder: placeholder}, nil
}

// centerCrop returns the largest rectangle of b with the w:h aspect ratio,
// centered in b.
func centerCrop(b image.Rectangle, w, h int) image.Rectangle {
	bw, bh := b.Dx(), b.Dy()
	if bw*h > bh*w {
		cw := bh * w / h
		x0 := b.Min.X + (bw-cw)/2
		return image.Rect(x0, b.Min.Y, x0+cw, b.Max.Y)
	}
	ch := bw * h / w
	y0 := b.Min.Y + (bh-ch)/2
	return image.Rect(b.Min.X, y0, b.Max.X, y0+ch)
}

// blurredPlaceholder downsamples img to a few pixels. Browsers upscale it
// smoothly, which reads as a blur.
func blurredPlaceholder(img image.Image) (string, error) {
	small := image.NewRGBA(image.Rect(0, 0, placeholderSize, placeholderSize))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), img, img.Bounds(), draw.Src, nil)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, small, &jpeg.Options{Quality: placeholderQuality}); err != nil {
		return "", fmt.Errorf("encode placeholder: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
