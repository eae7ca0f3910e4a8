package assets

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestThumbnailSizeAndPlaceholder(t *testing.T) {
	var src bytes.Buffer
	require.NoError(t, png.Encode(&src, image.NewRGBA(image.Rect(0, 0, 300, 120))))

	thumb, err := Thumbnail(&src, ThumbSize, ThumbSize)
	require.NoError(t, err)

	assert.Equal(t, ThumbSize, thumb.Width)
	assert.Equal(t, ThumbSize, thumb.Height)
	assert.True(t, strings.HasPrefix(thumb.Placeholder, "data:image/jpeg;base64,"))

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(thumb.Data))
	require.NoError(t, err)
	assert.Equal(t, ThumbSize, cfg.Width)
	assert.Equal(t, ThumbSize, cfg.Height)
}

func TestThumbnailRejectsGarbage(t *testing.T) {
	_, err := Thumbnail(strings.NewReader("not an image"), ThumbSize, ThumbSize)
	assert.Error(t, err)
}

func TestCenterCrop(t *testing.T) {
	tests := []struct {
		name string
		in   image.Rectangle
		want image.Rectangle
	}{
		{"wide", image.Rect(0, 0, 300, 100), image.Rect(100, 0, 200, 100)},
		{"tall", image.Rect(0, 0, 100, 300), image.Rect(0, 100, 100, 200)},
		{"square", image.Rect(0, 0, 50, 50), image.Rect(0, 0, 50, 50)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, centerCrop(tt.in, 1, 1))
		})
	}
}

func TestCatalogScan(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "images")
	thumbs := filepath.Join(root, "thumbs")
	writePNG(t, filepath.Join(src, "covers", "hello.png"), 40, 20)
	require.NoError(t, os.WriteFile(filepath.Join(src, "broken.png"), []byte("nope"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "readme.txt"), []byte("skip"), 0o644))

	c := Catalog{SrcDir: src, ThumbDir: thumbs, URLPrefix: "/thumbs/"}
	got, err := c.Scan(nil)
	require.NoError(t, err)
	require.Len(t, got, 2)

	byPath := map[string]bool{}
	for _, a := range got {
		byPath[a.RelativePath] = a.Image != nil
		if a.RelativePath == "covers/hello.png" {
			require.NotNil(t, a.Image)
			assert.Equal(t, "/thumbs/covers/hello.png.jpg", a.Image.Src)
			assert.Equal(t, ThumbSize, a.Image.Width)
		}
	}
	assert.Equal(t, map[string]bool{"covers/hello.png": true, "broken.png": false}, byPath)

	_, err = os.Stat(filepath.Join(thumbs, "covers", "hello.png.jpg"))
	assert.NoError(t, err)
}

func TestCatalogScanMissingDir(t *testing.T) {
	c := Catalog{SrcDir: filepath.Join(t.TempDir(), "absent"), ThumbDir: t.TempDir()}
	got, err := c.Scan(nil)
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestThumbName(t *testing.T) {
	assert.Equal(t, "a/b.png.jpg", ThumbName("a/b.png"))
	assert.Equal(t, "c.jpeg.jpg", ThumbName("c.jpeg"))
	assert.NotEqual(t, ThumbName("cover.png"), ThumbName("cover.jpg"))
}

func TestCatalogScanKeepsSameNameImagesApart(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "images")
	thumbs := filepath.Join(root, "thumbs")
	writePNG(t, filepath.Join(src, "cover.png"), 40, 20)
	require.NoError(t, os.MkdirAll(src, 0o755))
	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, image.NewRGBA(image.Rect(0, 0, 30, 30)), nil))
	require.NoError(t, os.WriteFile(filepath.Join(src, "cover.jpg"), jpg.Bytes(), 0o644))

	got, err := Catalog{SrcDir: src, ThumbDir: thumbs, URLPrefix: "/thumbs"}.Scan(nil)
	require.NoError(t, err)
	require.Len(t, got, 2)

	srcs := map[string]string{}
	for _, a := range got {
		require.NotNil(t, a.Image, a.RelativePath)
		srcs[a.RelativePath] = a.Image.Src
	}
	assert.Equal(t, map[string]string{
		"cover.jpg": "/thumbs/cover.jpg.jpg",
		"cover.png": "/thumbs/cover.png.jpg",
	}, srcs)
	for _, name := range []string{"cover.jpg.jpg", "cover.png.jpg"} {
		_, err := os.Stat(filepath.Join(thumbs, name))
		assert.NoError(t, err, name)
	}
}

func TestCatalogScanReusesFreshThumbnail(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "images")
	thumbs := filepath.Join(root, "thumbs")
	srcPath := filepath.Join(src, "hello.png")
	writePNG(t, srcPath, 40, 20)
	c := Catalog{SrcDir: src, ThumbDir: thumbs, URLPrefix: "/thumbs"}

	first, err := c.Scan(nil)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.NotNil(t, first[0].Image)

	// An undecodable source older than its thumbnail is never opened.
	require.NoError(t, os.WriteFile(srcPath, []byte("corrupt"), 0o644))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(srcPath, old, old))

	second, err := c.Scan(nil)
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.NotNil(t, second[0].Image)
	assert.Equal(t, first[0].Image.Src, second[0].Image.Src)
	assert.True(t, strings.HasPrefix(second[0].Image.Placeholder, "data:image/jpeg;base64,"))

	// A newer source is regenerated, so the corrupt file now fails.
	now := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(srcPath, now, now))
	third, err := c.Scan(nil)
	require.NoError(t, err)
	assert.Nil(t, third[0].Image)
}
