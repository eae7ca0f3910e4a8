package blogindex

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/eringen/blogindex/assets"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
)

// processedImage is an upload re-encoded for the web plus its thumbnail.
type processedImage struct {
	Media Media
	Full  []byte
	Thumb []byte
}

// processImage decodes an upload, scales it down to maxImageWidth if wider
// and encodes it as JPEG alongside a square thumbnail.
func processImage(src io.Reader, originalName string) (processedImage, error) {
	raw, err := io.ReadAll(src)
	if err != nil {
		return processedImage{}, fmt.Errorf("read upload: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return processedImage{}, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w, h = maxImageWidth, newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return processedImage{}, fmt.Errorf("encode jpeg: %w", err)
	}

	thumb, err := assets.Thumbnail(bytes.NewReader(raw), assets.ThumbSize, assets.ThumbSize)
	if err != nil {
		return processedImage{}, err
	}

	name := slugifyFilename(originalName)
	if name == "" {
		name = "image"
	}
	return processedImage{
		Media: Media{
			Filename:     name + ".jpg",
			OriginalName: originalName,
			Width:        w,
			Height:       h,
			Size:         buf.Len(),
			Placeholder:  thumb.Placeholder,
			UploadedAt:   time.Now().UTC().Format(time.RFC3339),
		},
		Full:  buf.Bytes(),
		Thumb: thumb.Data,
	}, nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return Slugify(base)
}

func (a *App) uploadsDir() string {
	return filepath.Join(a.staticDir, uploadsSubdir)
}

func (a *App) uploadThumbsDir() string {
	return filepath.Join(a.uploadsDir(), "thumbs")
}

// uniqueFilename appends a counter until filename is free both on disk and
// in the media table.
func (a *App) uniqueFilename(filename string) (string, error) {
	base := strings.TrimSuffix(filename, ".jpg")
	candidate := filename
	for counter := 2; ; counter++ {
		_, statErr := os.Stat(filepath.Join(a.uploadsDir(), candidate))
		taken, err := a.Store.HasMedia(candidate)
		if err != nil {
			return "", err
		}
		if statErr != nil && !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
	}
}

func (a *App) handleMediaUpload(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 10MB)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, err := processImage(io.LimitReader(src, maxUploadSize), file.Filename)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image: "+err.Error())
	}
	img.Media.AltText = strings.TrimSpace(c.FormValue("alt_text"))

	if img.Media.Filename, err = a.uniqueFilename(img.Media.Filename); err != nil {
		return err
	}

	if err := os.MkdirAll(a.uploadThumbsDir(), 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(a.uploadsDir(), img.Media.Filename), img.Full, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if err := os.WriteFile(filepath.Join(a.uploadThumbsDir(), img.Media.Filename), img.Thumb, 0o644); err != nil {
		return fmt.Errorf("write thumbnail: %w", err)
	}
	if err := a.Store.SaveMedia(img.Media); err != nil {
		return err
	}
	a.Logger.Info("media uploaded", zap.String("filename", img.Media.Filename), zap.Int("size", img.Media.Size))

	a.Cache.Invalidate()
	return a.renderMediaList(c)
}

func (a *App) handleMediaDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	filename := filepath.Base(c.Param("filename"))
	if filename == "" || filename == "." || filename == "/" {
		return c.String(http.StatusBadRequest, "Filename required")
	}

	// Files may already be gone.
	_ = os.Remove(filepath.Join(a.uploadsDir(), filename))
	_ = os.Remove(filepath.Join(a.uploadThumbsDir(), filename))

	if err := a.Store.DeleteMedia(filename); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderMediaList(c)
}

func (a *App) handleMediaList(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return a.renderMediaList(c)
}

func (a *App) renderMediaList(c echo.Context) error {
	media, err := a.Store.ListMedia()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminMedia(media, CsrfToken(c)))
}
