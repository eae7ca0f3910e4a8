package blogindex

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/blogindex/assets"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessImageResizesWideImages(t *testing.T) {
	img, err := processImage(bytes.NewReader(pngBytes(t, 1600, 400)), "My Photo.PNG")
	require.NoError(t, err)

	assert.Equal(t, "my-photo.jpg", img.Media.Filename)
	assert.Equal(t, "My Photo.PNG", img.Media.OriginalName)
	assert.Equal(t, maxImageWidth, img.Media.Width)
	assert.Equal(t, 200, img.Media.Height)
	assert.Equal(t, len(img.Full), img.Media.Size)
	assert.True(t, strings.HasPrefix(img.Media.Placeholder, "data:image/jpeg;base64,"))

	thumb, err := jpeg.DecodeConfig(bytes.NewReader(img.Thumb))
	require.NoError(t, err)
	assert.Equal(t, assets.ThumbSize, thumb.Width)
	assert.Equal(t, assets.ThumbSize, thumb.Height)
}

func TestProcessImageKeepsSmallImages(t *testing.T) {
	img, err := processImage(bytes.NewReader(pngBytes(t, 300, 200)), "???.png")
	require.NoError(t, err)
	assert.Equal(t, "image.jpg", img.Media.Filename)
	assert.Equal(t, 300, img.Media.Width)
	assert.Equal(t, 200, img.Media.Height)
}

func TestProcessImageRejectsGarbage(t *testing.T) {
	_, err := processImage(strings.NewReader("not an image"), "x.png")
	assert.Error(t, err)
}

func TestMediaUploadAndDelete(t *testing.T) {
	a := newTestApp(t)
	c := newAdminClient(t, a)
	require.Equal(t, http.StatusSeeOther, c.post("/admin/login/", map[string][]string{"password": {"secret"}}).Code)

	upload := func() *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile("image", "cover.png")
		require.NoError(t, err)
		_, err = fw.Write(pngBytes(t, 120, 80))
		require.NoError(t, err)
		require.NoError(t, mw.WriteField("alt_text", "The cover"))
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/admin/media/upload/", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return c.do(req)
	}

	rec := upload()
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "media 1", rec.Body.String())
	rec = upload()
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "media 2", rec.Body.String())

	for _, name := range []string{"cover.jpg", "cover-2.jpg"} {
		_, err := os.Stat(filepath.Join(a.uploadsDir(), name))
		assert.NoError(t, err, name)
		_, err = os.Stat(filepath.Join(a.uploadThumbsDir(), name))
		assert.NoError(t, err, name)
	}
	m, err := a.Store.ListMedia()
	require.NoError(t, err)
	assert.Equal(t, "The cover", m[0].AltText)

	rec = c.do(httptest.NewRequest(http.MethodDelete, "/admin/media/cover.jpg/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "media 1", rec.Body.String())
	_, err = os.Stat(filepath.Join(a.uploadsDir(), "cover.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestMediaRequiresAdmin(t *testing.T) {
	a := newTestApp(t)
	rec := get(a, "/admin/media/")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}
