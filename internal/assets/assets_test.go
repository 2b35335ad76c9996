package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/travelworker/config"
	"sjsage522/travelworker/internal/geo"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 255), G: uint8(y % 255), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newStore(t *testing.T, fetch FetchFunc) *Store {
	t.Helper()
	cfg := config.LoadConfig()
	cfg.ImageRoot = t.TempDir()
	cfg.MaxRetries = 1
	cfg.RetryBaseDelay = time.Millisecond
	return NewStore(cfg).WithFetcher(fetch)
}

func seoul() geo.City {
	return geo.City{Name: "Seoul", Continent: "Asia", Country: "South Korea", Code: "SEL"}
}

func TestSave_MainAndDerivedThumb(t *testing.T) {
	body := pngBytes(t, 800, 600)
	s := newStore(t, func(url string, _ time.Duration) ([]byte, string, error) {
		return body, "image/png", nil
	})

	pair := s.Save(seoul(), 7, "https://cdn.example.com/main.png", "")
	require.Equal(t, StatusOK, pair.Main.Status)
	require.Equal(t, StatusOK, pair.Thumb.Status)

	assert.Equal(t, "SEL_0007.png", pair.Main.Filename)
	assert.Equal(t, "SEL_0007_thumb.jpg", pair.Thumb.Filename)
	assert.Equal(t, filepath.Join("Asia", "South_Korea", "Seoul", "SEL_0007.png"), pair.Main.RelPath)

	raw, err := os.ReadFile(pair.Thumb.AbsPath)
	require.NoError(t, err)
	thumb, _, err := image.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	// 800x600 scaled so the short edge is 300 → 400x300
	assert.Equal(t, 300, thumb.Bounds().Dy())
	assert.Equal(t, 400, thumb.Bounds().Dx())
}

func TestSave_SmallImageNotUpscaled(t *testing.T) {
	body := pngBytes(t, 200, 150)
	s := newStore(t, func(url string, _ time.Duration) ([]byte, string, error) {
		return body, "image/png", nil
	})

	pair := s.Save(seoul(), 1, "https://cdn.example.com/small.png", "")
	require.Equal(t, StatusOK, pair.Thumb.Status)

	raw, err := os.ReadFile(pair.Thumb.AbsPath)
	require.NoError(t, err)
	thumb, _, err := image.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 200, thumb.Bounds().Dx())
	assert.Equal(t, 150, thumb.Bounds().Dy())
}

func TestSave_CityStateCollapsesPath(t *testing.T) {
	body := pngBytes(t, 400, 400)
	s := newStore(t, func(url string, _ time.Duration) ([]byte, string, error) {
		return body, "image/png", nil
	})
	singapore := geo.City{Name: "Singapore", Continent: "Asia", Country: "Singapore", Code: "SIN", CityState: true}

	pair := s.Save(singapore, 3, "https://cdn.example.com/m.png", "")
	require.Equal(t, StatusOK, pair.Main.Status)
	assert.Equal(t, filepath.Join("Asia", "SIN_0003.png"), pair.Main.RelPath)
}

func TestSave_MissingMainURL(t *testing.T) {
	s := newStore(t, func(url string, _ time.Duration) ([]byte, string, error) {
		t.Fatal("fetch must not be called")
		return nil, "", nil
	})

	pair := s.Save(seoul(), 9, "", "")
	assert.Equal(t, StatusMissingSourceURL, pair.Main.Status)
	assert.Equal(t, StatusMissingSourceURL, pair.Thumb.Status)
	assert.Empty(t, pair.Main.Filename)
}

func TestSave_DownloadFailure(t *testing.T) {
	s := newStore(t, func(url string, _ time.Duration) ([]byte, string, error) {
		return nil, "", fmt.Errorf("connection reset")
	})

	pair := s.Save(seoul(), 2, "https://cdn.example.com/gone.jpg", "")
	assert.Equal(t, StatusDownloadFailed, pair.Main.Status)
	assert.Equal(t, StatusDownloadFailed, pair.Thumb.Status)
}

func TestSave_ThumbURLFallbackWhenMainUndecodable(t *testing.T) {
	thumbBody := pngBytes(t, 300, 300)
	s := newStore(t, func(url string, _ time.Duration) ([]byte, string, error) {
		if url == "https://cdn.example.com/thumb.png" {
			return thumbBody, "image/png", nil
		}
		return []byte("not an image"), "image/jpeg", nil
	})

	pair := s.Save(seoul(), 4, "https://cdn.example.com/main.jpg", "https://cdn.example.com/thumb.png")
	// main bytes are stored as-is even when undecodable
	assert.Equal(t, StatusOK, pair.Main.Status)
	assert.Equal(t, "SEL_0004.jpg", pair.Main.Filename)
	// thumbnail comes from the dedicated URL since the main could not be rescaled
	require.Equal(t, StatusOK, pair.Thumb.Status)
	assert.Equal(t, "SEL_0004_thumb.png", pair.Thumb.Filename)
}
