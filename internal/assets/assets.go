// Package assets downloads product image pairs and derives thumbnails,
// storing them under a continent/country/city tree keyed by product
// number.
package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"sjsage522/travelworker/config"
	"sjsage522/travelworker/helpers"
	"sjsage522/travelworker/internal/geo"
	"sjsage522/travelworker/logger"
)

// Status records the outcome of one image slot.
type Status string

const (
	StatusOK               Status = "ok"
	StatusDownloadFailed   Status = "download_failed"
	StatusResizeFailed     Status = "resize_failed"
	StatusMissingSourceURL Status = "missing_source_url"
)

// Image describes one stored file; paths are empty unless Status is ok.
type Image struct {
	Filename string
	RelPath  string
	AbsPath  string
	Status   Status
}

// Pair is a product's main image plus thumbnail.
type Pair struct {
	Main  Image
	Thumb Image
}

// FetchFunc downloads a URL and returns body plus content type.
type FetchFunc func(url string, timeout time.Duration) ([]byte, string, error)

// Store writes image pairs below one root directory.
type Store struct {
	root      string
	shortEdge int
	quality   int
	timeout   time.Duration
	retry     helpers.RetryConfig
	fetch     FetchFunc
	log       *logger.Logger
}

func NewStore(cfg config.Config) *Store {
	return &Store{
		root:      cfg.ImageRoot,
		shortEdge: cfg.ThumbShortEdge,
		quality:   cfg.JPEGQuality,
		timeout:   cfg.DownloadTimeout,
		retry:     helpers.RetryConfig{MaxAttempts: cfg.MaxRetries, BaseDelay: cfg.RetryBaseDelay},
		fetch:     helpers.FetchBytes,
		log:       logger.ForStore("assets"),
	}
}

// WithFetcher swaps the HTTP layer, for tests.
func (s *Store) WithFetcher(f FetchFunc) *Store {
	s.fetch = f
	return s
}

// CityDir returns the storage directory for a city, relative to the
// store root. City-states have no meaningful country/city split, so
// their tree collapses to the continent level.
func (s *Store) CityDir(city geo.City) string {
	if city.CityState {
		return sanitize(city.Continent)
	}
	return filepath.Join(sanitize(city.Continent), sanitize(city.Country), sanitize(city.Name))
}

func sanitize(part string) string {
	return strings.ReplaceAll(strings.TrimSpace(part), " ", "_")
}

// Save downloads the main/thumbnail pair for one product. A missing
// thumbnail URL falls back to rescaling the downloaded main image; a
// missing main URL leaves the slot recorded as missing rather than
// failing the product.
func (s *Store) Save(city geo.City, productNumber int, mainURL, thumbURL string) Pair {
	relDir := s.CityDir(city)
	absDir := filepath.Join(s.root, relDir)
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		s.log.Error().Str("dir", absDir).Err(err).Msg("image directory create failed")
		return Pair{
			Main:  Image{Status: StatusDownloadFailed},
			Thumb: Image{Status: StatusDownloadFailed},
		}
	}

	var pair Pair
	var mainImg image.Image

	if mainURL == "" {
		pair.Main = Image{Status: StatusMissingSourceURL}
	} else {
		body, contentType, err := s.download(mainURL)
		if err != nil {
			s.log.Warn().Str("url", mainURL).Err(err).Msg("main image download failed")
			pair.Main = Image{Status: StatusDownloadFailed}
		} else {
			decoded, ext := decodeImage(body, contentType, mainURL)
			mainImg = decoded
			filename := fmt.Sprintf("%s_%04d.%s", city.Code, productNumber, ext)
			pair.Main = s.write(filename, relDir, absDir, body)
		}
	}

	switch {
	case mainImg != nil:
		thumb, ext, err := s.renderThumb(mainImg)
		if err != nil {
			s.log.Warn().Int("product", productNumber).Err(err).Msg("thumbnail resize failed")
			pair.Thumb = Image{Status: StatusResizeFailed}
			break
		}
		filename := fmt.Sprintf("%s_%04d_thumb.%s", city.Code, productNumber, ext)
		pair.Thumb = s.write(filename, relDir, absDir, thumb)
	case thumbURL != "":
		body, contentType, err := s.download(thumbURL)
		if err != nil {
			s.log.Warn().Str("url", thumbURL).Err(err).Msg("thumbnail download failed")
			pair.Thumb = Image{Status: StatusDownloadFailed}
			break
		}
		_, ext := decodeImage(body, contentType, thumbURL)
		filename := fmt.Sprintf("%s_%04d_thumb.%s", city.Code, productNumber, ext)
		pair.Thumb = s.write(filename, relDir, absDir, body)
	case mainURL == "":
		pair.Thumb = Image{Status: StatusMissingSourceURL}
	case pair.Main.Status == StatusDownloadFailed:
		pair.Thumb = Image{Status: StatusDownloadFailed}
	default:
		// main bytes arrived but were not decodable, nothing to rescale
		pair.Thumb = Image{Status: StatusResizeFailed}
	}

	return pair
}

func (s *Store) download(url string) ([]byte, string, error) {
	var body []byte
	var contentType string
	err := s.retry.Do("image download", func() error {
		var err error
		body, contentType, err = s.fetch(url, s.timeout)
		return err
	})
	return body, contentType, err
}

func (s *Store) write(filename, relDir, absDir string, body []byte) Image {
	absPath := filepath.Join(absDir, filename)
	if err := os.WriteFile(absPath, body, 0o644); err != nil {
		s.log.Error().Str("path", absPath).Err(err).Msg("image write failed")
		return Image{Status: StatusDownloadFailed}
	}
	return Image{
		Filename: filename,
		RelPath:  filepath.Join(relDir, filename),
		AbsPath:  absPath,
		Status:   StatusOK,
	}
}

// renderThumb scales img so the short edge equals the configured target,
// preserving aspect ratio. Images already at or below the target keep
// their size. Thumbnails are always re-encoded JPEG.
func (s *Store) renderThumb(img image.Image) ([]byte, string, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, "", fmt.Errorf("empty image %dx%d", w, h)
	}

	short := w
	if h < w {
		short = h
	}
	if short > s.shortEdge {
		scale := float64(s.shortEdge) / float64(short)
		dst := image.NewRGBA(image.Rect(0, 0,
			int(float64(w)*scale+0.5), int(float64(h)*scale+0.5)))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "jpg", nil
}

// decodeImage decodes body when possible and picks a file extension from
// the decoded format, the content type, or the URL, in that order.
func decodeImage(body []byte, contentType, url string) (image.Image, string) {
	img, format, err := image.Decode(bytes.NewReader(body))
	if err == nil {
		return img, extForFormat(format)
	}
	if ext := extForContentType(contentType); ext != "" {
		return nil, ext
	}
	if ext := strings.TrimPrefix(filepath.Ext(strings.SplitN(url, "?", 2)[0]), "."); ext != "" {
		return nil, strings.ToLower(ext)
	}
	return nil, "jpg"
}

func extForFormat(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}

func extForContentType(contentType string) string {
	contentType = strings.ToLower(strings.SplitN(contentType, ";", 2)[0])
	switch strings.TrimSpace(contentType) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	}
	return ""
}
