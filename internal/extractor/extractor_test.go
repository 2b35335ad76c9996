package extractor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/travelworker/config"
	"sjsage522/travelworker/internal/source"
	errs "sjsage522/travelworker/pkg/errors"
)

const detailPage = `
<html><body>
  <h1 id="activity_title"> N Seoul Tower Observatory Ticket </h1>
  <div class="price-box"><span class="price">₩ 29,600원</span></div>
  <div class="rating-score">
    <span class="score">9.4</span>
    <span class="review-count">(1,234 reviews)</span>
  </div>
  <div class="experience-lang"><span class="lang-value">Korean, English</span></div>
  <div class="breadcrumb"><ul><li><a>Seoul</a></li><li><a>Attractions</a></li><li><a>Tower</a></li></ul></div>
  <div class="activity-highlights"><li>Panoramic night view</li></div>
  <div class="address-info"><span class="address">105 Namsangongwon-gil</span></div>
  <div class="experience-duration"><span class="duration-value">2 hours</span></div>
  <div class="activity-banner"><img data-src="//cdn.klook.com/images/tower.jpg"/></div>
</body></html>`

func newExtractor() *Extractor {
	return New(source.Klook(), nil, config.LoadConfig())
}

func TestFromHTML(t *testing.T) {
	e, err := newExtractor().FromHTML("https://www.klook.com/activity/1234-tower", detailPage)
	require.NoError(t, err)

	assert.Equal(t, "N Seoul Tower Observatory Ticket", e.Title)
	assert.Equal(t, "₩ 29,600원", e.PriceRaw)
	assert.Equal(t, "29600", e.PriceClean)
	assert.Equal(t, "9.4", e.RatingRaw)
	assert.Equal(t, "4.70", e.RatingClean)
	assert.Equal(t, 1234, e.ReviewCount)
	assert.Equal(t, "Korean, English", e.Language)
	assert.Equal(t, "Panoramic night view", e.Highlight)
	assert.Equal(t, "2 hours", e.Duration)
	assert.Equal(t, "https://cdn.klook.com/images/tower.jpg", e.MainImageURL)
	assert.False(t, e.Partial())
}

func TestFromHTML_MissingTitle(t *testing.T) {
	_, err := newExtractor().FromHTML("https://www.klook.com/activity/1", "<html><body><p>x</p></body></html>")
	require.Error(t, err)
	assert.Equal(t, errs.KindSelectorMiss, errs.KindOf(err))
}

func TestFromHTML_PartialFields(t *testing.T) {
	e, err := newExtractor().FromHTML("https://www.klook.com/activity/2",
		`<html><body><h1>Bare Listing</h1></body></html>`)
	require.NoError(t, err)
	assert.True(t, e.Partial())
	assert.Contains(t, e.MissingKeys, source.FieldPrice)
	assert.Contains(t, e.MissingKeys, source.FieldMainImage)
	assert.Equal(t, 0, e.ReviewCount)
}

func TestFromHTML_UnparseableNumbersStayPartial(t *testing.T) {
	page := `<html><body>
	  <h1>Free Gallery Entry</h1>
	  <div class="price-box"><span class="price">FREE ENTRY</span></div>
	  <div class="rating-score"><span class="score">excellent</span></div>
	</body></html>`
	e, err := newExtractor().FromHTML("https://www.klook.com/activity/4", page)
	require.NoError(t, err)

	// raw values survive, cleaned forms stay empty, record degrades
	assert.Equal(t, "FREE ENTRY", e.PriceRaw)
	assert.Empty(t, e.PriceClean)
	assert.Equal(t, "excellent", e.RatingRaw)
	assert.Empty(t, e.RatingClean)
	assert.True(t, e.Partial())
	assert.Contains(t, e.MissingKeys, source.FieldPrice)
	assert.Contains(t, e.MissingKeys, source.FieldRating)
}

func TestExtractStatic(t *testing.T) {
	// title carries a latin-1 byte; the fetch path must convert it
	page := "<html><body><h1>Caf\xe9 Walking Tour</h1>" +
		`<div class="price-box"><span class="price">$25</span></div></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	e, err := newExtractor().ExtractStatic(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Café Walking Tour", e.Title)
	assert.Equal(t, "25", e.PriceClean)
}

func TestExtractStatic_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newExtractor().ExtractStatic(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, errs.KindNetwork, errs.KindOf(err))
}

func TestFromHTML_SelectorChainFallback(t *testing.T) {
	// first two title selectors miss; bare h1 wins
	e, err := newExtractor().FromHTML("https://www.klook.com/activity/3",
		`<html><body><h1>Fallback Title</h1><div class="price-box"><span class="price">$12</span></div></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "Fallback Title", e.Title)
	assert.Equal(t, "12", e.PriceClean)
}

func TestCleanPrice(t *testing.T) {
	testCases := []struct {
		raw      string
		expected string
	}{
		{"29,600원", "29600"},
		{"₩ 29,600", "29600"},
		{"$1,234.50", "1234.50"},
		{"From US$ 45", "45"},
		{"무료", ""},
		{"", ""},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, CleanPrice(tc.raw), tc.raw)
	}
}

func TestCleanRating(t *testing.T) {
	testCases := []struct {
		raw      string
		expected string
	}{
		{"4.5", "4.50"},
		{"9.4", "4.70"},
		{"94", "4.70"},
		{"5", "5.00"},
		{"10", "5.00"},
		{"100", "5.00"},
		{"0", "0.00"},
	}
	for _, tc := range testCases {
		got, err := CleanRating(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.expected, got, tc.raw)
	}

	_, err := CleanRating("101")
	assert.Error(t, err)
	_, err = CleanRating("no digits")
	assert.Error(t, err)
}

func TestCleanReviewCount(t *testing.T) {
	assert.Equal(t, 1234, CleanReviewCount("(1,234 reviews)"))
	assert.Equal(t, 7, CleanReviewCount("7 후기"))
	assert.Equal(t, 0, CleanReviewCount("no reviews yet"))
	assert.Equal(t, 0, CleanReviewCount(""))
}

func TestDurationHours(t *testing.T) {
	testCases := []struct {
		raw      string
		expected float64
	}{
		{"half day", 4},
		{"Full Day tour", 8},
		{"2 hours", 2},
		{"1.5 hours", 1.5},
		{"90 minutes", 1.5},
		{"1 hour 30 minutes", 1.5},
		{"2시간", 2},
		{"3", 3},
		{"", 0},
	}
	for _, tc := range testCases {
		assert.InDelta(t, tc.expected, DurationHours(tc.raw), 0.001, tc.raw)
	}
}
