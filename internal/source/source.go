// Package source holds the per-marketplace descriptors: search entrypoints,
// selector chains, pagination controls, and normalisation hints. Adding a
// marketplace means adding a descriptor, not code.
package source

import (
	"regexp"
	"sort"
)

// Field names extracted on detail pages. Title and the landing URL are
// mandatory; everything else degrades to an empty value on selector miss.
const (
	FieldTitle       = "title"
	FieldPrice       = "price"
	FieldRating      = "rating"
	FieldReviewCount = "review_count"
	FieldLanguage    = "language"
	FieldCategory    = "category"
	FieldHighlight   = "highlight"
	FieldLocation    = "location"
	FieldDuration    = "duration"
	FieldMainImage   = "main_image"
	FieldThumbImage  = "thumb_image"
)

// SelectorChain is a prioritised list of CSS selectors; the first selector
// yielding a non-empty value wins.
type SelectorChain []string

// Descriptor describes one marketplace to the pipeline.
type Descriptor struct {
	Name    string // lowercase provider key, e.g. "klook"
	BaseURL string

	// SearchPath is a format string receiving the url-escaped query.
	SearchPath string

	// Tabs maps tab names to the selector that activates the tab filter.
	// The "all" tab needs no activation and is always present.
	Tabs map[string]string

	// AllowedQueryKeys is the canonicalisation allow-list for URL
	// fingerprints.
	AllowedQueryKeys []string

	// ListingReady is the readiness selector for search result pages.
	ListingReady string

	// ProductCards locates product card links on listing pages.
	ProductCards SelectorChain

	// NextSelectors and DisabledNext drive pagination.
	NextSelectors []string
	DisabledNext  []string

	// DetailReady is the readiness selector for product detail pages.
	DetailReady string

	// Fields maps field names to detail-page selector chains.
	Fields map[string]SelectorChain

	// ImageAttrs lists the attributes probed for image URLs, in order.
	ImageAttrs []string

	// ProductIDRegex extracts the provider product id from a landing URL.
	ProductIDRegex *regexp.Regexp

	// CurrencyHint is assumed when a price carries no recognisable
	// currency marker.
	CurrencyHint string

	// ProductType is the default product_type column value.
	ProductType string

	// Experimental marks descriptors whose selectors are not yet
	// production-verified.
	Experimental bool
}

// TabNames returns the descriptor's tabs with "all" first.
func (d Descriptor) TabNames() []string {
	out := []string{"all"}
	rest := make([]string, 0, len(d.Tabs))
	for tab := range d.Tabs {
		if tab != "all" {
			rest = append(rest, tab)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
