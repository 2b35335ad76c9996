package source

import "regexp"

// MyRealTrip returns the descriptor for myrealtrip.com.
func MyRealTrip() Descriptor {
	return Descriptor{
		Name:       "myrealtrip",
		BaseURL:    "https://www.myrealtrip.com",
		SearchPath: "/search?q=%s&page=1",
		Tabs: map[string]string{
			"all":        "",
			"tours":      "button[data-tab='tour']",
			"tickets":    "button[data-tab='ticket']",
			"activities": "button[data-tab='activity']",
		},
		AllowedQueryKeys: []string{"q", "page", "tab"},
		ListingReady:     "section.search-results, ul.offer-list",
		ProductCards: SelectorChain{
			"section.search-results a.offer-card",
			"ul.offer-list li > a",
			"a[href*='/offers/']",
		},
		NextSelectors: []string{
			"button.pagination-next",
			"a[rel='next']",
		},
		DisabledNext: []string{
			"button.pagination-next[disabled]",
		},
		DetailReady: "h1",
		Fields: map[string]SelectorChain{
			FieldTitle: {
				"h1.offer-title",
				"header h1",
				"h1",
			},
			FieldPrice: {
				"div.price-area strong.price",
				"span.offer-price",
			},
			FieldRating: {
				"div.review-summary span.score",
				"span.offer-rating",
			},
			FieldReviewCount: {
				"div.review-summary span.count",
				"a.review-link span",
			},
			FieldLanguage: {
				"ul.offer-info li[data-type='language'] span",
				"div.guide-language span",
			},
			FieldCategory: {
				"nav.breadcrumb a:last-of-type",
			},
			FieldHighlight: {
				"div.offer-description li",
				"section.highlights p",
			},
			FieldLocation: {
				"div.meeting-point address",
				"span.offer-city",
			},
			FieldDuration: {
				"ul.offer-info li[data-type='duration'] span",
			},
			FieldMainImage: {
				"div.offer-gallery img",
				"div.photo-main img",
			},
			FieldThumbImage: {
				"div.offer-gallery img",
				"ul.photo-thumbs li:first-child img",
			},
		},
		ImageAttrs:     []string{"src", "data-src"},
		ProductIDRegex: regexp.MustCompile(`/offers/(\d+)`),
		CurrencyHint:   "KRW",
		ProductType:    "tour",
	}
}
