package source

import "regexp"

// Klook returns the descriptor for klook.com.
func Klook() Descriptor {
	return Descriptor{
		Name:       "klook",
		BaseURL:    "https://www.klook.com",
		SearchPath: "/search/result/?query=%s&page=1",
		Tabs: map[string]string{
			"all":        "",
			"tours":      "a[data-category='tours-sightseeing']",
			"activities": "a[data-category='activities-experiences']",
			"transport":  "a[data-category='transport-travel-services']",
		},
		AllowedQueryKeys: []string{"query", "page", "city_id"},
		ListingReady:     "div.search-result-list, div[data-testid='search-result']",
		ProductCards: SelectorChain{
			"div.search-result-list a.result-card-link",
			"a[data-testid='activity-card']",
			"div.activity-card-wrap > a",
		},
		NextSelectors: []string{
			"button.klk-pagination-next",
			"li.next > a",
			"a[aria-label='Next page']",
		},
		DisabledNext: []string{
			"button.klk-pagination-next[disabled]",
			"li.next.disabled",
		},
		DetailReady: "h1",
		Fields: map[string]SelectorChain{
			FieldTitle: {
				"h1#activity_title",
				"h1.activity-title",
				"h1",
			},
			FieldPrice: {
				"div.price-box span.price",
				"span[data-testid='price-value']",
				"div.activity-price b",
			},
			FieldRating: {
				"div.rating-score span.score",
				"span[data-testid='rating-score']",
			},
			FieldReviewCount: {
				"div.rating-score span.review-count",
				"a[data-testid='review-count']",
			},
			FieldLanguage: {
				"div.experience-lang span.lang-value",
				"div[data-testid='package-language']",
			},
			FieldCategory: {
				"div.breadcrumb li:nth-last-child(2) a",
				"nav.breadcrumbs a:last-of-type",
			},
			FieldHighlight: {
				"div.activity-highlights li",
				"div[data-testid='experience-highlight']",
			},
			FieldLocation: {
				"div.address-info span.address",
				"div[data-testid='activity-location']",
			},
			FieldDuration: {
				"div.experience-duration span.duration-value",
				"span[data-testid='duration']",
			},
			FieldMainImage: {
				"div.activity-banner img",
				"div.swiper-slide-active img",
			},
			FieldThumbImage: {
				"div.activity-banner img",
				"ul.banner-thumbs li:first-child img",
			},
		},
		ImageAttrs:     []string{"src", "data-src", "data-lazy-src"},
		ProductIDRegex: regexp.MustCompile(`/activity/(\d+)`),
		CurrencyHint:   "KRW",
		ProductType:    "activity",
	}
}
