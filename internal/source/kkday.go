package source

import "regexp"

// KKday returns the descriptor for kkday.com.
func KKday() Descriptor {
	return Descriptor{
		Name:       "kkday",
		BaseURL:    "https://www.kkday.com",
		SearchPath: "/ko/product/productlist/?keyword=%s&page=1",
		Tabs: map[string]string{
			"all":     "",
			"tours":   "a[data-cat='M01']",
			"tickets": "a[data-cat='M03']",
			"food":    "a[data-cat='M07']",
		},
		AllowedQueryKeys: []string{"keyword", "page", "city"},
		ListingReady:     "div.product-list, div.splitListContainer",
		ProductCards: SelectorChain{
			"div.product-list a.product-url",
			"div.splitListContainer a.productCard",
			"a[href*='/product/']",
		},
		NextSelectors: []string{
			"a.page-next",
			"li.a-pagination-next > a",
		},
		DisabledNext: []string{
			"li.a-pagination-next.disabled",
			"a.page-next[aria-disabled='true']",
		},
		DetailReady: "h1",
		Fields: map[string]SelectorChain{
			FieldTitle: {
				"h1.product-name",
				"h1#product-title",
				"h1",
			},
			FieldPrice: {
				"div.price-info span.price",
				"h2.product-price b",
			},
			FieldRating: {
				"div.rating-wrapper span.rating-num",
				"span.product-score",
			},
			FieldReviewCount: {
				"div.rating-wrapper span.review-total",
				"a.review-anchor span",
			},
			FieldLanguage: {
				"div.product-info-lang span",
				"li[data-info='language'] span.value",
			},
			FieldCategory: {
				"ol.breadcrumb li:nth-last-child(2) a",
			},
			FieldHighlight: {
				"div.product-intro li",
				"div.highlight-block p",
			},
			FieldLocation: {
				"div.product-location span.address",
				"div.map-info address",
			},
			FieldDuration: {
				"li[data-info='duration'] span.value",
				"div.product-info-duration span",
			},
			FieldMainImage: {
				"div.product-banner img",
				"div.carousel-item.active img",
			},
			FieldThumbImage: {
				"div.product-banner img",
				"div.thumbnail-strip img",
			},
		},
		ImageAttrs:     []string{"src", "data-src"},
		ProductIDRegex: regexp.MustCompile(`/product/(\d+)`),
		CurrencyHint:   "KRW",
		ProductType:    "activity",
	}
}
