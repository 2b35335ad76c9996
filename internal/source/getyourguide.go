package source

import "regexp"

// GetYourGuide returns the descriptor for getyourguide.com. The selectors
// are drafted but not production-verified, hence Experimental.
func GetYourGuide() Descriptor {
	return Descriptor{
		Name:       "getyourguide",
		BaseURL:    "https://www.getyourguide.com",
		SearchPath: "/s/?q=%s&p=1",
		Tabs: map[string]string{
			"all": "",
		},
		AllowedQueryKeys: []string{"q", "p", "page"},
		ListingReady:     "div[data-testid='search-results']",
		ProductCards: SelectorChain{
			"article[data-testid='activity-card'] a[data-testid='activity-card-link']",
			"a[href*='-t']",
		},
		NextSelectors: []string{
			"button[data-testid='pagination-next']",
			"a[rel='next']",
		},
		DisabledNext: []string{
			"button[data-testid='pagination-next'][disabled]",
		},
		DetailReady: "h1",
		Fields: map[string]SelectorChain{
			FieldTitle: {
				"h1[data-testid='activity-title']",
				"h1",
			},
			FieldPrice: {
				"span[data-testid='activity-price']",
				"div.price strong",
			},
			FieldRating: {
				"span[data-testid='rating-value']",
			},
			FieldReviewCount: {
				"span[data-testid='rating-count']",
			},
			FieldLanguage: {
				"div[data-testid='activity-languages'] span",
			},
			FieldCategory: {
				"nav[data-testid='breadcrumbs'] a:last-of-type",
			},
			FieldHighlight: {
				"div[data-testid='activity-highlights'] li",
			},
			FieldLocation: {
				"div[data-testid='activity-location'] span",
			},
			FieldDuration: {
				"div[data-testid='activity-duration'] span",
			},
			FieldMainImage: {
				"div[data-testid='activity-hero'] img",
			},
			FieldThumbImage: {
				"div[data-testid='activity-hero'] img",
			},
		},
		ImageAttrs:     []string{"src", "data-src"},
		ProductIDRegex: regexp.MustCompile(`-t(\d+)`),
		CurrencyHint:   "USD",
		ProductType:    "activity",
		Experimental:   true,
	}
}
