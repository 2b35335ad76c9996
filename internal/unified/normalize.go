package unified

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"sjsage522/travelworker/internal/extractor"
	"sjsage522/travelworker/internal/source"
	"sjsage522/travelworker/internal/store"
)

// currencyMarks maps symbols and localised currency words to ISO-4217.
// Longer marks are matched before shorter ones so "US$" never reads as
// a bare "$".
var currencyMarks = []struct {
	mark string
	code string
}{
	{"US$", "USD"},
	{"NT$", "TWD"},
	{"HK$", "HKD"},
	{"S$", "SGD"},
	{"A$", "AUD"},
	{"원", "KRW"},
	{"₩", "KRW"},
	{"円", "JPY"},
	{"엔", "JPY"},
	{"¥", "JPY"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"฿", "THB"},
	{"₫", "VND"},
	{"₱", "PHP"},
	{"$", "USD"},
}

var isoCode = regexp.MustCompile(`\b[A-Z]{3}\b`)

// CurrencyFromRaw resolves the currency of a raw price string. Symbol
// and word marks win; a bare ISO code passes through uppercased; with
// neither, the source's hint applies.
func CurrencyFromRaw(raw, hint string) string {
	for _, m := range currencyMarks {
		if strings.Contains(raw, m.mark) {
			return m.code
		}
	}
	if code := isoCode.FindString(strings.ToUpper(raw)); code != "" {
		return code
	}
	return strings.ToUpper(hint)
}

// themeKeywords is a curated title-keyword → theme tag dictionary.
var themeKeywords = map[string]string{
	"tower":       "landmark",
	"observatory": "landmark",
	"palace":      "culture",
	"temple":      "culture",
	"museum":      "culture",
	"궁":           "culture",
	"cruise":      "cruise",
	"night":       "nightlife",
	"food":        "food",
	"cooking":     "food",
	"맛집":          "food",
	"market":      "food",
	"spa":         "wellness",
	"massage":     "wellness",
	"onsen":       "wellness",
	"snorkel":     "water-sports",
	"diving":      "water-sports",
	"kayak":       "water-sports",
	"island":      "island-hopping",
	"show":        "entertainment",
	"concert":     "entertainment",
	"ticket":      "admission",
	"pass":        "admission",
	"day trip":    "day-trip",
	"tour":        "tour",
	"walking":     "tour",
	"transfer":    "transport",
	"airport":     "transport",
	"rail":        "transport",
}

// ThemesFromTitle matches the curated keyword dictionary against a
// title and returns the sorted set of theme tags; empty on no match.
func ThemesFromTitle(title string) []string {
	lower := strings.ToLower(title)
	set := map[string]bool{}
	for keyword, tag := range themeKeywords {
		if strings.Contains(lower, keyword) {
			set[tag] = true
		}
	}
	themes := make([]string, 0, len(set))
	for tag := range set {
		themes = append(themes, tag)
	}
	sort.Strings(themes)
	return themes
}

// FallbackProductID digests a landing URL when the source's ID pattern
// does not match.
func FallbackProductID(landingURL string) string {
	sum := sha256.Sum256([]byte(landingURL))
	return hex.EncodeToString(sum[:])[:12]
}

// Normalize lifts one per-source row into the canonical schema.
// durationLabel is the human duration text when available from live
// extraction; rows lifted from CSV alone pass "".
func Normalize(src source.Descriptor, rec *store.ProductRecord, durationLabel string) *Product {
	id, ok := src.ProductID(rec.URL)
	if !ok {
		id = FallbackProductID(rec.URL)
	}

	price, _ := strconv.ParseFloat(rec.PriceClean, 64)
	rating, _ := strconv.ParseFloat(rec.RatingClean, 64)

	fetchTS := rec.CollectedAt
	if fetchTS == "" {
		fetchTS = time.Now().UTC().Format(time.RFC3339)
	}

	images := make([]string, 0, 2)
	if rec.MainImageRelPath != "" {
		images = append(images, rec.MainImageRelPath)
	}
	if rec.ThumbRelPath != "" {
		images = append(images, rec.ThumbRelPath)
	}

	return &Product{
		Provider:          src.Name,
		ProviderProductID: id,
		FetchTS:           fetchTS,
		DestinationCity:   rec.City,
		Title:             rec.Title,
		PriceCurrency:     CurrencyFromRaw(rec.PriceRaw, src.CurrencyHint),
		PriceValue:        price,
		RatingValue:       rating,
		RatingCount:       rec.ReviewCount,
		DurationHours:     extractor.DurationHours(durationLabel),
		Languages:         splitList(rec.Language),
		Themes:            ThemesFromTitle(rec.Title),
		Included:          []string{},
		Excluded:          []string{},
		Images:            images,
		Options:           []string{},
		Availability:      []string{},
		CancelPolicy:      map[string]string{},
		LandingURL:        rec.URL,
		RankPosition:      rec.TabRank,
		ProductHash:       ContentHash(rec.Title, rec.URL, rec.PriceRaw),
		DataSourceMeta: map[string]any{
			"number":            rec.Number,
			"page":              rec.Page,
			"tab":               rec.TabName,
			"city_code":         rec.CityCode,
			"url_hash":          rec.URLHash,
			"category":          rec.Category,
			"highlight":         rec.Highlight,
			"location":          rec.Location,
			"main_image_status": rec.MainImageStatus,
			"thumb_status":      rec.ThumbStatus,
			"record_status":     string(rec.Status),
		},
	}
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '/' || r == ';'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
