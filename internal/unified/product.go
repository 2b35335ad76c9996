// Package unified lifts per-source product tables into one canonical
// schema backed by SQLite, for cross-provider comparison.
package unified

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
)

// Product is the canonical cross-provider schema. The primary key is
// (Provider, ProviderProductID).
type Product struct {
	Provider          string            `json:"provider"`
	ProviderProductID string            `json:"provider_product_id"`
	FetchTS           string            `json:"fetch_ts"`
	DestinationCity   string            `json:"destination_city"`
	Title             string            `json:"title"`
	PriceCurrency     string            `json:"price_currency"`
	PriceValue        float64           `json:"price_value"`
	FXRate            *float64          `json:"fx_rate"`
	RatingValue       float64           `json:"rating_value"`
	RatingCount       int               `json:"rating_count"`
	DurationHours     float64           `json:"duration_hours"`
	Pickup            bool              `json:"pickup"`
	Languages         []string          `json:"languages"`
	Themes            []string          `json:"themes"`
	Included          []string          `json:"included"`
	Excluded          []string          `json:"excluded"`
	Images            []string          `json:"images"`
	Options           []string          `json:"options"`
	Availability      []string          `json:"availability"`
	CancelPolicy      map[string]string `json:"cancel_policy"`
	LandingURL        string            `json:"landing_url"`
	AffiliateURL      string            `json:"affiliate_url,omitempty"`
	RankPosition      int               `json:"rank_position"`
	ProductHash       string            `json:"product_hash"`
	DataSourceMeta    map[string]any    `json:"data_source_meta"`
}

// ContentHash digests the identity-bearing fields. A changed hash on an
// existing primary key signals a real content change.
func ContentHash(title, landingURL, rawPrice string) string {
	h := sha1.Sum([]byte(title + landingURL + rawPrice))
	return hex.EncodeToString(h[:])
}

// jsonText serialises v with encoding/json, whose map key order is
// deterministic, so stored blobs are byte-stable across runs.
func jsonText(v any) string {
	if v == nil {
		return "null"
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(raw)
}
