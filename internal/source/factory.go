package source

import (
	"fmt"
	"net/url"
	"strings"
)

// All returns every known descriptor.
func All() []Descriptor {
	return []Descriptor{Klook(), KKday(), MyRealTrip(), GetYourGuide()}
}

// ByName returns the descriptor for a provider key.
func ByName(name string) (Descriptor, error) {
	for _, d := range All() {
		if d.Name == strings.ToLower(strings.TrimSpace(name)) {
			return d, nil
		}
	}
	return Descriptor{}, fmt.Errorf("unknown source %q", name)
}

// SearchURL builds the search entrypoint for a query.
func (d Descriptor) SearchURL(query string) string {
	return d.BaseURL + fmt.Sprintf(d.SearchPath, url.QueryEscape(query))
}

// ResolveURL makes a listing href absolute against the source's base URL.
func (d Descriptor) ResolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return d.BaseURL + href
	}
	return d.BaseURL + "/" + href
}

// ProductID extracts the provider product id from a landing URL, ok=false
// when the source's pattern does not match.
func (d Descriptor) ProductID(landingURL string) (string, bool) {
	if d.ProductIDRegex == nil {
		return "", false
	}
	m := d.ProductIDRegex.FindStringSubmatch(landingURL)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}
