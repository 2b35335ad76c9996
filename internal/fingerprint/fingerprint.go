// Package fingerprint provides content-addressed URL identity: a short
// stable digest of the canonicalised URL, and a per-city membership index
// backed by an append-only log.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// HexLength is the number of leading hex characters kept from the digest.
// Collisions are not a concern below ~10^6 URLs per source.
const HexLength = 16

// Canonicalize normalises rawURL for fingerprinting: lowercase host,
// trailing slashes stripped, fragment dropped, query reduced to the
// allow-listed keys in sorted order. Canonicalisation is idempotent.
func Canonicalize(rawURL string, allowedQueryKeys []string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return strings.TrimSpace(rawURL)
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")

	q := u.Query()
	kept := url.Values{}
	for _, key := range allowedQueryKeys {
		if vals, ok := q[key]; ok {
			for _, v := range vals {
				kept.Add(key, v)
			}
		}
	}
	// Encode sorts keys; sort values within a key for full determinism.
	for key := range kept {
		sort.Strings(kept[key])
	}
	u.RawQuery = kept.Encode()

	return u.String()
}

// Fingerprint returns the leading HexLength hex characters of the SHA-256
// digest over the canonicalised URL. Same canonical URL, same fingerprint,
// on every process and machine.
func Fingerprint(rawURL string, allowedQueryKeys []string) string {
	canonical := Canonicalize(rawURL, allowedQueryKeys)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])[:HexLength]
}
