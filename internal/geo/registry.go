// Package geo canonicalises user-supplied city names and maps them to the
// continent, country, city code, and local-language name the rest of the
// pipeline keys files and records by.
package geo

import (
	"sort"
	"strings"
)

// Registry resolves city name variations against the curated alias table.
type Registry struct {
	byName  map[string]City   // canonical name (lowercased) -> City
	aliases map[string]string // lowercase alias -> canonical name
}

// NewRegistry builds a Registry from the curated city table.
func NewRegistry() *Registry {
	r := &Registry{
		byName:  make(map[string]City, len(cities)),
		aliases: make(map[string]string, len(aliases)+len(cities)),
	}
	for _, c := range cities {
		r.byName[strings.ToLower(c.Name)] = c
		r.aliases[strings.ToLower(c.Name)] = c.Name
		if c.ForeignName != "" {
			r.aliases[strings.ToLower(c.ForeignName)] = c.Name
		}
	}
	for alias, canonical := range aliases {
		r.aliases[strings.ToLower(alias)] = canonical
	}
	return r
}

// Resolve canonicalises name. Exact (case-insensitive) alias matches win;
// otherwise the alias with the smallest length difference among substring
// matches is picked, ties broken alphabetically. When nothing matches, the
// input is returned with ok=false and the caller decides whether to fail.
func (r *Registry) Resolve(name string) (City, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return City{Name: name}, false
	}

	if canonical, ok := r.aliases[needle]; ok {
		return r.byName[strings.ToLower(canonical)], true
	}

	// Substring fallback: either direction counts as a match.
	type candidate struct {
		alias     string
		canonical string
	}
	var matches []candidate
	for alias, canonical := range r.aliases {
		if strings.Contains(alias, needle) || strings.Contains(needle, alias) {
			matches = append(matches, candidate{alias: alias, canonical: canonical})
		}
	}
	if len(matches) == 0 {
		return City{Name: name}, false
	}

	sort.Slice(matches, func(i, j int) bool {
		di := lengthDiff(matches[i].alias, needle)
		dj := lengthDiff(matches[j].alias, needle)
		if di != dj {
			return di < dj
		}
		return matches[i].alias < matches[j].alias
	})

	return r.byName[strings.ToLower(matches[0].canonical)], true
}

// Variations returns the search-query variations for a canonical city:
// the canonical name first, then curated aliases, then the foreign name.
// The collection stage walks this list when a search page yields zero
// results.
func (r *Registry) Variations(canonical string) []string {
	city, ok := r.byName[strings.ToLower(canonical)]
	if !ok {
		return []string{canonical}
	}

	out := []string{city.Name}
	seen := map[string]bool{strings.ToLower(city.Name): true}

	var aliasList []string
	for alias, target := range r.aliases {
		if target != city.Name {
			continue
		}
		if seen[alias] || strings.EqualFold(alias, city.ForeignName) {
			continue
		}
		aliasList = append(aliasList, alias)
		seen[alias] = true
	}
	sort.Strings(aliasList)
	out = append(out, aliasList...)

	if city.ForeignName != "" && !seen[strings.ToLower(city.ForeignName)] {
		out = append(out, city.ForeignName)
	}
	return out
}

// Cities returns the full city table, for tooling.
func (r *Registry) Cities() []City {
	out := make([]City, 0, len(r.byName))
	for _, c := range r.byName {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func lengthDiff(a, b string) int {
	d := len(a) - len(b)
	if d < 0 {
		return -d
	}
	return d
}
