// Package ranking keeps the per-city record of where each product URL first
// appeared: per-tab rank sequences for the current run, and an accumulated
// cross-run map used for dedup, resume, and analytics.
package ranking

import (
	"time"
)

// PaginationInfo records where in the paginated listing a URL was found.
type PaginationInfo struct {
	Page         int `json:"page"`
	PagePosition int `json:"page_position"`
}

// TabRanking is one tab's rank for a URL inside the accumulated map.
type TabRanking struct {
	Ranking int    `json:"ranking"`
	FoundAt string `json:"found_at"`
}

// URLRanking is the accumulated cross-run state of a single URL.
type URLRanking struct {
	URL            string                `json:"url"`
	FirstFound     string                `json:"first_found"`
	TabRankings    map[string]TabRanking `json:"tab_rankings"`
	Crawled        bool                  `json:"crawled"`
	CrawledAt      string                `json:"crawled_at,omitempty"`
	PaginationInfo PaginationInfo        `json:"pagination_info"`
	Duplicate      bool                  `json:"duplicate"`
}

// Stats summarises the accumulated map.
type Stats struct {
	TotalURLs     int      `json:"total_urls"`
	TabsProcessed []string `json:"tabs_processed"`
	DuplicateURLs int      `json:"duplicate_urls"`
}

// Accumulated is the per-city aggregate across all tabs and runs.
type Accumulated struct {
	CityName    string                 `json:"city_name"`
	CityCode    string                 `json:"city_code"`
	LastUpdated string                 `json:"last_updated"`
	URLRankings map[string]*URLRanking `json:"url_rankings"`
	Stats       Stats                  `json:"stats"`
}

// RankedURL is one assigned rank inside a tab run.
type RankedURL struct {
	Rank         int    `json:"rank"`
	URL          string `json:"url"`
	Page         int    `json:"page"`
	PagePosition int    `json:"page_position"`
	CollectedAt  string `json:"collected_at"`

	// Crawled mirrors the accumulated map's flag for the current run;
	// tab snapshot files do not carry it.
	Crawled   bool   `json:"-"`
	CrawledAt string `json:"-"`
}

// tabRun is the in-progress state for one (city, tab) collection run.
type tabRun struct {
	tab      string
	order    []string               // fingerprints in rank order
	byFP     map[string]*RankedURL  // fingerprint -> entry
	maxPage  int
	dupCount int
}

// FingerprintFunc computes the fingerprint for a URL under the active
// source's canonicalisation rules.
type FingerprintFunc func(url string) string

// Ledger tracks ranks for one city.
type Ledger struct {
	cityName string
	cityCode string
	fp       FingerprintFunc

	tabs  map[string]*tabRun
	accum *Accumulated
	now   func() time.Time
}

// NewLedger creates a Ledger for a city. accum may come from
// LoadAccumulated; nil starts an empty map.
func NewLedger(cityName, cityCode string, fp FingerprintFunc, accum *Accumulated) *Ledger {
	if accum == nil {
		accum = &Accumulated{
			CityName:    cityName,
			CityCode:    cityCode,
			URLRankings: make(map[string]*URLRanking),
		}
	}
	if accum.URLRankings == nil {
		accum.URLRankings = make(map[string]*URLRanking)
	}
	return &Ledger{
		cityName: cityName,
		cityCode: cityCode,
		fp:       fp,
		tabs:     make(map[string]*tabRun),
		accum:    accum,
		now:      time.Now,
	}
}

// StartTab begins a new collection run for a tab. The rank counter resets
// to 1; any previous in-memory run for the tab is discarded.
func (l *Ledger) StartTab(tab string) {
	l.tabs[tab] = &tabRun{
		tab:  tab,
		byFP: make(map[string]*RankedURL),
	}
}

// Offer presents a URL seen at (page, pagePosition) to the tab's run.
// First sighting assigns the next contiguous rank; repeats return the
// original rank with duplicate=true and update only pagination info.
func (l *Ledger) Offer(tab, url string, page, pagePosition int) (rank int, duplicate bool) {
	run, ok := l.tabs[tab]
	if !ok {
		l.StartTab(tab)
		run = l.tabs[tab]
	}

	fp := l.fp(url)
	if existing, seen := run.byFP[fp]; seen {
		run.dupCount++
		if entry := l.accum.URLRankings[fp]; entry != nil {
			entry.Duplicate = true
			entry.PaginationInfo = PaginationInfo{Page: page, PagePosition: pagePosition}
		}
		return existing.Rank, true
	}

	now := l.now().UTC().Format(time.RFC3339)
	entry := &RankedURL{
		Rank:         len(run.order) + 1,
		URL:          url,
		Page:         page,
		PagePosition: pagePosition,
		CollectedAt:  now,
	}
	run.order = append(run.order, fp)
	run.byFP[fp] = entry
	if page > run.maxPage {
		run.maxPage = page
	}

	l.mergeOffer(fp, tab, entry)
	return entry.Rank, false
}

// mergeOffer folds a fresh rank assignment into the accumulated map.
// The earliest first-found wins; the tab's rank from the current run
// replaces the prior rank for that tab.
func (l *Ledger) mergeOffer(fp, tab string, e *RankedURL) {
	acc, ok := l.accum.URLRankings[fp]
	if !ok {
		acc = &URLRanking{
			URL:         e.URL,
			FirstFound:  e.CollectedAt,
			TabRankings: make(map[string]TabRanking),
		}
		l.accum.URLRankings[fp] = acc
	}
	if acc.TabRankings == nil {
		acc.TabRankings = make(map[string]TabRanking)
	}
	acc.TabRankings[tab] = TabRanking{Ranking: e.Rank, FoundAt: e.CollectedAt}
	acc.PaginationInfo = PaginationInfo{Page: e.Page, PagePosition: e.PagePosition}
	if acc.FirstFound == "" || e.CollectedAt < acc.FirstFound {
		acc.FirstFound = e.CollectedAt
	}
}

// MarkCrawled flips the crawled flag for a URL on the accumulated entry
// and on any current-run tab entries. The transition is one-way; marking
// an already-crawled URL keeps the original timestamp.
func (l *Ledger) MarkCrawled(url string) {
	fp := l.fp(url)
	entry, ok := l.accum.URLRankings[fp]
	if !ok {
		return
	}
	if !entry.Crawled {
		entry.Crawled = true
		entry.CrawledAt = l.now().UTC().Format(time.RFC3339)
	}
	for _, run := range l.tabs {
		if e, ok := run.byFP[fp]; ok && !e.Crawled {
			e.Crawled = true
			e.CrawledAt = entry.CrawledAt
		}
	}
}

// IsCrawled reports whether the URL was crawled in any run.
func (l *Ledger) IsCrawled(url string) bool {
	entry, ok := l.accum.URLRankings[l.fp(url)]
	return ok && entry.Crawled
}

// TabRank returns the rank assigned to url in tab during the current run,
// or 0 when the URL was never offered.
func (l *Ledger) TabRank(tab, url string) int {
	run, ok := l.tabs[tab]
	if !ok {
		return 0
	}
	if e, ok := run.byFP[l.fp(url)]; ok {
		return e.Rank
	}
	return 0
}

// TabURLs returns the tab's URLs of the current run in rank order.
func (l *Ledger) TabURLs(tab string) []RankedURL {
	run, ok := l.tabs[tab]
	if !ok {
		return nil
	}
	out := make([]RankedURL, 0, len(run.order))
	for _, fp := range run.order {
		out = append(out, *run.byFP[fp])
	}
	return out
}

// Snapshot finalises stats and returns the accumulated map.
func (l *Ledger) Snapshot() *Accumulated {
	l.accum.Stats.TotalURLs = len(l.accum.URLRankings)
	l.accum.Stats.DuplicateURLs = 0
	for _, e := range l.accum.URLRankings {
		if e.Duplicate {
			l.accum.Stats.DuplicateURLs++
		}
	}
	l.accum.LastUpdated = l.now().UTC().Format(time.RFC3339)

	tabs := make(map[string]bool, len(l.accum.Stats.TabsProcessed))
	for _, t := range l.accum.Stats.TabsProcessed {
		tabs[t] = true
	}
	for tab := range l.tabs {
		if !tabs[tab] {
			l.accum.Stats.TabsProcessed = append(l.accum.Stats.TabsProcessed, tab)
			tabs[tab] = true
		}
	}
	return l.accum
}
