// Package collector implements the first pipeline stage: walking a source's
// paginated search results for a city and producing a ranked, deduplicated
// URL stream.
package collector

import (
	"context"
	"sort"
	"time"

	"sjsage522/travelworker/config"
	"sjsage522/travelworker/internal/fingerprint"
	"sjsage522/travelworker/internal/geo"
	"sjsage522/travelworker/internal/ranking"
	"sjsage522/travelworker/internal/session"
	"sjsage522/travelworker/internal/source"
	"sjsage522/travelworker/logger"
	errs "sjsage522/travelworker/pkg/errors"
)

// CollectionMethod tags persisted tab snapshots with how they were
// gathered.
const CollectionMethod = "paginated_search"

// Collector drives one page session through search results.
type Collector struct {
	src    source.Descriptor
	sess   session.PageSession
	ledger *ranking.Ledger
	index  *fingerprint.Index
	cfg    config.Config
	log    *logger.Logger
}

// Result is the outcome of one (city, tab) collection run. A Result with
// at least one URL is a success even when Err is set (partial run).
type Result struct {
	City         geo.City
	Tab          string
	URLs         []ranking.RankedURL
	PagesVisited int
	QueryUsed    string
	Err          error
}

// New creates a Collector for one source over one session.
func New(src source.Descriptor, sess session.PageSession, ledger *ranking.Ledger, index *fingerprint.Index, cfg config.Config) *Collector {
	return &Collector{
		src:    src,
		sess:   sess,
		ledger: ledger,
		index:  index,
		cfg:    cfg,
		log:    logger.ForStage("collect").WithField("source", src.Name),
	}
}

// Collect walks up to maxPages of search results for (city, tab), assigning
// contiguous global ranks, and persists the run's rank list plus the merged
// accumulated map.
func (c *Collector) Collect(ctx context.Context, city geo.City, tab string, variations []string, targetCount, maxPages int) *Result {
	res := &Result{City: city, Tab: tab}
	c.ledger.StartTab(tab)

	queryUsed, err := c.openListing(ctx, city, tab, variations)
	if err != nil {
		res.Err = err
		return res
	}
	res.QueryUsed = queryUsed

	currentURL := ""
	if loc, err := c.sess.CurrentURL(ctx); err == nil {
		currentURL = loc
	}

	targetReached := false
	for page := 1; page <= maxPages && !targetReached; page++ {
		if ctx.Err() != nil {
			res.Err = errs.NewCancelled(c.src.Name, "collect")
			break
		}
		res.PagesVisited = page

		cards, err := c.collectPage(ctx, page)
		if err != nil {
			// per-page extraction failure: report, try the next page
			c.log.Warn().Int("page", page).Err(err).Msg("page extraction failed")
		}

		for pos, card := range cards {
			if ctx.Err() != nil {
				res.Err = errs.NewCancelled(c.src.Name, "collect")
				targetReached = true
				break
			}
			rank, dup := c.ledger.Offer(tab, card.url, page, pos+1)
			if !dup {
				if _, err := c.index.Record(city.Code, card.url); err != nil {
					c.log.Warn().Err(err).Msg("url log append failed")
				}
			}
			if rank >= targetCount {
				targetReached = true
				break
			}
		}
		if targetReached || page == maxPages {
			break
		}

		next, err := c.sess.ClickNextPage(ctx, currentURL, c.src.NextSelectors, c.src.DisabledNext)
		if err != nil {
			c.log.Warn().Int("page", page).Err(err).Msg("pagination failed")
			res.Err = errs.NewNavigationTimeout(c.src.Name, currentURL, err)
			break
		}
		if !next.Success {
			c.log.Debug().Int("page", page).Msg("last page reached")
			break
		}
		if next.NewURL != "" {
			currentURL = next.NewURL
		}
	}

	res.URLs = c.ledger.TabURLs(tab)

	if _, err := c.ledger.SaveTabRun(c.cfg.RankingDir, tab, CollectionMethod); err != nil {
		c.log.Error().Err(err).Msg("saving tab run failed")
		if res.Err == nil {
			res.Err = errs.NewStorage(c.src.Name, "save_tab_run", err)
		}
	}
	if err := c.ledger.SaveAccumulated(c.cfg.AccumDir); err != nil {
		c.log.Error().Err(err).Msg("saving accumulated rankings failed")
		if res.Err == nil {
			res.Err = errs.NewStorage(c.src.Name, "save_accumulated", err)
		}
	}

	c.log.Info().
		Str("city", city.Name).
		Str("tab", tab).
		Int("urls", len(res.URLs)).
		Int("pages", res.PagesVisited).
		Msg("collection finished")
	return res
}

// openListing navigates to the search entrypoint, retrying the city's name
// variations until a page yields product cards, and applies the tab filter.
func (c *Collector) openListing(ctx context.Context, city geo.City, tab string, variations []string) (string, error) {
	if len(variations) == 0 {
		variations = []string{city.Name}
	}

	for _, query := range variations {
		searchURL := c.src.SearchURL(query)
		if err := c.sess.Navigate(ctx, searchURL, c.src.ListingReady); err != nil {
			c.log.Warn().Str("query", query).Err(err).Msg("search navigation failed")
			continue
		}

		if err := c.applyTabFilter(ctx, tab); err != nil {
			return "", err
		}

		elements, err := c.sess.Query(ctx, c.src.ProductCards)
		if err == nil && len(elements) > 0 {
			return query, nil
		}
		c.log.Info().Str("query", query).Msg("zero results, trying next city variation")
	}

	return "", errs.New(errs.KindSelectorMiss, c.src.Name, "collect",
		"no product cards for any city variation", nil)
}

func (c *Collector) applyTabFilter(ctx context.Context, tab string) error {
	selector, ok := c.src.Tabs[tab]
	if !ok || selector == "" {
		return nil
	}
	elements, err := c.sess.Query(ctx, []string{selector})
	if err != nil || len(elements) == 0 {
		return errs.New(errs.KindSelectorMiss, c.src.Name, "tab_filter", tab, err)
	}
	if err := elements[0].Click(ctx); err != nil {
		return errs.New(errs.KindSelectorMiss, c.src.Name, "tab_filter", tab, err)
	}
	return nil
}

type cardLink struct {
	url  string
	x, y float64
}

// collectPage scrolls the listing into view and returns product links in
// on-screen reading order, i.e. sorted by (y, x).
func (c *Collector) collectPage(ctx context.Context, page int) ([]cardLink, error) {
	if err := c.sess.ScrollIncremental(ctx, 600, 300*time.Millisecond); err != nil {
		c.log.Debug().Int("page", page).Err(err).Msg("scroll ended early")
	}

	elements, err := c.sess.Query(ctx, c.src.ProductCards)
	if err != nil {
		return nil, errs.New(errs.KindSelectorMiss, c.src.Name, "product_cards", "query failed", err)
	}

	cards := make([]cardLink, 0, len(elements))
	for _, el := range elements {
		href := el.Attr(ctx, "href")
		u := c.src.ResolveURL(href)
		if u == "" {
			continue
		}
		x, y := el.Location()
		cards = append(cards, cardLink{url: u, x: x, y: y})
	}

	// layout engines reorder the DOM; the screen order is the rank order
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].y != cards[j].y {
			return cards[i].y < cards[j].y
		}
		return cards[i].x < cards[j].x
	})
	return cards, nil
}
