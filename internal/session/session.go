// Package session defines the narrow browser capability surface the
// pipeline consumes. Collection and extraction depend only on this
// contract; anti-bot measures, cookies, and scroll cadence belong to the
// implementation.
package session

import (
	"context"
	"time"
)

// Element is an opaque handle on a queried page element.
type Element interface {
	// Text returns the element's visible text
	Text(ctx context.Context) string

	// Attr returns the named attribute, "" when absent
	Attr(ctx context.Context, name string) string

	// Location returns the element's page coordinates
	Location() (x, y float64)

	// Click clicks the element
	Click(ctx context.Context) error
}

// NextPageMethod names the strategy that advanced pagination.
type NextPageMethod string

const (
	// NextPageSelector means a "next" control was clicked
	NextPageSelector NextPageMethod = "selector"
	// NextPageURLParam means the page=N query parameter was incremented
	NextPageURLParam NextPageMethod = "url_param"
	// NextPageNone means no strategy applied (last page)
	NextPageNone NextPageMethod = "none"
)

// NextPageResult reports how (and whether) pagination advanced.
// Success is false iff the page is the last page.
type NextPageResult struct {
	Success      bool
	Method       NextPageMethod
	NewURL       string
	SelectorUsed string
}

// PageSession is the abstract page the two pipeline stages drive.
type PageSession interface {
	// Navigate loads url and waits until readySelector is present or the
	// session's page timeout elapses. An empty readySelector waits for
	// document readiness only.
	Navigate(ctx context.Context, url, readySelector string) error

	// CurrentURL returns the page's current location
	CurrentURL(ctx context.Context) (string, error)

	// HTML returns the page's rendered outer HTML
	HTML(ctx context.Context) (string, error)

	// Query tries each selector in the chain in order and returns the
	// first non-empty result
	Query(ctx context.Context, selectorChain []string) ([]Element, error)

	// ScrollIncremental scrolls the viewport in stepPx steps with pause
	// between steps until the page end is reached
	ScrollIncremental(ctx context.Context, stepPx int, pause time.Duration) error

	// ClickNextPage advances pagination: it tries the prioritised next
	// selectors, falls back to incrementing a page=N query parameter, and
	// reports Success=false when the page is the last one
	ClickNextPage(ctx context.Context, currentURL string, nextSelectors, disabledSelectors []string) (NextPageResult, error)

	// Close releases the underlying browser resources
	Close() error
}
