package session

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/chromedp/chromedp"

	"sjsage522/travelworker/config"
	"sjsage522/travelworker/logger"
)

// ChromeSession implements PageSession on a headless Chrome driven by
// chromedp. Not safe for concurrent use; one session per (source, city)
// run.
type ChromeSession struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	tabCtx      context.Context
	cancelTab   context.CancelFunc
	pageTimeout time.Duration
	log         *logger.Logger
}

// NewChromeSession starts a headless Chrome and opens one tab.
func NewChromeSession(cfg config.Config) (*ChromeSession, error) {
	chromeBin := cfg.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))

	// Materialise the browser process up front so startup failures surface
	// here instead of on the first Navigate.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	return &ChromeSession{
		allocCtx:    allocCtx,
		cancelAlloc: cancelAlloc,
		tabCtx:      tabCtx,
		cancelTab:   cancelTab,
		pageTimeout: cfg.PageTimeout,
		log:         logger.ForStage("session"),
	}, nil
}

// Close shuts the tab and the browser down.
func (s *ChromeSession) Close() error {
	s.cancelTab()
	s.cancelAlloc()
	return nil
}

// Navigate loads url and waits for readiness.
func (s *ChromeSession) Navigate(ctx context.Context, pageURL, readySelector string) error {
	runCtx, cancel := s.timeoutCtx(ctx)
	defer cancel()

	actions := []chromedp.Action{chromedp.Navigate(pageURL)}
	if readySelector != "" {
		actions = append(actions, chromedp.WaitReady(readySelector, chromedp.ByQuery))
	} else {
		actions = append(actions, chromedp.WaitReady("body", chromedp.ByQuery))
	}

	if err := chromedp.Run(runCtx, actions...); err != nil {
		return fmt.Errorf("navigate %s: %w", pageURL, err)
	}
	return nil
}

// CurrentURL returns the tab's location.
func (s *ChromeSession) CurrentURL(ctx context.Context) (string, error) {
	runCtx, cancel := s.timeoutCtx(ctx)
	defer cancel()

	var loc string
	if err := chromedp.Run(runCtx, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

// HTML returns the rendered document.
func (s *ChromeSession) HTML(ctx context.Context) (string, error) {
	runCtx, cancel := s.timeoutCtx(ctx)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// elementSnapshot mirrors the JS projection of one matched element.
type elementSnapshot struct {
	Text string  `json:"text"`
	Href string  `json:"href"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Query walks the selector chain and returns the first non-empty result.
func (s *ChromeSession) Query(ctx context.Context, selectorChain []string) ([]Element, error) {
	runCtx, cancel := s.timeoutCtx(ctx)
	defer cancel()

	for _, selector := range selectorChain {
		var snaps []elementSnapshot
		js := fmt.Sprintf(`
			Array.from(document.querySelectorAll(%q)).map(function(el) {
				var r = el.getBoundingClientRect();
				return {
					text: el.innerText || '',
					href: el.href || el.getAttribute('href') || '',
					x: r.x + window.scrollX,
					y: r.y + window.scrollY
				};
			})`, selector)
		if err := chromedp.Run(runCtx, chromedp.Evaluate(js, &snaps)); err != nil {
			s.log.Debug().Str("selector", selector).Err(err).Msg("query selector failed")
			continue
		}
		if len(snaps) == 0 {
			continue
		}

		elements := make([]Element, len(snaps))
		for i, snap := range snaps {
			elements[i] = &chromeElement{sess: s, selector: selector, index: i, snap: snap}
		}
		return elements, nil
	}
	return nil, nil
}

// ScrollIncremental scrolls down in steps until the page end.
func (s *ChromeSession) ScrollIncremental(ctx context.Context, stepPx int, pause time.Duration) error {
	runCtx, cancel := s.timeoutCtx(ctx)
	defer cancel()

	for {
		var atEnd bool
		js := fmt.Sprintf(`(function() {
			window.scrollBy(0, %d);
			return window.innerHeight + window.scrollY >= document.body.scrollHeight - 2;
		})()`, stepPx)
		if err := chromedp.Run(runCtx, chromedp.Evaluate(js, &atEnd)); err != nil {
			return fmt.Errorf("scroll: %w", err)
		}
		if atEnd {
			return nil
		}
		select {
		case <-runCtx.Done():
			return runCtx.Err()
		case <-time.After(pause):
		}
	}
}

// ClickNextPage tries the next selectors in priority order, then the page=N
// fallback. A matched disabled indicator means the last page was reached.
func (s *ChromeSession) ClickNextPage(ctx context.Context, currentURL string, nextSelectors, disabledSelectors []string) (NextPageResult, error) {
	runCtx, cancel := s.timeoutCtx(ctx)
	defer cancel()

	for _, selector := range disabledSelectors {
		var disabled bool
		js := fmt.Sprintf(`document.querySelector(%q) !== null`, selector)
		if err := chromedp.Run(runCtx, chromedp.Evaluate(js, &disabled)); err == nil && disabled {
			return NextPageResult{Success: false, Method: NextPageNone, SelectorUsed: selector}, nil
		}
	}

	for _, selector := range nextSelectors {
		var clickable bool
		js := fmt.Sprintf(`(function() {
			var el = document.querySelector(%q);
			if (!el) return false;
			if (el.disabled) return false;
			if ((el.getAttribute('aria-disabled') || '') === 'true') return false;
			if ((el.className || '').indexOf('disabled') !== -1) return false;
			return true;
		})()`, selector)
		if err := chromedp.Run(runCtx, chromedp.Evaluate(js, &clickable)); err != nil || !clickable {
			continue
		}

		if err := chromedp.Run(runCtx,
			chromedp.Click(selector, chromedp.ByQuery),
			chromedp.WaitReady("body", chromedp.ByQuery),
		); err != nil {
			s.log.Debug().Str("selector", selector).Err(err).Msg("next click failed")
			continue
		}

		newURL, err := s.CurrentURL(ctx)
		if err != nil {
			newURL = ""
		}
		return NextPageResult{
			Success:      true,
			Method:       NextPageSelector,
			NewURL:       newURL,
			SelectorUsed: selector,
		}, nil
	}

	// URL fallback: increment a page=N query parameter when present.
	if nextURL, ok := IncrementPageParam(currentURL); ok {
		if err := s.Navigate(ctx, nextURL, ""); err != nil {
			return NextPageResult{Success: false, Method: NextPageURLParam}, err
		}
		return NextPageResult{Success: true, Method: NextPageURLParam, NewURL: nextURL}, nil
	}

	return NextPageResult{Success: false, Method: NextPageNone}, nil
}

func (s *ChromeSession) timeoutCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	merged, cancelMerge := mergeContexts(s.tabCtx, ctx)
	timed, cancelTimed := context.WithTimeout(merged, s.pageTimeout)
	return timed, func() {
		cancelTimed()
		cancelMerge()
	}
}

// mergeContexts returns tab, cancelled early when caller is done. chromedp
// actions must run on the tab context chain to reach the browser.
func mergeContexts(tab, caller context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(tab)
	stop := make(chan struct{})
	go func() {
		select {
		case <-caller.Done():
			cancel()
		case <-stop:
		}
	}()
	return merged, func() {
		close(stop)
		cancel()
	}
}

// IncrementPageParam returns currentURL with its page=N query parameter
// incremented, or ok=false when there is no such parameter.
func IncrementPageParam(currentURL string) (string, bool) {
	u, err := url.Parse(currentURL)
	if err != nil {
		return "", false
	}
	q := u.Query()
	pageVal := q.Get("page")
	if pageVal == "" {
		return "", false
	}
	n, err := strconv.Atoi(pageVal)
	if err != nil {
		return "", false
	}
	q.Set("page", strconv.Itoa(n+1))
	u.RawQuery = q.Encode()
	return u.String(), true
}

type chromeElement struct {
	sess     *ChromeSession
	selector string
	index    int
	snap     elementSnapshot
}

func (e *chromeElement) Text(ctx context.Context) string {
	return e.snap.Text
}

// Attr fetches the live attribute; href is answered from the snapshot.
func (e *chromeElement) Attr(ctx context.Context, name string) string {
	if name == "href" && e.snap.Href != "" {
		return e.snap.Href
	}

	runCtx, cancel := e.sess.timeoutCtx(ctx)
	defer cancel()

	var val string
	js := fmt.Sprintf(`(function() {
		var el = document.querySelectorAll(%q)[%d];
		if (!el) return '';
		return el.getAttribute(%q) || '';
	})()`, e.selector, e.index, name)
	if err := chromedp.Run(runCtx, chromedp.Evaluate(js, &val)); err != nil {
		return ""
	}
	return val
}

func (e *chromeElement) Location() (float64, float64) {
	return e.snap.X, e.snap.Y
}

func (e *chromeElement) Click(ctx context.Context) error {
	runCtx, cancel := e.sess.timeoutCtx(ctx)
	defer cancel()

	js := fmt.Sprintf(`(function() {
		var el = document.querySelectorAll(%q)[%d];
		if (el) el.click();
		return true;
	})()`, e.selector, e.index)
	var ok bool
	return chromedp.Run(runCtx, chromedp.Evaluate(js, &ok))
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
