// Package worker orchestrates one (source, city) ingestion run end to
// end: ranked URL collection, detail extraction, asset download, record
// persistence and unified lifting.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sjsage522/travelworker/config"
	"sjsage522/travelworker/internal/assets"
	"sjsage522/travelworker/internal/collector"
	"sjsage522/travelworker/internal/extractor"
	"sjsage522/travelworker/internal/fingerprint"
	"sjsage522/travelworker/internal/geo"
	"sjsage522/travelworker/internal/ranking"
	"sjsage522/travelworker/internal/session"
	"sjsage522/travelworker/internal/source"
	"sjsage522/travelworker/internal/store"
	"sjsage522/travelworker/internal/unified"
	"sjsage522/travelworker/logger"
	errs "sjsage522/travelworker/pkg/errors"
	"sjsage522/travelworker/services/cache"
	"sjsage522/travelworker/services/publisher"
)

// Summary is the user-visible outcome of one run.
type Summary struct {
	Source        string `json:"source"`
	City          string `json:"city"`
	URLsCollected int    `json:"urls_collected"`
	Attempted     int    `json:"attempted"`
	Succeeded     int    `json:"succeeded"`
	Partial       int    `json:"partial"`
	Skipped       int    `json:"skipped"`
	Failed        int    `json:"failed"`
}

// Worker owns the pipeline wiring for one source. The page session is
// not thread-safe; a Worker must not run concurrently with itself.
type Worker struct {
	cfg      config.Config
	src      source.Descriptor
	registry *geo.Registry
	sess     session.PageSession
	csv      *store.CSVStore
	images   *assets.Store
	cache    cache.CacheService
	pub      publisher.Publisher
	udb      *unified.DB
	log      *logger.Logger
	now      func() time.Time
}

func New(cfg config.Config, src source.Descriptor, sess session.PageSession,
	cacheSvc cache.CacheService, pub publisher.Publisher, udb *unified.DB) *Worker {
	return &Worker{
		cfg:      cfg,
		src:      src,
		registry: geo.NewRegistry(),
		sess:     sess,
		csv:      store.NewCSVStore(cfg.DataRoot),
		images:   assets.NewStore(cfg),
		cache:    cacheSvc,
		pub:      pub,
		udb:      udb,
		log:      logger.ForSource(src.Name),
		now:      time.Now,
	}
}

// WithAssets replaces the asset store, for tests.
func (w *Worker) WithAssets(s *assets.Store) *Worker {
	w.images = s
	return w
}

// Run ingests one city across all of the source's tabs. With strict set,
// an unresolvable city name aborts before any stage starts.
func (w *Worker) Run(ctx context.Context, cityName string, strict bool) (*Summary, error) {
	city, ok := w.registry.Resolve(cityName)
	if !ok && strict {
		return nil, errs.NewConfiguration(fmt.Sprintf("unknown city %q", cityName), nil)
	}
	if city.Code == "" {
		// unresolved non-strict input still needs a stable code for filenames
		city.Code = sanitizeCode(city.Name)
	}
	log := logger.ForRun(w.src.Name, city.Name)
	if w.src.Experimental {
		log.Warn().Msg("source selectors are experimental, expect misses")
	}

	index := fingerprint.NewIndex(w.cfg.URLLogDir, w.src.AllowedQueryKeys)
	defer index.Close()

	accum, err := ranking.LoadAccumulated(w.cfg.AccumDir, city.Code)
	if err != nil {
		log.Warn().Err(err).Msg("accumulated rankings unreadable, starting fresh")
	}
	ledger := ranking.NewLedger(city.Name, city.Code, index.Fingerprint, accum)

	coll := collector.New(w.src, w.sess, ledger, index, w.cfg)
	ext := extractor.New(w.src, w.sess, w.cfg)

	summary := &Summary{Source: w.src.Name, City: city.Name}
	sessionID := fmt.Sprintf("%s_%s_%s", w.now().UTC().Format("20060102_150405"), w.src.Name, city.Code)

	for order, tab := range w.src.TabNames() {
		if ctx.Err() != nil {
			return summary, errs.NewCancelled(w.src.Name, "run")
		}
		w.runTab(ctx, coll, ext, ledger, city, tab, order+1, summary)
	}

	w.recordAudit(ctx, sessionID, city, summary)
	w.publishSummary(summary)

	log.Info().
		Int("urls", summary.URLsCollected).
		Int("attempted", summary.Attempted).
		Int("succeeded", summary.Succeeded).
		Int("partial", summary.Partial).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("run finished")
	return summary, nil
}

func (w *Worker) runTab(ctx context.Context, coll *collector.Collector, ext *extractor.Extractor,
	ledger *ranking.Ledger, city geo.City, tab string, tabOrder int, summary *Summary) {
	status := store.NewSessionStatus(w.src.Name, city.Name, tab)
	w.saveStatus(status)

	res := coll.Collect(ctx, city, tab, w.registry.Variations(city.Name),
		w.cfg.TargetCount, w.cfg.MaxPages)
	summary.URLsCollected += len(res.URLs)

	stage1 := store.StageSuccess
	if res.Err != nil && len(res.URLs) == 0 {
		stage1 = store.StageFailed
	}
	status.MarkStage1(stage1, map[string]any{
		"urls":  len(res.URLs),
		"pages": res.PagesVisited,
		"query": res.QueryUsed,
	})
	w.saveStatus(status)
	if stage1 == store.StageFailed {
		status.MarkStage2(store.StageFailed, nil)
		w.saveStatus(status)
		return
	}

	succeeded, failed := 0, 0
	for _, ranked := range res.URLs {
		if ctx.Err() != nil {
			status.MarkStage2(store.StageFailed, map[string]any{"reason": "cancelled"})
			w.saveStatus(status)
			return
		}
		if ledger.IsCrawled(ranked.URL) {
			summary.Skipped++
			continue
		}
		summary.Attempted++

		if err := w.ingestURL(ctx, ext, ledger, city, tab, tabOrder, ranked, summary); err != nil {
			failed++
			logger.LogError("worker", err, "ingest failed for %s", ranked.URL)
			continue
		}
		succeeded++

		if err := ledger.SaveAccumulated(w.cfg.AccumDir); err != nil {
			w.log.Warn().Err(err).Msg("accumulated save failed")
		}
	}

	stage2 := store.StageSuccess
	if failed > 0 && succeeded == 0 {
		stage2 = store.StageFailed
	}
	status.MarkStage2(stage2, map[string]any{
		"succeeded": succeeded,
		"failed":    failed,
	})
	w.saveStatus(status)
}

// ingestURL runs extraction through persistence for one ranked URL.
// Navigation timeouts retry up to the configured budget, then fall back
// to a plain HTTP fetch; all other kinds fail fast.
func (w *Worker) ingestURL(ctx context.Context, ext *extractor.Extractor, ledger *ranking.Ledger,
	city geo.City, tab string, tabOrder int, ranked ranking.RankedURL, summary *Summary) error {
	w.throttle(ctx)

	var e *extractor.Extraction
	var err error
	for attempt := 1; attempt <= maxInt(w.cfg.MaxRetries, 1); attempt++ {
		e, err = ext.Extract(ctx, ranked.URL)
		if err == nil || !errs.IsRetryable(err) {
			break
		}
		w.log.Warn().Str("url", ranked.URL).Int("attempt", attempt).Err(err).Msg("extraction retry")
		time.Sleep(w.cfg.RetryBaseDelay * time.Duration(attempt))
	}
	if err != nil && errs.IsRetryable(err) {
		w.log.Warn().Str("url", ranked.URL).Msg("browser extraction exhausted, trying plain fetch")
		if se, serr := ext.ExtractStatic(ctx, ranked.URL); serr == nil {
			e, err = se, nil
		}
	}
	if err != nil {
		summary.Failed++
		return err
	}

	number, err := w.csv.NextProductNumber(w.src.Name, city)
	if err != nil {
		summary.Failed++
		return err
	}

	pair := w.images.Save(city, number, e.MainImageURL, e.ThumbURL)

	recStatus := store.RecordComplete
	if e.Partial() {
		recStatus = store.RecordPartial
	}
	rec := &store.ProductRecord{
		Number:            number,
		CityID:            city.Code,
		Page:              ranked.Page,
		Continent:         city.Continent,
		Country:           city.Country,
		City:              city.Name,
		CityCode:          city.Code,
		ProductType:       w.src.ProductType,
		Title:             e.Title,
		PriceRaw:          e.PriceRaw,
		PriceClean:        e.PriceClean,
		RatingRaw:         e.RatingRaw,
		RatingClean:       e.RatingClean,
		ReviewCount:       e.ReviewCount,
		Language:          e.Language,
		Category:          e.Category,
		Highlight:         e.Highlight,
		Location:          e.Location,
		MainImageFilename: pair.Main.Filename,
		MainImageRelPath:  pair.Main.RelPath,
		MainImageAbsPath:  pair.Main.AbsPath,
		MainImageStatus:   string(pair.Main.Status),
		ThumbFilename:     pair.Thumb.Filename,
		ThumbRelPath:      pair.Thumb.RelPath,
		ThumbAbsPath:      pair.Thumb.AbsPath,
		ThumbStatus:       string(pair.Thumb.Status),
		URL:               ranked.URL,
		CollectedAt:       w.now().UTC().Format(time.RFC3339),
		Status:            recStatus,
		TabName:           tab,
		TabOrder:          tabOrder,
		TabRank:           ranked.Rank,
		URLHash:           w.csvHash(ranked.URL),
	}

	if err := w.csv.Append(w.src.Name, city, rec); err != nil {
		summary.Failed++
		return err
	}
	ledger.MarkCrawled(ranked.URL)

	if recStatus == store.RecordPartial {
		summary.Partial++
	} else {
		summary.Succeeded++
	}

	w.lift(ctx, rec, e.Duration)
	w.publishRecord(rec)
	return nil
}

func (w *Worker) csvHash(url string) string {
	return fingerprint.Fingerprint(url, w.src.AllowedQueryKeys)
}

// lift upserts the record into the unified store when one is attached.
func (w *Worker) lift(ctx context.Context, rec *store.ProductRecord, durationLabel string) {
	if w.udb == nil {
		return
	}
	p := unified.Normalize(w.src, rec, durationLabel)
	if _, err := w.udb.Upsert(ctx, p); err != nil {
		w.log.Warn().Str("url", rec.URL).Err(err).Msg("unified upsert failed")
	}
}

func (w *Worker) recordAudit(ctx context.Context, sessionID string, city geo.City, s *Summary) {
	if w.udb == nil {
		return
	}
	rate := 0.0
	if s.Attempted > 0 {
		rate = float64(s.Succeeded+s.Partial) / float64(s.Attempted)
	}
	err := w.udb.RecordAudit(ctx, &unified.AuditEntry{
		SessionID:     sessionID,
		Provider:      w.src.Name,
		SearchQuery:   city.Name,
		Destination:   city.Name,
		FetchTS:       w.now().UTC().Format(time.RFC3339),
		ProductsCount: s.Succeeded + s.Partial,
		SuccessRate:   rate,
	})
	if err != nil {
		w.log.Warn().Err(err).Msg("audit write failed")
	}
}

func (w *Worker) publishRecord(rec *store.ProductRecord) {
	if w.pub == nil {
		return
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := w.pub.Publish(w.src.Name, raw); err != nil {
		w.log.Warn().Err(err).Msg("record publish failed")
	}
}

func (w *Worker) publishSummary(s *Summary) {
	if w.pub == nil {
		return
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := w.pub.Publish(w.src.Name+":summary", raw); err != nil {
		w.log.Warn().Err(err).Msg("summary publish failed")
	}
}

// throttle paces detail fetches using the shared cache: one extraction
// per source per second across cooperating workers.
func (w *Worker) throttle(ctx context.Context) {
	if w.cache == nil {
		return
	}
	key := "ratelimit:" + w.src.Name
	for {
		if _, err := w.cache.Get(key); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(200 * time.Millisecond):
		}
	}
	if err := w.cache.Set(key, []byte("1"), time.Second); err != nil {
		w.log.Debug().Err(err).Msg("rate limit key set failed")
	}
}

func (w *Worker) saveStatus(st *store.SessionStatus) {
	if err := st.Save(w.cfg.StatusDir); err != nil {
		w.log.Warn().Err(err).Msg("status file write failed")
	}
}

func sanitizeCode(name string) string {
	code := ""
	for _, r := range name {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			code += string(r)
		}
		if len(code) == 3 {
			break
		}
	}
	if code == "" {
		return "XXX"
	}
	return code
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
