// Package extractor implements the second pipeline stage: visiting a
// ranked product URL and pulling a per-source record out of the detail
// page.
package extractor

import (
	"context"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/travelworker/config"
	"sjsage522/travelworker/helpers"
	"sjsage522/travelworker/internal/session"
	"sjsage522/travelworker/internal/source"
	"sjsage522/travelworker/logger"
	errs "sjsage522/travelworker/pkg/errors"
)

// Extraction is one product detail page reduced to fields. Raw and
// cleaned forms are both kept so degraded parses stay inspectable.
type Extraction struct {
	URL          string
	Title        string
	PriceRaw     string
	PriceClean   string
	RatingRaw    string
	RatingClean  string
	ReviewCount  int
	Language     string
	Category     string
	Highlight    string
	Location     string
	Duration     string
	MainImageURL string
	ThumbURL     string
	MissingKeys  []string
}

// Partial reports whether any optional field came back empty or failed
// numeric cleaning.
func (e *Extraction) Partial() bool { return len(e.MissingKeys) > 0 }

// Extractor resolves one source's field selectors against live pages.
type Extractor struct {
	src  source.Descriptor
	sess session.PageSession
	cfg  config.Config
	log  *logger.Logger
}

func New(src source.Descriptor, sess session.PageSession, cfg config.Config) *Extractor {
	return &Extractor{
		src:  src,
		sess: sess,
		cfg:  cfg,
		log:  logger.ForStage("extract").WithField("source", src.Name),
	}
}

// Extract opens url and resolves every field in the source descriptor.
// Title is mandatory; without it the page is treated as a miss and no
// record is produced.
func (x *Extractor) Extract(ctx context.Context, url string) (*Extraction, error) {
	if ctx.Err() != nil {
		return nil, errs.NewCancelled(x.src.Name, "extract")
	}
	if err := x.sess.Navigate(ctx, url, x.src.DetailReady); err != nil {
		return nil, errs.NewNavigationTimeout(x.src.Name, url, err)
	}
	html, err := x.sess.HTML(ctx)
	if err != nil {
		return nil, errs.NewNavigationTimeout(x.src.Name, url, err)
	}
	return x.FromHTML(url, html)
}

// ExtractStatic fetches url over plain HTTP with browser-like headers
// instead of driving the page session. The body is converted to UTF-8
// before parsing, so non-UTF-8 sources stay readable on this path.
func (x *Extractor) ExtractStatic(ctx context.Context, url string) (*Extraction, error) {
	if ctx.Err() != nil {
		return nil, errs.NewCancelled(x.src.Name, "extract")
	}
	body, err := helpers.FetchWithRandomHeaders(url)
	if err != nil {
		return nil, errs.NewNetwork(x.src.Name, "fetch "+url, err)
	}
	html, err := io.ReadAll(body)
	if err != nil {
		return nil, errs.NewNetwork(x.src.Name, "fetch "+url, err)
	}
	return x.FromHTML(url, string(html))
}

// FromHTML resolves fields out of an already-fetched document. Split out
// from Extract so parsing is testable without a browser.
func (x *Extractor) FromHTML(url, html string) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errs.NewParse(x.src.Name, "document", err.Error())
	}

	e := &Extraction{URL: url}
	e.Title = x.text(doc, source.FieldTitle)
	if e.Title == "" {
		return nil, errs.NewSelectorMiss(x.src.Name, source.FieldTitle)
	}

	e.PriceRaw = x.text(doc, source.FieldPrice)
	e.PriceClean = CleanPrice(e.PriceRaw)

	e.RatingRaw = x.text(doc, source.FieldRating)
	if e.RatingRaw != "" {
		clean, err := CleanRating(e.RatingRaw)
		if err != nil {
			x.log.Warn().Str("url", url).Str("raw", e.RatingRaw).Err(err).Msg("unusable rating")
		} else {
			e.RatingClean = clean
		}
	}

	e.ReviewCount = CleanReviewCount(x.text(doc, source.FieldReviewCount))
	e.Language = x.text(doc, source.FieldLanguage)
	e.Category = x.text(doc, source.FieldCategory)
	e.Highlight = x.text(doc, source.FieldHighlight)
	e.Location = x.text(doc, source.FieldLocation)
	e.Duration = x.text(doc, source.FieldDuration)
	e.MainImageURL = x.imageURL(doc, source.FieldMainImage)
	e.ThumbURL = x.imageURL(doc, source.FieldThumbImage)

	// Price and rating are judged on their cleaned forms: a value that was
	// present but unparseable still degrades the record.
	for _, key := range []struct {
		name  string
		value string
	}{
		{source.FieldPrice, e.PriceClean},
		{source.FieldRating, e.RatingClean},
		{source.FieldLanguage, e.Language},
		{source.FieldCategory, e.Category},
		{source.FieldHighlight, e.Highlight},
		{source.FieldLocation, e.Location},
		{source.FieldDuration, e.Duration},
		{source.FieldMainImage, e.MainImageURL},
	} {
		if key.value == "" {
			e.MissingKeys = append(e.MissingKeys, key.name)
		}
	}
	return e, nil
}

// text walks the field's selector chain, first non-empty text wins.
func (x *Extractor) text(doc *goquery.Document, field string) string {
	for _, sel := range x.src.Fields[field] {
		if v := helpers.NormalizeSpace(doc.Find(sel).First().Text()); v != "" {
			return v
		}
	}
	return ""
}

// imageURL resolves a field to an absolute image URL, trying each of the
// source's image attributes on each selector in the chain.
func (x *Extractor) imageURL(doc *goquery.Document, field string) string {
	for _, sel := range x.src.Fields[field] {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		for _, attr := range x.src.ImageAttrs {
			if v, ok := node.Attr(attr); ok && strings.TrimSpace(v) != "" {
				return x.src.ResolveURL(strings.TrimSpace(v))
			}
		}
	}
	return ""
}
