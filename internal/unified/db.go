package unified

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"

	"sjsage522/travelworker/logger"
	errs "sjsage522/travelworker/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	provider            TEXT NOT NULL,
	provider_product_id TEXT NOT NULL,
	fetch_ts            TEXT NOT NULL,
	destination_city    TEXT NOT NULL DEFAULT '',
	title               TEXT NOT NULL DEFAULT '',
	price_currency      TEXT NOT NULL DEFAULT '',
	price_value         REAL NOT NULL DEFAULT 0,
	fx_rate             REAL,
	rating_value        REAL NOT NULL DEFAULT 0,
	rating_count        INTEGER NOT NULL DEFAULT 0,
	duration_hours      REAL NOT NULL DEFAULT 0,
	pickup              INTEGER NOT NULL DEFAULT 0,
	languages           TEXT NOT NULL DEFAULT '[]',
	themes              TEXT NOT NULL DEFAULT '[]',
	included            TEXT NOT NULL DEFAULT '[]',
	excluded            TEXT NOT NULL DEFAULT '[]',
	images              TEXT NOT NULL DEFAULT '[]',
	options             TEXT NOT NULL DEFAULT '[]',
	availability        TEXT NOT NULL DEFAULT '[]',
	cancel_policy       TEXT NOT NULL DEFAULT '{}',
	landing_url         TEXT NOT NULL DEFAULT '',
	affiliate_url       TEXT NOT NULL DEFAULT '',
	rank_position       INTEGER NOT NULL DEFAULT 0,
	product_hash        TEXT NOT NULL DEFAULT '',
	data_source_meta    TEXT NOT NULL DEFAULT '{}',
	created_at          TEXT NOT NULL,
	updated_at          TEXT NOT NULL,
	PRIMARY KEY (provider, provider_product_id)
);
CREATE INDEX IF NOT EXISTS idx_products_provider_city ON products (provider, destination_city);
CREATE INDEX IF NOT EXISTS idx_products_fetch_ts      ON products (fetch_ts);
CREATE INDEX IF NOT EXISTS idx_products_price         ON products (price_currency, price_value);
CREATE INDEX IF NOT EXISTS idx_products_rating        ON products (rating_value, rating_count);
CREATE INDEX IF NOT EXISTS idx_products_rank          ON products (rank_position);
CREATE INDEX IF NOT EXISTS idx_products_hash          ON products (product_hash);

CREATE TABLE IF NOT EXISTS collection_audit (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id     TEXT NOT NULL,
	provider       TEXT NOT NULL,
	search_query   TEXT NOT NULL DEFAULT '',
	destination    TEXT NOT NULL DEFAULT '',
	user_agent     TEXT NOT NULL DEFAULT '',
	region         TEXT NOT NULL DEFAULT '',
	fetch_ts       TEXT NOT NULL,
	products_count INTEGER NOT NULL DEFAULT 0,
	success_rate   REAL NOT NULL DEFAULT 0,
	error_log      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_audit_session ON collection_audit (session_id);
`

// AuditEntry is one row of the ingestion audit log.
type AuditEntry struct {
	SessionID     string
	Provider      string
	SearchQuery   string
	Destination   string
	UserAgent     string
	Region        string
	FetchTS       string
	ProductsCount int
	SuccessRate   float64
	ErrorLog      string
}

// DB is the unified SQLite store.
type DB struct {
	sql *sql.DB
	log *logger.Logger
	now func() time.Time
}

// Open opens (creating if needed) the unified database and applies the
// schema. WAL keeps concurrent lifts from separate processes workable.
func Open(path string) (*DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(10000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errs.NewStorage("", "open_unified_db", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errs.NewStorage("", "init_unified_db", err)
	}
	return &DB{sql: db, log: logger.ForStore("unified"), now: time.Now}, nil
}

func (d *DB) Close() error { return d.sql.Close() }

// Upsert inserts or refreshes a product on its (provider, product id)
// key. created_at is preserved on conflict; updated_at always moves.
// changed reports whether the content hash differs from what was
// stored, i.e. whether downstream consumers should care.
func (d *DB) Upsert(ctx context.Context, p *Product) (changed bool, err error) {
	var prevHash string
	err = d.sql.QueryRowContext(ctx,
		`SELECT product_hash FROM products WHERE provider = ? AND provider_product_id = ?`,
		p.Provider, p.ProviderProductID).Scan(&prevHash)
	switch {
	case err == sql.ErrNoRows:
		changed = true
	case err != nil:
		return false, errs.NewStorage(p.Provider, "upsert_select", err)
	default:
		changed = prevHash != p.ProductHash
	}

	now := d.now().UTC().Format(time.RFC3339)
	_, err = d.sql.ExecContext(ctx, `
INSERT INTO products (
	provider, provider_product_id, fetch_ts, destination_city, title,
	price_currency, price_value, fx_rate, rating_value, rating_count,
	duration_hours, pickup, languages, themes, included, excluded,
	images, options, availability, cancel_policy, landing_url,
	affiliate_url, rank_position, product_hash, data_source_meta,
	created_at, updated_at
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT (provider, provider_product_id) DO UPDATE SET
	fetch_ts = excluded.fetch_ts,
	destination_city = excluded.destination_city,
	title = excluded.title,
	price_currency = excluded.price_currency,
	price_value = excluded.price_value,
	fx_rate = excluded.fx_rate,
	rating_value = excluded.rating_value,
	rating_count = excluded.rating_count,
	duration_hours = excluded.duration_hours,
	pickup = excluded.pickup,
	languages = excluded.languages,
	themes = excluded.themes,
	included = excluded.included,
	excluded = excluded.excluded,
	images = excluded.images,
	options = excluded.options,
	availability = excluded.availability,
	cancel_policy = excluded.cancel_policy,
	landing_url = excluded.landing_url,
	affiliate_url = excluded.affiliate_url,
	rank_position = excluded.rank_position,
	product_hash = excluded.product_hash,
	data_source_meta = excluded.data_source_meta,
	updated_at = excluded.updated_at`,
		p.Provider, p.ProviderProductID, p.FetchTS, p.DestinationCity, p.Title,
		p.PriceCurrency, p.PriceValue, p.FXRate, p.RatingValue, p.RatingCount,
		p.DurationHours, p.Pickup, jsonText(p.Languages), jsonText(p.Themes),
		jsonText(p.Included), jsonText(p.Excluded), jsonText(p.Images),
		jsonText(p.Options), jsonText(p.Availability), jsonText(p.CancelPolicy),
		p.LandingURL, p.AffiliateURL, p.RankPosition, p.ProductHash,
		jsonText(p.DataSourceMeta), now, now)
	if err != nil {
		return false, errs.NewStorage(p.Provider, "upsert", err)
	}
	return changed, nil
}

// Get loads one product by its primary key; (nil, nil) when absent.
func (d *DB) Get(ctx context.Context, provider, productID string) (*Product, error) {
	var p Product
	var pickup int
	var languages, themes, included, excluded, images, options, availability, cancelPolicy, meta string
	var createdAt, updatedAt string

	err := d.sql.QueryRowContext(ctx, `
SELECT provider, provider_product_id, fetch_ts, destination_city, title,
	price_currency, price_value, fx_rate, rating_value, rating_count,
	duration_hours, pickup, languages, themes, included, excluded,
	images, options, availability, cancel_policy, landing_url,
	affiliate_url, rank_position, product_hash, data_source_meta,
	created_at, updated_at
FROM products WHERE provider = ? AND provider_product_id = ?`,
		provider, productID).Scan(
		&p.Provider, &p.ProviderProductID, &p.FetchTS, &p.DestinationCity, &p.Title,
		&p.PriceCurrency, &p.PriceValue, &p.FXRate, &p.RatingValue, &p.RatingCount,
		&p.DurationHours, &pickup, &languages, &themes, &included, &excluded,
		&images, &options, &availability, &cancelPolicy, &p.LandingURL,
		&p.AffiliateURL, &p.RankPosition, &p.ProductHash, &meta,
		&createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewStorage(provider, "get_product", err)
	}

	p.Pickup = pickup != 0
	for _, pair := range []struct {
		raw  string
		dest any
	}{
		{languages, &p.Languages},
		{themes, &p.Themes},
		{included, &p.Included},
		{excluded, &p.Excluded},
		{images, &p.Images},
		{options, &p.Options},
		{availability, &p.Availability},
		{cancelPolicy, &p.CancelPolicy},
		{meta, &p.DataSourceMeta},
	} {
		if err := json.Unmarshal([]byte(pair.raw), pair.dest); err != nil {
			return nil, errs.NewStorage(provider, "decode_product", err)
		}
	}
	return &p, nil
}

// CreatedAt returns a product's created_at column, for verifying upsert
// semantics and change audits.
func (d *DB) CreatedAt(ctx context.Context, provider, productID string) (string, error) {
	var createdAt string
	err := d.sql.QueryRowContext(ctx,
		`SELECT created_at FROM products WHERE provider = ? AND provider_product_id = ?`,
		provider, productID).Scan(&createdAt)
	if err != nil {
		return "", errs.NewStorage(provider, "get_created_at", err)
	}
	return createdAt, nil
}

// RecordAudit appends one ingestion session row.
func (d *DB) RecordAudit(ctx context.Context, a *AuditEntry) error {
	_, err := d.sql.ExecContext(ctx, `
INSERT INTO collection_audit (
	session_id, provider, search_query, destination, user_agent, region,
	fetch_ts, products_count, success_rate, error_log
) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		a.SessionID, a.Provider, a.SearchQuery, a.Destination, a.UserAgent,
		a.Region, a.FetchTS, a.ProductsCount, a.SuccessRate, a.ErrorLog)
	if err != nil {
		return errs.NewStorage(a.Provider, "record_audit", err)
	}
	return nil
}

// CountByProvider reports how many unified products a provider holds.
func (d *DB) CountByProvider(ctx context.Context, provider string) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE provider = ?`, provider).Scan(&n)
	if err != nil {
		return 0, errs.NewStorage(provider, "count_products", err)
	}
	return n, nil
}
