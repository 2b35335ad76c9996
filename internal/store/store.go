// Package store persists product records to append-only CSV tables, one
// per city plus a per-country rollup, and tracks per-run session status.
package store

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/jszwec/csvutil"

	"sjsage522/travelworker/helpers"
	"sjsage522/travelworker/internal/geo"
	"sjsage522/travelworker/logger"
	errs "sjsage522/travelworker/pkg/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVStore appends product rows under one data root. Appenders within a
// process serialise on a mutex; the shared country rollup additionally
// takes a cross-process file lock.
type CSVStore struct {
	root string
	mu   sync.Mutex
	log  *logger.Logger
}

func NewCSVStore(root string) *CSVStore {
	return &CSVStore{root: root, log: logger.ForStore("csv")}
}

func sanitize(part string) string {
	return strings.ReplaceAll(strings.TrimSpace(part), " ", "_")
}

func (s *CSVStore) cityDir(city geo.City) string {
	if city.CityState {
		return filepath.Join(s.root, sanitize(city.Continent))
	}
	return filepath.Join(s.root, sanitize(city.Continent), sanitize(city.Country), sanitize(city.Name))
}

// CityFile is the per-city append-only table path.
func (s *CSVStore) CityFile(sourceName string, city geo.City) string {
	name := fmt.Sprintf("%s_%s_products.csv", sourceName, sanitize(city.Name))
	return filepath.Join(s.cityDir(city), name)
}

// CountryFile is the shared per-country rollup table path.
func (s *CSVStore) CountryFile(sourceName string, city geo.City) string {
	name := fmt.Sprintf("%s_%s_products_all.csv", sanitize(city.Country), sourceName)
	if city.CityState {
		return filepath.Join(s.root, sanitize(city.Continent), name)
	}
	return filepath.Join(s.root, sanitize(city.Continent), sanitize(city.Country), name)
}

// NextProductNumber scans the per-city table and returns max(number)+1.
// Compound legacy keys like "page1_3" count by their trailing digit run.
// A missing or empty table starts at 1.
func (s *CSVStore) NextProductNumber(sourceName string, city geo.City) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return nextNumberLocked(s.CityFile(sourceName, city))
}

func nextNumberLocked(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 1, nil
	}
	if err != nil {
		return 0, errs.NewStorage("", "read_products", err)
	}

	rows, err := readRows(raw)
	if err != nil {
		return 0, errs.NewStorage("", "parse_products", err)
	}

	max := 0
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		digits := helpers.TrailingDigits(row[0])
		if digits == "" {
			continue
		}
		if n, err := strconv.Atoi(digits); err == nil && n > max {
			max = n
		}
	}
	return max + 1, nil
}

// Append writes rec to the per-city table and the country rollup with
// identical schemas.
func (s *CSVStore) Append(sourceName string, city geo.City, rec *ProductRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.cityDir(city), 0o755); err != nil {
		return errs.NewStorage(sourceName, "mkdir", err)
	}

	if err := s.appendTo(s.CityFile(sourceName, city), rec, false); err != nil {
		return errs.NewStorage(sourceName, "append_city", err)
	}
	if err := s.appendTo(s.CountryFile(sourceName, city), rec, true); err != nil {
		return errs.NewStorage(sourceName, "append_country", err)
	}
	return nil
}

func (s *CSVStore) appendTo(path string, rec *ProductRecord, shared bool) error {
	if shared {
		fl := flock.New(path + ".lock")
		if err := fl.Lock(); err != nil {
			return err
		}
		defer fl.Unlock()
	}

	if err := s.migrateIfNeeded(path); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	if info.Size() == 0 {
		if _, err := f.Write(utf8BOM); err != nil {
			return err
		}
	} else {
		enc.AutoHeader = false
	}
	if err := enc.Encode(rec); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// migrateIfNeeded rewrites a table whose header predates the current
// schema: historical rows get the new trailing columns blank. Column
// order never changes, only grows.
func (s *CSVStore) migrateIfNeeded(path string) error {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) || (err == nil && len(raw) == 0) {
		return nil
	}
	if err != nil {
		return err
	}

	header, err := csvutil.Header(ProductRecord{}, "csv")
	if err != nil {
		return err
	}
	rows, err := readRows(raw)
	if err != nil {
		return err
	}
	if len(rows) == 0 || len(rows[0]) >= len(header) {
		return nil
	}
	for i, col := range rows[0] {
		if col != header[i] {
			return fmt.Errorf("incompatible schema in %s: column %d is %q, want %q", path, i, col, header[i])
		}
	}

	s.log.Info().Str("path", path).
		Int("from", len(rows[0])).Int("to", len(header)).
		Msg("rewriting table for grown schema")

	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows[1:] {
		for len(row) < len(header) {
			row = append(row, "")
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readRows(raw []byte) ([][]string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	return r.ReadAll()
}
