package store

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/travelworker/internal/geo"
)

func seoul() geo.City {
	return geo.City{Name: "Seoul", Continent: "Asia", Country: "South Korea", Code: "SEL"}
}

func record(number int) *ProductRecord {
	return &ProductRecord{
		Number:      number,
		CityID:      "SEL",
		Page:        1,
		Continent:   "Asia",
		Country:     "South Korea",
		City:        "Seoul",
		CityCode:    "SEL",
		ProductType: "activity",
		Title:       fmt.Sprintf("Tour %d", number),
		PriceRaw:    "29,600원",
		PriceClean:  "29600",
		URL:         fmt.Sprintf("https://www.klook.com/activity/%d", number),
		CollectedAt: "2026-08-31T09:00:00Z",
		Status:      RecordComplete,
		TabName:     "all",
		TabOrder:    1,
		TabRank:     number,
		URLHash:     "abcd1234abcd1234",
	}
}

func TestAppendAndNextProductNumber(t *testing.T) {
	s := NewCSVStore(t.TempDir())

	n, err := s.NextProductNumber("klook", seoul())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.Append("klook", seoul(), record(1)))
	require.NoError(t, s.Append("klook", seoul(), record(2)))

	n, err = s.NextProductNumber("klook", seoul())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	raw, err := os.ReadFile(s.CityFile("klook", seoul()))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, utf8BOM), "per-city table must start with a BOM")

	rows, err := readRows(raw)
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 records
	assert.Len(t, rows[0], 33)
	assert.Equal(t, "number", rows[0][0])
	assert.Equal(t, "url_hash", rows[0][32])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "2", rows[2][0])
}

func TestNextProductNumber_SurvivesRestart(t *testing.T) {
	root := t.TempDir()

	s1 := NewCSVStore(root)
	require.NoError(t, s1.Append("klook", seoul(), record(1)))
	require.NoError(t, s1.Append("klook", seoul(), record(2)))

	// a fresh store over the same root continues the sequence
	s2 := NewCSVStore(root)
	n, err := s2.NextProductNumber("klook", seoul())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestNextProductNumber_CompoundLegacyKey(t *testing.T) {
	s := NewCSVStore(t.TempDir())
	path := s.CityFile("klook", seoul())
	require.NoError(t, os.MkdirAll(s.cityDir(seoul()), 0o755))

	var buf bytes.Buffer
	buf.Write(utf8BOM)
	buf.WriteString("number,city_id\npage1_3,SEL\npage2_7,SEL\n")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	n, err := s.NextProductNumber("klook", seoul())
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}

func TestAppendWritesCountryRollup(t *testing.T) {
	s := NewCSVStore(t.TempDir())
	require.NoError(t, s.Append("klook", seoul(), record(1)))

	rollup := s.CountryFile("klook", seoul())
	assert.True(t, strings.HasSuffix(rollup, "South_Korea_klook_products_all.csv"))

	raw, err := os.ReadFile(rollup)
	require.NoError(t, err)
	rows, err := readRows(raw)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, rows[0], mustHeader(t))
}

func TestCityStatePaths(t *testing.T) {
	s := NewCSVStore(t.TempDir())
	singapore := geo.City{Name: "Singapore", Continent: "Asia", Country: "Singapore", Code: "SIN", CityState: true}

	require.NoError(t, s.Append("kkday", singapore, record(1)))
	assert.FileExists(t, s.CityFile("kkday", singapore))
	assert.NotContains(t, s.CityFile("kkday", singapore), "Singapore/Singapore")
}

func TestMigrateGrownSchema(t *testing.T) {
	s := NewCSVStore(t.TempDir())
	path := s.CityFile("klook", seoul())
	require.NoError(t, os.MkdirAll(s.cityDir(seoul()), 0o755))

	// historical table written before the tab/hash columns existed
	header := mustHeader(t)
	old := header[:30]
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	require.NoError(t, w.Write(old))
	row := make([]string, 30)
	row[0] = "1"
	row[8] = "Old Tour"
	require.NoError(t, w.Write(row))
	w.Flush()
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	require.NoError(t, s.Append("klook", seoul(), record(2)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := readRows(raw)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, header, rows[0])
	assert.Len(t, rows[1], 33)
	assert.Equal(t, "", rows[1][32], "historical row gets new columns blank")
	assert.Equal(t, "Old Tour", rows[1][8])
	assert.Equal(t, "2", rows[2][0])
}

func mustHeader(t *testing.T) []string {
	t.Helper()
	header := []string{
		"number", "city_id", "page", "continent", "country", "city", "city_code",
		"product_type", "title", "price_raw", "price_clean", "rating_raw",
		"rating_clean", "review_count", "language", "category", "highlight",
		"location", "main_image_filename", "main_image_relpath",
		"main_image_abspath", "main_image_status", "thumb_filename",
		"thumb_relpath", "thumb_abspath", "thumb_status", "url", "collected_at",
		"status", "tab_name", "tab_order", "tab_rank", "url_hash",
	}
	require.Len(t, header, 33)
	return header
}
