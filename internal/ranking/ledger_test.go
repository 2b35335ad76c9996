package ranking

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFP(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:16]
}

func newTestLedger() *Ledger {
	return NewLedger("Seoul", "SEL", testFP, nil)
}

func TestOffer_ContiguousRanks(t *testing.T) {
	l := newTestLedger()
	l.StartTab("all")

	urls := []string{"https://a", "https://b", "https://c", "https://d", "https://e"}
	for i, u := range urls {
		rank, dup := l.Offer("all", u, i/3+1, i%3+1)
		assert.Equal(t, i+1, rank)
		assert.False(t, dup)
	}

	ranked := l.TabURLs("all")
	require.Len(t, ranked, 5)
	for i, r := range ranked {
		assert.Equal(t, i+1, r.Rank)
	}
}

func TestOffer_DuplicateKeepsOriginalRank(t *testing.T) {
	l := newTestLedger()
	l.StartTab("all")

	// page 1: A, B; page 2: A, C
	r, _ := l.Offer("all", "https://a", 1, 1)
	assert.Equal(t, 1, r)
	r, _ = l.Offer("all", "https://b", 1, 2)
	assert.Equal(t, 2, r)

	r, dup := l.Offer("all", "https://a", 2, 1)
	assert.Equal(t, 1, r)
	assert.True(t, dup)

	r, dup = l.Offer("all", "https://c", 2, 2)
	assert.Equal(t, 3, r)
	assert.False(t, dup)

	snap := l.Snapshot()
	assert.Equal(t, 3, snap.Stats.TotalURLs)
	assert.Equal(t, 1, snap.Stats.DuplicateURLs)

	// the duplicate's pagination info follows the latest sighting
	entry := snap.URLRankings[testFP("https://a")]
	require.NotNil(t, entry)
	assert.Equal(t, 2, entry.PaginationInfo.Page)
	assert.Equal(t, 1, entry.TabRankings["all"].Ranking)
}

func TestStartTab_ResetsRankCounter(t *testing.T) {
	l := newTestLedger()
	l.StartTab("tours")
	l.Offer("tours", "https://a", 1, 1)
	l.Offer("tours", "https://b", 1, 2)

	l.StartTab("tours")
	rank, dup := l.Offer("tours", "https://c", 1, 1)
	assert.Equal(t, 1, rank)
	assert.False(t, dup)
}

func TestMarkCrawled_OneWay(t *testing.T) {
	l := newTestLedger()
	l.StartTab("all")
	l.Offer("all", "https://a", 1, 1)

	assert.False(t, l.IsCrawled("https://a"))
	l.MarkCrawled("https://a")
	assert.True(t, l.IsCrawled("https://a"))

	snap := l.Snapshot()
	first := snap.URLRankings[testFP("https://a")].CrawledAt
	require.NotEmpty(t, first)

	l.MarkCrawled("https://a")
	assert.Equal(t, first, l.Snapshot().URLRankings[testFP("https://a")].CrawledAt)

	// unknown URLs are ignored
	l.MarkCrawled("https://never-offered")
	assert.False(t, l.IsCrawled("https://never-offered"))
}

func TestMarkCrawled_FlagsTabEntry(t *testing.T) {
	l := newTestLedger()
	l.StartTab("all")
	l.Offer("all", "https://a", 1, 1)
	l.Offer("all", "https://b", 1, 2)

	l.MarkCrawled("https://a")

	ranked := l.TabURLs("all")
	require.Len(t, ranked, 2)
	assert.True(t, ranked[0].Crawled)
	assert.NotEmpty(t, ranked[0].CrawledAt)
	assert.False(t, ranked[1].Crawled)
	assert.Empty(t, ranked[1].CrawledAt)
}

func TestTabRank(t *testing.T) {
	l := newTestLedger()
	l.StartTab("all")
	l.Offer("all", "https://a", 1, 1)

	assert.Equal(t, 1, l.TabRank("all", "https://a"))
	assert.Equal(t, 0, l.TabRank("all", "https://b"))
	assert.Equal(t, 0, l.TabRank("tours", "https://a"))
}

func TestSnapshot_TabsProcessed(t *testing.T) {
	l := newTestLedger()
	l.StartTab("all")
	l.Offer("all", "https://a", 1, 1)
	l.StartTab("tours")
	l.Offer("tours", "https://a", 1, 1)

	snap := l.Snapshot()
	assert.ElementsMatch(t, []string{"all", "tours"}, snap.Stats.TabsProcessed)

	// both tabs recorded their own rank for the shared URL
	entry := snap.URLRankings[testFP("https://a")]
	assert.Equal(t, 1, entry.TabRankings["all"].Ranking)
	assert.Equal(t, 1, entry.TabRankings["tours"].Ranking)
}

func TestSaveTabRunAndAccumulated(t *testing.T) {
	dir := t.TempDir()
	l := newTestLedger()
	l.StartTab("all")
	l.Offer("all", "https://a", 1, 1)
	l.Offer("all", "https://b", 2, 1)

	path, err := l.SaveTabRun(dir, "all", "paginated_search")
	require.NoError(t, err)
	assert.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var snap TabSnapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, "Seoul", snap.City)
	assert.Equal(t, "SEL", snap.CityCode)
	assert.Equal(t, 2, snap.TotalURLs)
	assert.Equal(t, 2, snap.MaxPage)
	require.Len(t, snap.URLsWithRanking, 2)
	assert.Equal(t, 1, snap.URLsWithRanking[0].Rank)

	accumDir := filepath.Join(dir, "accum")
	require.NoError(t, l.SaveAccumulated(accumDir))

	loaded, err := LoadAccumulated(accumDir, "SEL")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 2, loaded.Stats.TotalURLs)
}

func TestIdempotentRecrawl(t *testing.T) {
	dir := t.TempDir()

	run := func() *Accumulated {
		prev, err := LoadAccumulated(dir, "SEL")
		require.NoError(t, err)
		l := NewLedger("Seoul", "SEL", testFP, prev)
		l.StartTab("all")
		l.Offer("all", "https://a", 1, 1)
		l.Offer("all", "https://b", 1, 2)
		require.NoError(t, l.SaveAccumulated(dir))
		return l.Snapshot()
	}

	first := run()
	second := run()

	// same inputs, same map shape (modulo timestamps)
	assert.Equal(t, first.Stats.TotalURLs, second.Stats.TotalURLs)
	assert.Equal(t, first.Stats.DuplicateURLs, second.Stats.DuplicateURLs)
	for fp, e := range first.URLRankings {
		e2, ok := second.URLRankings[fp]
		require.True(t, ok)
		assert.Equal(t, e.TabRankings["all"].Ranking, e2.TabRankings["all"].Ranking)
		// first-found survives the second run
		assert.Equal(t, e.FirstFound, e2.FirstFound)
	}
}

func TestLoadAccumulated_MissingIsNil(t *testing.T) {
	acc, err := LoadAccumulated(t.TempDir(), "SEL")
	require.NoError(t, err)
	assert.Nil(t, acc)
}
