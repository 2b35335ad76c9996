package ranking

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// TabSnapshot is the persisted form of one (city, tab) collection run,
// written under ranking_urls/.
type TabSnapshot struct {
	City             string      `json:"city"`
	CityCode         string      `json:"city_code"`
	CollectionMethod string      `json:"collection_method"`
	CollectedAt      string      `json:"collected_at"`
	TotalURLs        int         `json:"total_urls"`
	MaxPage          int         `json:"max_page"`
	URLsWithRanking  []RankedURL `json:"urls_with_ranking"`
}

// SaveTabRun writes the tab's current run to
// {dir}/{city_code}_{tab}_{YYYYMMDD_HHMMSS}.json.
func (l *Ledger) SaveTabRun(dir, tab, collectionMethod string) (string, error) {
	run, ok := l.tabs[tab]
	if !ok {
		return "", fmt.Errorf("no run started for tab %q", tab)
	}

	snap := TabSnapshot{
		City:             l.cityName,
		CityCode:         l.cityCode,
		CollectionMethod: collectionMethod,
		CollectedAt:      l.now().UTC().Format(time.RFC3339),
		TotalURLs:        len(run.order),
		MaxPage:          run.maxPage,
		URLsWithRanking:  l.TabURLs(tab),
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create ranking dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s_%s.json", l.cityCode, tab, l.now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	if err := writeJSON(path, snap); err != nil {
		return "", err
	}
	return path, nil
}

// AccumulatedPath returns the accumulated ranking file location for a city.
func AccumulatedPath(dir, cityCode string) string {
	return filepath.Join(dir, cityCode+"_accumulated_rankings.json")
}

// LoadAccumulated reads a city's accumulated ranking map, or returns nil
// when none exists yet.
func LoadAccumulated(dir, cityCode string) (*Accumulated, error) {
	data, err := os.ReadFile(AccumulatedPath(dir, cityCode))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read accumulated rankings: %w", err)
	}
	var acc Accumulated
	if err := json.Unmarshal(data, &acc); err != nil {
		return nil, fmt.Errorf("parse accumulated rankings: %w", err)
	}
	return &acc, nil
}

// SaveAccumulated snapshots the ledger and writes the accumulated map to
// {dir}/{city_code}_accumulated_rankings.json atomically.
func (l *Ledger) SaveAccumulated(dir string) error {
	snap := l.Snapshot()
	sort.Strings(snap.Stats.TabsProcessed)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ranking data dir: %w", err)
	}
	return writeJSON(AccumulatedPath(dir, l.cityCode), snap)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
