package fingerprint

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"sjsage522/travelworker/logger"
)

// Index answers "have we seen this URL for this city?" in O(1). State lives
// in an in-memory set per city, rebuilt lazily from an append-only log of
// "timestamp | url" lines under dir.
type Index struct {
	dir              string
	allowedQueryKeys []string

	mu     sync.Mutex
	cities map[string]map[string]bool // city code -> fingerprint set
	logs   map[string]*os.File
}

// NewIndex creates an Index rooted at dir. allowedQueryKeys is the source's
// query allow-list used for canonicalisation.
func NewIndex(dir string, allowedQueryKeys []string) *Index {
	return &Index{
		dir:              dir,
		allowedQueryKeys: allowedQueryKeys,
		cities:           make(map[string]map[string]bool),
		logs:             make(map[string]*os.File),
	}
}

// Fingerprint computes the fingerprint of rawURL under this index's
// canonicalisation rules.
func (ix *Index) Fingerprint(rawURL string) string {
	return Fingerprint(rawURL, ix.allowedQueryKeys)
}

// Seen reports whether the fingerprint was recorded for cityCode before.
func (ix *Index) Seen(cityCode, fp string) (bool, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	set, err := ix.loadLocked(cityCode)
	if err != nil {
		return false, err
	}
	return set[fp], nil
}

// Record computes the fingerprint of rawURL, appends it to the city's log,
// and updates the in-memory set. Recording an already-seen URL is a no-op.
func (ix *Index) Record(cityCode, rawURL string) (string, error) {
	fp := ix.Fingerprint(rawURL)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	set, err := ix.loadLocked(cityCode)
	if err != nil {
		return fp, err
	}
	if set[fp] {
		return fp, nil
	}

	f, err := ix.logFileLocked(cityCode)
	if err != nil {
		return fp, err
	}
	line := fmt.Sprintf("%s | %s\n", time.Now().UTC().Format(time.RFC3339), rawURL)
	if _, err := f.WriteString(line); err != nil {
		return fp, fmt.Errorf("append url log for %s: %w", cityCode, err)
	}

	set[fp] = true
	return fp, nil
}

// Close closes any open log files.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	var firstErr error
	for city, f := range ix.logs {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(ix.logs, city)
	}
	return firstErr
}

func (ix *Index) logPath(cityCode string) string {
	return filepath.Join(ix.dir, cityCode+"_url_log.txt")
}

func (ix *Index) logFileLocked(cityCode string) (*os.File, error) {
	if f, ok := ix.logs[cityCode]; ok {
		return f, nil
	}
	if err := os.MkdirAll(ix.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create url log dir: %w", err)
	}
	f, err := os.OpenFile(ix.logPath(cityCode), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open url log for %s: %w", cityCode, err)
	}
	ix.logs[cityCode] = f
	return f, nil
}

// loadLocked lazily replays the city's log into memory. A corrupt tail does
// not lose the parseable prefix; the truncation is surfaced in the log.
func (ix *Index) loadLocked(cityCode string) (map[string]bool, error) {
	if set, ok := ix.cities[cityCode]; ok {
		return set, nil
	}

	set := make(map[string]bool)
	ix.cities[cityCode] = set

	f, err := os.Open(ix.logPath(cityCode))
	if err != nil {
		if os.IsNotExist(err) {
			return set, nil
		}
		return nil, fmt.Errorf("open url log for %s: %w", cityCode, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		_, rawURL, ok := strings.Cut(line, " | ")
		if !ok {
			logger.Warn("url log %s truncated at line %d, keeping %d parsed entries",
				ix.logPath(cityCode), lineNo, len(set))
			break
		}
		set[ix.Fingerprint(strings.TrimSpace(rawURL))] = true
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("url log %s unreadable after line %d: %v", ix.logPath(cityCode), lineNo, err)
	}

	return set, nil
}
