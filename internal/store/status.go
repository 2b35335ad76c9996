package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	errs "sjsage522/travelworker/pkg/errors"
)

// StageStatus is the progress marker of one pipeline stage.
type StageStatus string

const (
	StagePending StageStatus = "pending"
	StageSuccess StageStatus = "success"
	StageFailed  StageStatus = "failed"
)

// Stage is one half of a session: URL collection or detail extraction.
type Stage struct {
	Status    StageStatus    `json:"status"`
	Timestamp string         `json:"timestamp,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// SessionStatus is the operator-facing resume file for one
// (source, city, tab) ingestion session.
type SessionStatus struct {
	City        string `json:"city"`
	Tab         string `json:"tab"`
	Platform    string `json:"platform"`
	Stage1      Stage  `json:"stage1"`
	Stage2      Stage  `json:"stage2"`
	LastUpdated string `json:"last_updated"`

	now func() time.Time
}

// NewSessionStatus starts a session with both stages pending.
func NewSessionStatus(sourceName, cityName, tab string) *SessionStatus {
	return &SessionStatus{
		City:     cityName,
		Tab:      tab,
		Platform: sourceName,
		Stage1:   Stage{Status: StagePending},
		Stage2:   Stage{Status: StagePending},
		now:      time.Now,
	}
}

// StatusPath is the session file location for one (source, city, tab).
func StatusPath(dir, sourceName, cityName, tab string) string {
	name := fmt.Sprintf("%s_status_%s_%s.json",
		sourceName, strings.ReplaceAll(cityName, " ", "_"), tab)
	return filepath.Join(dir, name)
}

// LoadSessionStatus reads a previous session file; (nil, nil) when none
// exists yet.
func LoadSessionStatus(dir, sourceName, cityName, tab string) (*SessionStatus, error) {
	raw, err := os.ReadFile(StatusPath(dir, sourceName, cityName, tab))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewStorage(sourceName, "read_status", err)
	}
	var st SessionStatus
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, errs.NewStorage(sourceName, "parse_status", err)
	}
	st.now = time.Now
	return &st, nil
}

// MarkStage1 records the collection stage outcome.
func (st *SessionStatus) MarkStage1(status StageStatus, data map[string]any) {
	st.Stage1 = Stage{Status: status, Timestamp: st.stamp(), Data: data}
}

// MarkStage2 records the extraction stage outcome.
func (st *SessionStatus) MarkStage2(status StageStatus, data map[string]any) {
	st.Stage2 = Stage{Status: status, Timestamp: st.stamp(), Data: data}
}

func (st *SessionStatus) stamp() string {
	if st.now == nil {
		st.now = time.Now
	}
	return st.now().UTC().Format(time.RFC3339)
}

// Save writes the session file atomically.
func (st *SessionStatus) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.NewStorage(st.Platform, "mkdir_status", err)
	}
	st.LastUpdated = st.stamp()

	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return errs.NewStorage(st.Platform, "encode_status", err)
	}
	path := StatusPath(dir, st.Platform, st.City, st.Tab)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return errs.NewStorage(st.Platform, "write_status", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errs.NewStorage(st.Platform, "write_status", err)
	}
	return nil
}
