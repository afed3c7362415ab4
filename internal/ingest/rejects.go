package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RejectedRecord is one record that failed to load, with the raw payload
// where it was available.
type RejectedRecord struct {
	Reason string            `json:"reason"`
	Record map[string]string `json:"record,omitempty"`
}

// RejectArtifact is the persisted audit record of why and which records or
// files failed to load. It is a recovery trail, not a retry queue: the
// pipeline never reprocesses rejects automatically.
type RejectArtifact struct {
	FileName      string           `json:"file_name"`
	Reason        string           `json:"reason"`
	RejectedCount int              `json:"rejected_count"`
	Records       []RejectedRecord `json:"records,omitempty"`
	Timestamp     string           `json:"timestamp"`
}

// RejectWriter persists reject artifacts as JSON files under Dir, named
// <stem>_rejected_<timestamp>.json.
type RejectWriter struct {
	Dir string
	Now func() time.Time
}

// Write persists one artifact and returns its path.
func (w *RejectWriter) Write(fileName, reason string, records []RejectedRecord) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create rejects dir: %w", err)
	}

	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	stamp := now().Format("20060102_150405")
	stem := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	base := fmt.Sprintf("%s_rejected_%s", stem, stamp)

	// Same stem in the same second must not overwrite an earlier artifact.
	path := filepath.Join(w.Dir, base+".json")
	for n := 2; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		path = filepath.Join(w.Dir, fmt.Sprintf("%s_%d.json", base, n))
	}

	artifact := RejectArtifact{
		FileName:      fileName,
		Reason:        reason,
		RejectedCount: len(records),
		Records:       records,
		Timestamp:     stamp,
	}
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal reject artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write reject artifact: %w", err)
	}
	return path, nil
}
