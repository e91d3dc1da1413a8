package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"InsiderWatch/internal/model"
)

// Snapshot is the latest enrichment output as written to disk.
type Snapshot struct {
	UpdatedAt time.Time            `json:"updated_at"`
	AsOf      model.Date           `json:"as_of"`
	Reports   []model.TickerReport `json:"reports"`
}

// LoadSnapshot reads a snapshot file. Returns an empty snapshot if the file
// doesn't exist. Event types in older files may use either naming scheme.
func LoadSnapshot(filePath string) (*Snapshot, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Snapshot{Reports: []model.TickerReport{}}, nil
		}
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", filePath, err)
	}
	if snap.Reports == nil {
		snap.Reports = []model.TickerReport{}
	}
	return &snap, nil
}

// SaveSnapshot writes the snapshot as indented JSON.
func SaveSnapshot(filePath string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0o644)
}
