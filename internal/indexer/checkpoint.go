package indexer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Checkpoint records the last slot whose batch fetch wrote to the sink.
// Skipped slots inside a written batch count as processed.
type Checkpoint struct {
	ProgramID         string `json:"program_id,omitempty"`
	LastProcessedSlot uint64 `json:"last_processed_slot"`
	UpdatedAt         string `json:"updated_at"`
}

// Covers reports whether the checkpoint was written for program. Files
// written without a program id are accepted for any program.
func (c Checkpoint) Covers(program string) bool {
	return c.ProgramID == "" || c.ProgramID == program
}

// CheckpointStore keeps one checkpoint file, replaced atomically on save.
// A disabled store loads nothing and saves nothing.
type CheckpointStore struct {
	path    string
	enabled bool
}

func NewCheckpointStore(path string, enabled bool) *CheckpointStore {
	return &CheckpointStore{path: path, enabled: enabled}
}

func (c *CheckpointStore) Load() (Checkpoint, bool, error) {
	if !c.enabled {
		return Checkpoint{}, false, nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Checkpoint{}, false, nil
		}
		return Checkpoint{}, false, fmt.Errorf("read checkpoint %s: %w", c.path, err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, false, fmt.Errorf("parse checkpoint %s: %w", c.path, err)
	}
	return cp, true, nil
}

// Save records slot as the last processed slot for program.
func (c *CheckpointStore) Save(program string, slot uint64) error {
	if !c.enabled {
		return nil
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create checkpoint dir: %w", err)
		}
	}

	data, err := json.Marshal(Checkpoint{
		ProgramID:         program,
		LastProcessedSlot: slot,
		UpdatedAt:         time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint tmp: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("rename checkpoint: %w", err)
	}
	return nil
}
