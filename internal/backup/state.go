package backup

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// RunResult is the persisted outcome of one backup run. It is written to a
// state file in the backup directory so "status" can report the last run
// without any other bookkeeping.
type RunResult struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Phase      Phase     `json:"phase"`               // "done" or "failed"
	FailedIn   Phase     `json:"failed_in,omitempty"` // phase the failure happened in
	Archive    string    `json:"archive,omitempty"`
	Target     string    `json:"target,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// StateManager persists the last run result as a JSON file.
type StateManager struct {
	path string
	mu   sync.Mutex
}

// NewStateManager creates a state manager storing state under dir.
func NewStateManager(dir string) *StateManager {
	return &StateManager{path: filepath.Join(dir, StateFileName)}
}

// Record atomically replaces the persisted state with result. The write
// goes through a temp file and rename so a crash mid-write cannot leave a
// truncated state file behind.
func (s *StateManager) Record(result *RunResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return NewError(ErrIO, "failed to marshal run state", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, PermBackupDir); err != nil {
		return NewError(ErrIO, "failed to create state directory", err)
	}

	tmp, err := os.CreateTemp(dir, StateFileName+".tmp-*")
	if err != nil {
		return NewError(ErrIO, "failed to create temporary state file", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := tmp.Chmod(PermBackupFile); err != nil {
		return NewError(ErrIO, "failed to set state file permissions", err)
	}
	if _, err := tmp.Write(data); err != nil {
		return NewError(ErrIO, "failed to write state file", err)
	}
	if err := tmp.Sync(); err != nil {
		return NewError(ErrIO, "failed to sync state file", err)
	}
	if err := tmp.Close(); err != nil {
		return NewError(ErrIO, "failed to close state file", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return NewError(ErrIO, "failed to replace state file", err)
	}

	success = true
	return nil
}

// Last returns the most recently recorded run result, or nil when no run
// has been recorded yet.
func (s *StateManager) Last() (*RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, NewError(ErrIO, "failed to read state file", err)
	}

	result := &RunResult{}
	if err := json.Unmarshal(data, result); err != nil {
		return nil, NewError(ErrIO, "failed to parse state file", err)
	}
	return result, nil
}
