package state

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Manager persists every store operation as one load→mutate→save cycle.
// It serialises callers within a process; one process per output directory
// is the caller's responsibility.
type Manager struct {
	path    string
	project Project
	now     func() time.Time

	mu sync.Mutex
}

func NewManager(path string, project Project) *Manager {
	return &Manager{
		path:    path,
		project: project,
		now:     time.Now,
	}
}

// SetClock replaces the time source, for tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Manager) Path() string {
	return m.path
}

// Load returns the current store. A corrupt document is moved aside and
// replaced by a fresh store.
func (m *Manager) Load() (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load()
}

func (m *Manager) load() (*Store, error) {
	store, err := Load(m.path, m.project, m.now())
	if err == nil {
		return store, nil
	}
	if !IsCorrupt(err) {
		return nil, err
	}

	backup := fmt.Sprintf("%s.corrupt-%s", m.path, m.now().UTC().Format("20060102T150405Z"))
	if renameErr := os.Rename(m.path, backup); renameErr != nil {
		slog.Warn("state.corrupt", "path", m.path, "error", err, "backup_error", renameErr)
	} else {
		slog.Warn("state.corrupt", "path", m.path, "error", err, "backup", backup)
	}
	return NewStore(m.project, m.now()), nil
}

func (m *Manager) update(fn func(*Store) error) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	store, err := m.load()
	if err != nil {
		return nil, err
	}
	if err := fn(store); err != nil {
		return nil, err
	}
	if err := store.Save(m.path); err != nil {
		return nil, err
	}
	return store, nil
}

// Sync reconciles seeds into the store and always persists.
func (m *Manager) Sync(seeds []Seed) (SyncResult, error) {
	var result SyncResult
	_, err := m.update(func(s *Store) error {
		result = s.Sync(seeds)
		return nil
	})
	if err != nil {
		return SyncResult{}, err
	}
	slog.Info("state.sync", "added", len(result.Added), "vanished", len(result.Vanished), "total", result.Total)
	return result, nil
}

func (m *Manager) NextBatch(size int) ([]Record, error) {
	store, err := m.Load()
	if err != nil {
		return nil, err
	}
	return store.NextBatch(size), nil
}

func (m *Manager) Claim(id string) (Record, error) {
	var record Record
	_, err := m.update(func(s *Store) error {
		var err error
		record, err = s.Claim(id, m.now())
		return err
	})
	if err != nil {
		return Record{}, err
	}
	slog.Debug("state.claim", "endpoint", id)
	return record, nil
}

func (m *Manager) Complete(id, docFile string) (Record, error) {
	var record Record
	_, err := m.update(func(s *Store) error {
		var err error
		record, err = s.Complete(id, docFile, m.now())
		return err
	})
	if err != nil {
		return Record{}, err
	}
	slog.Debug("state.complete", "endpoint", id, "doc", docFile)
	return record, nil
}

func (m *Manager) Fail(id, message string) (Record, error) {
	var record Record
	_, err := m.update(func(s *Store) error {
		var err error
		record, err = s.Fail(id, message)
		return err
	})
	if err != nil {
		return Record{}, err
	}
	slog.Debug("state.fail", "endpoint", id, "retry_count", record.RetryCount, "error", message)
	return record, nil
}

func (m *Manager) ResetFailed() (int, error) {
	reset := 0
	_, err := m.update(func(s *Store) error {
		reset = s.ResetFailed()
		return nil
	})
	return reset, err
}

func (m *Manager) ResetInProgress() (int, error) {
	reset := 0
	_, err := m.update(func(s *Store) error {
		reset = s.ResetInProgress()
		return nil
	})
	return reset, err
}

func (m *Manager) Summary() (Summary, error) {
	store, err := m.Load()
	if err != nil {
		return Summary{}, err
	}
	return store.Summary(), nil
}
