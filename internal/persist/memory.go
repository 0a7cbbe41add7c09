package persist

import (
	"context"
	"sync"

	"rms-sync-service/internal/domain"
)

// Memory is a non-durable adapter for tests.
type Memory struct {
	mu    sync.Mutex
	snap  domain.Snapshot
	saved bool

	// FailNext forces the next Save to return this error, then clears.
	FailNext error
	Saves    int
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Load(ctx context.Context) (domain.Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.saved {
		return domain.Snapshot{}, false, nil
	}
	return m.snap.Clone(), true, nil
}

func (m *Memory) Save(ctx context.Context, snap domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailNext; err != nil {
		m.FailNext = nil
		return err
	}
	m.snap = snap.Clone()
	m.saved = true
	m.Saves++
	return nil
}
