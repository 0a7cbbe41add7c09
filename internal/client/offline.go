package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"rms-sync-service/internal/domain"
)

// queuedAction is one operation recorded while disconnected. Only
// order placement is critical enough to queue; everything else is
// dropped with a warning.
type queuedAction struct {
	Event      string          `json:"event"`
	Actor      *domain.User    `json:"actor,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
}

// offlineQueue is a durable FIFO backed by one JSON file, written
// atomically so a crash mid-save never corrupts it.
type offlineQueue struct {
	mu   sync.Mutex
	path string
}

func newOfflineQueue(path string) *offlineQueue {
	return &offlineQueue{path: path}
}

func (q *offlineQueue) append(action queuedAction) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	actions, err := q.loadLocked()
	if err != nil {
		return err
	}
	actions = append(actions, action)
	return q.saveLocked(actions)
}

// drain returns all queued actions and clears the file. The caller
// replays them in order; a replay failure re-queues the remainder.
func (q *offlineQueue) drain() ([]queuedAction, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	actions, err := q.loadLocked()
	if err != nil {
		return nil, err
	}
	if len(actions) == 0 {
		return nil, nil
	}
	if err := q.saveLocked(nil); err != nil {
		return nil, err
	}
	return actions, nil
}

func (q *offlineQueue) requeue(actions []queuedAction) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	existing, err := q.loadLocked()
	if err != nil {
		return err
	}
	return q.saveLocked(append(actions, existing...))
}

func (q *offlineQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	actions, err := q.loadLocked()
	if err != nil {
		return 0
	}
	return len(actions)
}

func (q *offlineQueue) loadLocked() ([]queuedAction, error) {
	data, err := os.ReadFile(q.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var actions []queuedAction
	if err := json.Unmarshal(data, &actions); err != nil {
		// Corrupt queue file; better to lose the queue than wedge the
		// client forever.
		return nil, nil
	}
	return actions, nil
}

func (q *offlineQueue) saveLocked(actions []queuedAction) error {
	if actions == nil {
		actions = []queuedAction{}
	}
	data, err := json.Marshal(actions)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(q.path), 0o755); err != nil {
		return err
	}
	tmp := q.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, q.path)
}
