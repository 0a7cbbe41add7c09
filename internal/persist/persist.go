// Package persist serializes the full snapshot into one named durable
// slot, overwritten wholesale on every mutation and loaded wholesale
// on process start.
package persist

import (
	"context"

	"rms-sync-service/internal/domain"
)

// DefaultSlot matches the storage key the service has always used.
const DefaultSlot = "rms-dynamic-data"

type Adapter interface {
	// Load returns the stored snapshot, or found=false when the slot
	// is empty or unreadable (the caller falls back to seed data).
	Load(ctx context.Context) (snap domain.Snapshot, found bool, err error)
	// Save overwrites the slot with the given snapshot.
	Save(ctx context.Context, snap domain.Snapshot) error
}
