package memory

import (
	"context"
	"sync"

	"solana-pool-radar/internal/domain"
	"solana-pool-radar/internal/storage"
)

// ArchiveStore is an in-memory implementation of storage.ArchiveStore.
type ArchiveStore struct {
	mu        sync.RWMutex
	snapshots []domain.PoolSnapshot
	triggered []domain.TriggeredAlert
}

// NewArchiveStore creates a new in-memory archive.
func NewArchiveStore() *ArchiveStore {
	return &ArchiveStore{}
}

// Compile-time interface check.
var _ storage.ArchiveStore = (*ArchiveStore)(nil)

// InsertSnapshots archives one refresh cycle's pool metrics.
func (s *ArchiveStore) InsertSnapshots(_ context.Context, snaps []domain.PoolSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots = append(s.snapshots, snaps...)
	return nil
}

// InsertTriggered archives a triggered alert.
func (s *ArchiveStore) InsertTriggered(_ context.Context, ta *domain.TriggeredAlert) error {
	if ta == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.triggered = append(s.triggered, *ta)
	return nil
}

// Snapshots returns a copy of all archived snapshots.
func (s *ArchiveStore) Snapshots() []domain.PoolSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.PoolSnapshot, len(s.snapshots))
	copy(out, s.snapshots)
	return out
}

// Triggered returns a copy of all archived triggers.
func (s *ArchiveStore) Triggered() []domain.TriggeredAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.TriggeredAlert, len(s.triggered))
	copy(out, s.triggered)
	return out
}
