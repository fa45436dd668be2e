// Package storage defines the persistence collaborator interfaces.
// The core edits its in-memory state first and notifies these stores
// afterwards; no core operation waits on them.
package storage

import (
	"context"

	"solana-pool-radar/internal/domain"
)

// AlertStore holds the user's persistent alert rules.
type AlertStore interface {
	// Insert adds a new rule. Returns ErrDuplicateKey if the id exists.
	Insert(ctx context.Context, a *domain.Alert) error

	// Delete removes a rule. Returns ErrNotFound if the id is unknown.
	Delete(ctx context.Context, id string) error

	// SetEnabled toggles a rule without deleting it.
	SetEnabled(ctx context.Context, id string, enabled bool) error

	// List returns all rules ordered by creation time ascending.
	List(ctx context.Context) ([]*domain.Alert, error)
}

// ArchiveStore is the append-only analytics archive: per-refresh pool
// metric snapshots and triggered alerts.
type ArchiveStore interface {
	// InsertSnapshots archives one refresh cycle's pool metrics.
	InsertSnapshots(ctx context.Context, snaps []domain.PoolSnapshot) error

	// InsertTriggered archives a triggered alert.
	InsertTriggered(ctx context.Context, ta *domain.TriggeredAlert) error
}
