package clickhouse

import (
	"context"
	"fmt"

	"solana-pool-radar/internal/domain"
	"solana-pool-radar/internal/storage"
)

// ArchiveStore implements storage.ArchiveStore using ClickHouse.
type ArchiveStore struct {
	conn *Conn
}

// NewArchiveStore creates a new ClickHouse-backed archive.
func NewArchiveStore(conn *Conn) *ArchiveStore {
	return &ArchiveStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ArchiveStore = (*ArchiveStore)(nil)

// InsertSnapshots archives one refresh cycle's pool metrics in a
// single batch.
func (s *ArchiveStore) InsertSnapshots(ctx context.Context, snaps []domain.PoolSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO pool_snapshots (
			pool_id, name, protocol, observed_at,
			tvl, volume_24h, apr, fees_24h, safety, score
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare snapshot batch: %w", err)
	}

	for i := range snaps {
		sn := &snaps[i]
		if err := batch.Append(
			sn.PoolID, sn.Name, sn.Protocol, sn.ObservedAt,
			sn.TVL, sn.Volume24h, sn.Apr, sn.Fees24h, string(sn.Safety), int32(sn.Score),
		); err != nil {
			return fmt.Errorf("append snapshot: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send snapshot batch: %w", err)
	}
	return nil
}

// InsertTriggered archives a triggered alert.
func (s *ArchiveStore) InsertTriggered(ctx context.Context, ta *domain.TriggeredAlert) error {
	if ta == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO triggered_alerts (
			alert_id, pool_id, pool_name, metric, condition,
			threshold, current_value, triggered_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := s.conn.Exec(ctx, query,
		ta.Alert.ID, ta.Alert.PoolID, ta.Alert.PoolName,
		string(ta.Alert.Metric), string(ta.Alert.Condition),
		ta.Alert.Value, ta.CurrentValue, ta.TriggeredAt,
	)
	if err != nil {
		return fmt.Errorf("insert triggered alert: %w", err)
	}
	return nil
}
