package domain

// PoolSnapshot is one archived row of pool metrics, written per pool
// per refresh cycle. Archive rows are append-only.
type PoolSnapshot struct {
	PoolID     string
	Name       string
	Protocol   string
	ObservedAt int64 // Unix timestamp in milliseconds
	TVL        float64
	Volume24h  float64
	Apr        float64
	Fees24h    float64
	Safety     Safety
	Score      int
}

// SnapshotOf captures a pool's metrics at the given instant.
func SnapshotOf(p *Pool, observedAt int64) PoolSnapshot {
	return PoolSnapshot{
		PoolID:     p.ID,
		Name:       p.Name,
		Protocol:   p.Protocol,
		ObservedAt: observedAt,
		TVL:        p.TVL,
		Volume24h:  p.Volume24h,
		Apr:        p.AprValue(),
		Fees24h:    p.Fees24h,
		Safety:     p.Safety,
		Score:      p.Score,
	}
}
