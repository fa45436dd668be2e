package alerting

import (
	"sync"
	"time"

	"solana-pool-radar/internal/domain"
)

// Monitor evaluates alert rules against the live pool set. A rule that
// triggered within the cool-down window is skipped, so no rule fires
// more than once per window no matter how many cycles run inside it.
type Monitor struct {
	cooldown time.Duration
	log      *TriggeredLog

	// lastFired is the dedup state. It lives here rather than in the
	// capped log so that log eviction never re-arms a rule inside its
	// window.
	mu        sync.Mutex
	lastFired map[string]int64 // alert id -> trigger time, Unix ms
}

// NewMonitor creates a monitor writing into the given triggered log.
func NewMonitor(cooldown time.Duration, log *TriggeredLog) *Monitor {
	return &Monitor{
		cooldown:  cooldown,
		log:       log,
		lastFired: make(map[string]int64),
	}
}

// Evaluate runs one evaluation cycle at the given instant and returns
// the alerts triggered by this cycle. Triggers are also appended to
// the bounded log. Rules whose target pool is absent from the snapshot
// are skipped silently, not deleted: the pool may rotate back in.
func (m *Monitor) Evaluate(now time.Time, pools []domain.Pool, alerts []domain.Alert) []domain.TriggeredAlert {
	byID := make(map[string]*domain.Pool, len(pools))
	for i := range pools {
		byID[pools[i].ID] = &pools[i]
	}

	nowMs := now.UnixMilli()
	cooldownMs := m.cooldown.Milliseconds()

	m.mu.Lock()
	defer m.mu.Unlock()

	var fired []domain.TriggeredAlert
	for _, a := range alerts {
		if !a.Enabled {
			continue
		}

		if last, ok := m.lastFired[a.ID]; ok && nowMs-last < cooldownMs {
			continue
		}

		pool, ok := byID[a.PoolID]
		if !ok {
			continue
		}

		current := extractMetric(pool, a.Metric)
		if !conditionHolds(a.Condition, current, a.Value) {
			continue
		}

		ta := domain.TriggeredAlert{
			Alert:        a,
			TriggeredAt:  nowMs,
			CurrentValue: current,
			Read:         false,
		}
		m.lastFired[a.ID] = nowMs
		m.log.Append(ta)
		fired = append(fired, ta)
	}
	return fired
}

// extractMetric reads the watched metric off the pool. APR is parsed
// from its textual form; unknown metrics read as 0.
func extractMetric(p *domain.Pool, metric domain.AlertMetric) float64 {
	switch metric {
	case domain.MetricAPR:
		return p.AprValue()
	case domain.MetricTVL:
		return p.TVL
	case domain.MetricVolume:
		return p.Volume24h
	case domain.MetricScore:
		return float64(p.Score)
	case domain.MetricFees:
		return p.Fees24h
	default:
		return 0
	}
}

func conditionHolds(cond domain.AlertCondition, current, threshold float64) bool {
	switch cond {
	case domain.ConditionAbove:
		return current > threshold
	case domain.ConditionBelow:
		return current < threshold
	default:
		return false
	}
}
