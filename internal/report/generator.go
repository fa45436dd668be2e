package report

import (
	"time"

	"solana-pool-radar/internal/domain"
)

// Generator produces reports from published refresh state.
type Generator struct {
	now func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a report generator.
func NewGenerator() *Generator {
	return &Generator{now: func() time.Time { return time.Now().UTC() }}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds a report from the published pool set, the ranked
// opportunity list and the triggered-alert history. Input ordering is
// preserved: opportunities arrive already ranked, triggers newest
// first.
func (g *Generator) Generate(pools []domain.Pool, opps []domain.Opportunity, triggered []domain.TriggeredAlert) *Report {
	r := &Report{
		GeneratedAt:   g.now(),
		Opportunities: make([]OpportunityRow, 0, len(opps)),
		Triggered:     make([]TriggeredRow, 0, len(triggered)),
	}

	r.Summary.TotalPools = len(pools)
	for i := range pools {
		p := &pools[i]
		r.Summary.TotalTVL += p.TVL
		switch p.Safety {
		case domain.SafetySafe:
			r.Summary.SafePools++
		case domain.SafetyWarning:
			r.Summary.WarningPools++
		case domain.SafetyDanger:
			r.Summary.DangerPools++
		}
	}

	for i := range opps {
		o := &opps[i]
		r.Opportunities = append(r.Opportunities, OpportunityRow{
			PoolID:   o.Pool.ID,
			Name:     o.Pool.Name,
			Protocol: o.Pool.Protocol,
			Type:     string(o.Type),
			TVL:      o.Pool.TVL,
			Volume:   o.Pool.Volume24h,
			APR:      o.Pool.AprValue(),
			Score:    o.Pool.Score,
			Reason:   o.Reason,
		})
	}

	for i := range triggered {
		ta := &triggered[i]
		r.Triggered = append(r.Triggered, TriggeredRow{
			PoolID:      ta.Alert.PoolID,
			Metric:      string(ta.Alert.Metric),
			Condition:   string(ta.Alert.Condition),
			Threshold:   ta.Alert.Value,
			Observed:    ta.CurrentValue,
			TriggeredAt: ta.TriggeredAt,
		})
	}

	return r
}
