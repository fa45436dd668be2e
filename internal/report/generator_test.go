package report

import (
	"strings"
	"testing"
	"time"

	"solana-pool-radar/internal/domain"
)

func testData() ([]domain.Pool, []domain.Opportunity, []domain.TriggeredAlert) {
	pools := []domain.Pool{
		{ID: "p1", Name: "SOL-USDC", Protocol: "dlmm", TVL: 600000, Volume24h: 300000, Apr: "45.5", Safety: domain.SafetySafe, Score: 94},
		{ID: "p2", Name: "BONK-SOL", Protocol: "dlmm", TVL: 5000, Volume24h: 100, Apr: "12", Safety: domain.SafetyWarning, Score: 55},
		{ID: "p3", Name: "RUG-SOL", Protocol: "amm", TVL: 100, Safety: domain.SafetyDanger, Score: 20},
	}
	opps := []domain.Opportunity{
		{Pool: pools[0], Type: domain.OpportunityHot, Reason: "Fee spike in the last hour"},
	}
	triggered := []domain.TriggeredAlert{
		{
			Alert:        domain.Alert{PoolID: "p1", Metric: domain.MetricTVL, Condition: domain.ConditionAbove, Value: 100000},
			TriggeredAt:  1700000000000,
			CurrentValue: 600000,
		},
	}
	return pools, opps, triggered
}

func TestGenerate(t *testing.T) {
	pools, opps, triggered := testData()

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := NewGenerator().WithClock(func() time.Time { return fixed }).Generate(pools, opps, triggered)

	if !r.GeneratedAt.Equal(fixed) {
		t.Errorf("expected fixed clock, got %v", r.GeneratedAt)
	}
	if r.Summary.TotalPools != 3 || r.Summary.SafePools != 1 || r.Summary.WarningPools != 1 || r.Summary.DangerPools != 1 {
		t.Errorf("summary wrong: %+v", r.Summary)
	}
	if r.Summary.TotalTVL != 605100 {
		t.Errorf("expected total TVL 605100, got %v", r.Summary.TotalTVL)
	}

	if len(r.Opportunities) != 1 {
		t.Fatalf("expected 1 opportunity row, got %d", len(r.Opportunities))
	}
	o := r.Opportunities[0]
	if o.Type != "hot" || o.APR != 45.5 || o.Score != 94 {
		t.Errorf("opportunity row wrong: %+v", o)
	}

	if len(r.Triggered) != 1 {
		t.Fatalf("expected 1 triggered row, got %d", len(r.Triggered))
	}
	if r.Triggered[0].Observed != 600000 {
		t.Errorf("triggered row wrong: %+v", r.Triggered[0])
	}
}

func TestRenderMarkdown(t *testing.T) {
	pools, opps, triggered := testData()
	r := NewGenerator().Generate(pools, opps, triggered)

	md := RenderMarkdown(r)

	for _, want := range []string{
		"# Pool Scan Report",
		"## Summary",
		"| Total Pools | 3 |",
		"## Opportunities",
		"| SOL-USDC | dlmm | hot |",
		"Fee spike in the last hour",
		"## Triggered Alerts",
		"| p1 | tvl | above |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderMarkdown_EmptySections(t *testing.T) {
	r := NewGenerator().Generate(nil, nil, nil)

	md := RenderMarkdown(r)
	if !strings.Contains(md, "No opportunities detected.") {
		t.Error("missing empty opportunities placeholder")
	}
	if !strings.Contains(md, "No alerts triggered.") {
		t.Error("missing empty alerts placeholder")
	}
}

func TestRenderCSV(t *testing.T) {
	_, opps, _ := testData()
	opps[0].Reason = `Volume spike, "hot" pool`
	r := NewGenerator().Generate(nil, opps, nil)

	csv := RenderCSV(r.Opportunities)

	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if lines[0] != "pool_id,name,protocol,type,tvl,volume_24h,apr,score,reason" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"Volume spike, ""hot"" pool"`) {
		t.Errorf("reason not escaped: %s", lines[1])
	}
}
