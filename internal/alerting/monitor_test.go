package alerting

import (
	"fmt"
	"testing"
	"time"

	"solana-pool-radar/internal/domain"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testPool() domain.Pool {
	return domain.Pool{
		ID:        "pool-1",
		Name:      "SOL-USDC",
		TVL:       250000,
		Volume24h: 80000,
		Apr:       "45.5",
		Fees24h:   1200,
		Score:     72,
	}
}

func aprAlert(id string, threshold float64) domain.Alert {
	return domain.Alert{
		ID:        id,
		PoolID:    "pool-1",
		PoolName:  "SOL-USDC",
		Metric:    domain.MetricAPR,
		Condition: domain.ConditionAbove,
		Value:     threshold,
		Enabled:   true,
		CreatedAt: t0.UnixMilli(),
	}
}

func TestEvaluate_TriggersAboveThreshold(t *testing.T) {
	log := NewTriggeredLog(50)
	m := NewMonitor(10*time.Minute, log)

	fired := m.Evaluate(t0, []domain.Pool{testPool()}, []domain.Alert{aprAlert("a1", 40)})
	if len(fired) != 1 {
		t.Fatalf("expected 1 trigger, got %d", len(fired))
	}
	if fired[0].CurrentValue != 45.5 {
		t.Errorf("expected current value 45.5, got %f", fired[0].CurrentValue)
	}
	if fired[0].Read {
		t.Error("trigger must start unread")
	}
	if fired[0].TriggeredAt != t0.UnixMilli() {
		t.Errorf("unexpected TriggeredAt %d", fired[0].TriggeredAt)
	}
	if log.Len() != 1 {
		t.Errorf("expected 1 log entry, got %d", log.Len())
	}
}

func TestEvaluate_CooldownDedup(t *testing.T) {
	log := NewTriggeredLog(50)
	m := NewMonitor(10*time.Minute, log)

	pools := []domain.Pool{testPool()}
	alerts := []domain.Alert{aprAlert("a1", 40)}

	// Three cycles spaced 1 minute apart: exactly one trigger.
	total := 0
	for i := 0; i < 3; i++ {
		total += len(m.Evaluate(t0.Add(time.Duration(i)*time.Minute), pools, alerts))
	}
	if total != 1 {
		t.Fatalf("expected exactly 1 trigger inside the window, got %d", total)
	}

	// A fourth cycle at minute 11 is outside the window: second trigger.
	fired := m.Evaluate(t0.Add(11*time.Minute), pools, alerts)
	if len(fired) != 1 {
		t.Fatalf("expected a second trigger at minute 11, got %d", len(fired))
	}
	if log.Len() != 2 {
		t.Errorf("expected 2 log entries, got %d", log.Len())
	}
}

func TestEvaluate_CooldownSurvivesLogEviction(t *testing.T) {
	// A tiny log: the first rule's entry is evicted as soon as the
	// second fires. The cool-down must hold regardless.
	log := NewTriggeredLog(1)
	m := NewMonitor(10*time.Minute, log)

	pools := []domain.Pool{testPool()}
	alerts := []domain.Alert{aprAlert("a1", 40), aprAlert("a2", 41)}

	if fired := m.Evaluate(t0, pools, alerts); len(fired) != 2 {
		t.Fatalf("expected both rules to fire, got %d", len(fired))
	}
	if log.Len() != 1 {
		t.Fatalf("expected log capped at 1 entry, got %d", log.Len())
	}

	// a1 is no longer in the log, but it is still inside its window.
	if fired := m.Evaluate(t0.Add(time.Minute), pools, alerts); len(fired) != 0 {
		t.Errorf("evicted rule must not re-fire inside the window, got %d", len(fired))
	}

	if fired := m.Evaluate(t0.Add(11*time.Minute), pools, alerts); len(fired) != 2 {
		t.Errorf("expected both rules to fire again after the window, got %d", len(fired))
	}
}

func TestEvaluate_SkipsDisabled(t *testing.T) {
	log := NewTriggeredLog(50)
	m := NewMonitor(10*time.Minute, log)

	a := aprAlert("a1", 40)
	a.Enabled = false

	if fired := m.Evaluate(t0, []domain.Pool{testPool()}, []domain.Alert{a}); len(fired) != 0 {
		t.Errorf("disabled rule must not fire, got %d triggers", len(fired))
	}
}

func TestEvaluate_MissingPoolSkippedSilently(t *testing.T) {
	log := NewTriggeredLog(50)
	m := NewMonitor(10*time.Minute, log)

	a := aprAlert("a1", 40)
	a.PoolID = "rotated-out"

	if fired := m.Evaluate(t0, []domain.Pool{testPool()}, []domain.Alert{a}); len(fired) != 0 {
		t.Fatalf("missing pool must be skipped, got %d triggers", len(fired))
	}

	// Pool reappears: the rule resumes evaluating.
	back := testPool()
	back.ID = "rotated-out"
	if fired := m.Evaluate(t0.Add(time.Minute), []domain.Pool{back}, []domain.Alert{a}); len(fired) != 1 {
		t.Errorf("expected rule to resume once pool reappears")
	}
}

func TestEvaluate_Conditions(t *testing.T) {
	cases := []struct {
		name      string
		metric    domain.AlertMetric
		condition domain.AlertCondition
		value     float64
		fires     bool
		current   float64
	}{
		{"tvl above fires", domain.MetricTVL, domain.ConditionAbove, 200000, true, 250000},
		{"tvl above equal does not fire", domain.MetricTVL, domain.ConditionAbove, 250000, false, 0},
		{"tvl below fires", domain.MetricTVL, domain.ConditionBelow, 300000, true, 250000},
		{"volume above", domain.MetricVolume, domain.ConditionAbove, 50000, true, 80000},
		{"score below", domain.MetricScore, domain.ConditionBelow, 80, true, 72},
		{"fees above does not fire", domain.MetricFees, domain.ConditionAbove, 2000, false, 0},
		{"apr below does not fire", domain.MetricAPR, domain.ConditionBelow, 40, false, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			log := NewTriggeredLog(50)
			m := NewMonitor(10*time.Minute, log)

			a := aprAlert("a1", tc.value)
			a.Metric = tc.metric
			a.Condition = tc.condition

			fired := m.Evaluate(t0, []domain.Pool{testPool()}, []domain.Alert{a})
			if (len(fired) == 1) != tc.fires {
				t.Fatalf("fires = %v, want %v", len(fired) == 1, tc.fires)
			}
			if tc.fires && fired[0].CurrentValue != tc.current {
				t.Errorf("current value %f, want %f", fired[0].CurrentValue, tc.current)
			}
		})
	}
}

func TestTriggeredLog_CapEvictsOldest(t *testing.T) {
	log := NewTriggeredLog(50)

	for i := 0; i < 55; i++ {
		log.Append(domain.TriggeredAlert{
			Alert:       domain.Alert{ID: fmt.Sprintf("a-%02d", i)},
			TriggeredAt: int64(i),
		})
	}

	entries := log.All()
	if len(entries) != 50 {
		t.Fatalf("expected 50 entries, got %d", len(entries))
	}
	// Newest first; the 5 oldest were evicted.
	if entries[0].Alert.ID != "a-54" {
		t.Errorf("expected newest a-54 first, got %s", entries[0].Alert.ID)
	}
	if entries[49].Alert.ID != "a-05" {
		t.Errorf("expected oldest surviving a-05 last, got %s", entries[49].Alert.ID)
	}
}

func TestTriggeredLog_MarkAllReadAndClear(t *testing.T) {
	log := NewTriggeredLog(10)
	log.Append(domain.TriggeredAlert{Alert: domain.Alert{ID: "a1"}})
	log.Append(domain.TriggeredAlert{Alert: domain.Alert{ID: "a2"}})

	log.MarkAllRead()
	for _, e := range log.All() {
		if !e.Read {
			t.Errorf("entry %s not marked read", e.Alert.ID)
		}
	}

	log.Clear()
	if log.Len() != 0 {
		t.Errorf("expected empty log after Clear, got %d", log.Len())
	}
}
