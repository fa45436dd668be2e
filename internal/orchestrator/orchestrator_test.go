package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"solana-pool-radar/internal/alerting"
	"solana-pool-radar/internal/domain"
	"solana-pool-radar/internal/history"
	"solana-pool-radar/internal/normalize"
	"solana-pool-radar/internal/opportunity"
	"solana-pool-radar/internal/safety"
	"solana-pool-radar/internal/state"
	"solana-pool-radar/internal/storage/memory"
)

const (
	solMint  = "So11111111111111111111111111111111111111112"
	usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

	// Off-curve, like a real program-derived pool account.
	poolAddr = "DErqNYmZvY16yTgWW4RMQeFvdYxvMnXodWJFQkPS2veY"
)

func ptr[T any](v T) *T { return &v }

type fixture struct {
	orch      *Orchestrator
	container *state.Container
	archive   *memory.ArchiveStore
	clock     *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	container := state.New(state.Options{
		Persister: memory.NewAlertStore(),
		History:   history.NewStore(8, 15),
		Triggered: alerting.NewTriggeredLog(50),
		Logger:    zerolog.Nop(),
	})
	archive := memory.NewArchiveStore()
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	f := &fixture{container: container, archive: archive, clock: &clock}
	f.orch = New(Options{
		Normalizer: normalize.New(safety.NewClassifier(10000)),
		Detector:   opportunity.NewDetector(12),
		Monitor:    alerting.NewMonitor(10*time.Minute, container.Triggered()),
		Container:  container,
		Archive:    archive,
		Logger:     zerolog.Nop(),
		Now:        func() time.Time { return *f.clock },
	})
	return f
}

func rawPool(id string, tvl float64) normalize.RawPool {
	return normalize.RawPool{
		ID:        id,
		Address:   poolAddr,
		Name:      "SOL-USDC",
		Protocol:  "dlmm",
		MintX:     solMint,
		MintY:     usdcMint,
		TVL:       ptr(tvl),
		Volume24h: ptr(tvl / 2),
		Apr:       ptr("45.5"),
		Fees24h:   ptr(1000.0),
	}
}

func TestRefresh_EndToEnd(t *testing.T) {
	f := newFixture(t)
	verified := map[string]struct{}{solMint: {}, usdcMint: {}}

	res := f.orch.Refresh(context.Background(), []normalize.RawPool{
		rawPool("p1", 600000), // safe, high score + volume ratio
		rawPool("p2", 50),     // safe via verification, low metrics
	}, verified)

	if res.Stale {
		t.Fatal("first refresh must publish")
	}
	if res.Pools != 2 {
		t.Errorf("expected 2 pools, got %d", res.Pools)
	}

	pools := f.container.Pools()
	if len(pools) != 2 {
		t.Fatalf("container not updated: %d pools", len(pools))
	}
	for _, p := range pools {
		if p.Safety != domain.SafetySafe {
			t.Errorf("pool %s: expected safe, got %s", p.ID, p.Safety)
		}
		if p.Score < 10 || p.Score > 99 {
			t.Errorf("pool %s: score %d out of bounds", p.ID, p.Score)
		}
	}

	if res.Opportunities == 0 {
		t.Error("expected at least one opportunity from the high-TVL pool")
	}
	if got := len(f.container.Opportunities()); got != res.Opportunities {
		t.Errorf("container opportunities %d != result %d", got, res.Opportunities)
	}
}

func TestRefresh_TriggersAlertsAndArchives(t *testing.T) {
	f := newFixture(t)

	if err := f.container.AddAlert(domain.Alert{
		ID:        "a1",
		PoolID:    "p1",
		Metric:    domain.MetricTVL,
		Condition: domain.ConditionAbove,
		Value:     100000,
		Enabled:   true,
	}); err != nil {
		t.Fatalf("AddAlert failed: %v", err)
	}

	res := f.orch.Refresh(context.Background(), []normalize.RawPool{rawPool("p1", 600000)}, nil)
	if res.Triggered != 1 {
		t.Fatalf("expected 1 trigger, got %d", res.Triggered)
	}
	if f.container.Triggered().Len() != 1 {
		t.Errorf("triggered log not updated")
	}

	// Archiving is async; poll briefly.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if len(f.archive.Snapshots()) == 1 && len(f.archive.Triggered()) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("archive not written: %d snapshots, %d triggers",
				len(f.archive.Snapshots()), len(f.archive.Triggered()))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRefresh_CooldownAcrossCycles(t *testing.T) {
	f := newFixture(t)

	if err := f.container.AddAlert(domain.Alert{
		ID:        "a1",
		PoolID:    "p1",
		Metric:    domain.MetricTVL,
		Condition: domain.ConditionAbove,
		Value:     100000,
		Enabled:   true,
	}); err != nil {
		t.Fatalf("AddAlert failed: %v", err)
	}

	raw := []normalize.RawPool{rawPool("p1", 600000)}

	total := 0
	for i := 0; i < 3; i++ {
		total += f.orch.Refresh(context.Background(), raw, nil).Triggered
		*f.clock = f.clock.Add(time.Minute)
	}
	if total != 1 {
		t.Errorf("expected exactly 1 trigger across 3 cycles, got %d", total)
	}

	*f.clock = f.clock.Add(8 * time.Minute) // now at minute 11
	if got := f.orch.Refresh(context.Background(), raw, nil).Triggered; got != 1 {
		t.Errorf("expected second trigger after cool-down, got %d", got)
	}
}

func TestRefresh_MalformedRecordDoesNotAbortCycle(t *testing.T) {
	f := newFixture(t)

	bad := rawPool("", 1000)
	res := f.orch.Refresh(context.Background(), []normalize.RawPool{bad, rawPool("ok", 600000)}, nil)

	if res.Dropped != 1 {
		t.Errorf("expected 1 dropped record, got %d", res.Dropped)
	}
	if res.Pools != 1 {
		t.Errorf("expected surviving pool to publish, got %d", res.Pools)
	}
}
