package history

import (
	"fmt"
	"testing"

	"solana-pool-radar/internal/domain"
)

func tx(poolID string, n int) domain.PoolTransaction {
	return domain.PoolTransaction{
		Signature: fmt.Sprintf("%s-sig-%02d", poolID, n),
		PoolID:    poolID,
		Kind:      domain.TxSwapBuy,
		AmountUSD: float64(n),
		BlockTime: int64(n),
	}
}

func TestRecord_TruncatesToTxCap(t *testing.T) {
	s := NewStore(8, 15)

	for i := 0; i < 16; i++ {
		s.Record(tx("pool-1", i))
	}

	list := s.History("pool-1")
	if len(list) != 15 {
		t.Fatalf("expected 15 transactions, got %d", len(list))
	}
	// Newest first: the 16th write leads, the very first was evicted.
	if list[0].Signature != "pool-1-sig-15" {
		t.Errorf("expected newest at front, got %s", list[0].Signature)
	}
	if list[14].Signature != "pool-1-sig-01" {
		t.Errorf("expected oldest surviving sig-01 last, got %s", list[14].Signature)
	}
}

func TestRecord_NinthPoolEvictsOldest(t *testing.T) {
	s := NewStore(8, 15)

	for i := 0; i < 8; i++ {
		s.Record(tx(fmt.Sprintf("pool-%d", i), 0))
	}
	if s.TrackedPools() != 8 {
		t.Fatalf("expected 8 tracked pools, got %d", s.TrackedPools())
	}

	s.Record(tx("pool-8", 0))
	if s.TrackedPools() != 8 {
		t.Fatalf("expected map to return to 8 after eviction, got %d", s.TrackedPools())
	}
	// Oldest non-active pool was evicted; the new pool is tracked.
	if len(s.History("pool-0")) != 0 {
		t.Error("expected pool-0 to be evicted")
	}
	if len(s.History("pool-8")) != 1 {
		t.Error("expected pool-8 to be tracked")
	}
}

func TestRecord_EvictionSkipsActivePool(t *testing.T) {
	s := NewStore(8, 15)

	for i := 0; i < 8; i++ {
		s.Record(tx(fmt.Sprintf("pool-%d", i), 0))
	}
	s.SetActive("pool-0")

	s.Record(tx("pool-8", 0))
	if len(s.History("pool-0")) == 0 {
		t.Error("active pool must not be evicted")
	}
	// pool-1 was the oldest evictable entry.
	if len(s.History("pool-1")) != 0 {
		t.Error("expected pool-1 to be evicted instead of active pool-0")
	}
	if s.TrackedPools() != 8 {
		t.Errorf("expected 8 tracked pools, got %d", s.TrackedPools())
	}
}

func TestRecord_WriteToExistingPoolRefreshesOrder(t *testing.T) {
	s := NewStore(2, 15)

	s.Record(tx("a", 0))
	s.Record(tx("b", 0))
	s.Record(tx("a", 1)) // a is now the most recently written

	s.Record(tx("c", 0))
	// b was oldest, so b goes.
	if len(s.History("b")) != 0 {
		t.Error("expected b to be evicted")
	}
	if len(s.History("a")) != 2 {
		t.Errorf("expected a to survive with 2 txs, got %d", len(s.History("a")))
	}
}

func TestSetActive_SwitchEvictsPreviousActive(t *testing.T) {
	s := NewStore(8, 15)

	s.Record(tx("a", 0))
	s.Record(tx("b", 0))

	s.SetActive("a")
	s.SetActive("b")
	if len(s.History("a")) != 0 {
		t.Error("switching detail view must evict the previous pool's history")
	}
	if len(s.History("b")) != 1 {
		t.Error("new active pool's history must survive")
	}
}

func TestCollapse_EvictsActiveImmediately(t *testing.T) {
	s := NewStore(8, 15)

	s.Record(tx("a", 0))
	s.SetActive("a")
	s.Collapse()

	if s.Active() != "" {
		t.Errorf("expected no active pool, got %q", s.Active())
	}
	if len(s.History("a")) != 0 {
		t.Error("collapse must evict the active pool's history immediately")
	}
}

func TestEviction_MayStayAboveCapWhenOnlyProtectedRemain(t *testing.T) {
	s := NewStore(1, 15)

	s.Record(tx("a", 0))
	s.SetActive("a")

	// Writing b cannot evict a (active) or b (just written).
	s.Record(tx("b", 0))
	if s.TrackedPools() != 2 {
		t.Fatalf("expected 2 tracked pools while active id is protected, got %d", s.TrackedPools())
	}

	// Once the active pool changes, the bound is restored.
	s.Collapse()
	if s.TrackedPools() != 1 {
		t.Errorf("expected 1 tracked pool after collapse, got %d", s.TrackedPools())
	}
}

func TestRecord_IgnoresEmptyPoolID(t *testing.T) {
	s := NewStore(8, 15)
	s.Record(domain.PoolTransaction{Signature: "x"})
	if s.TrackedPools() != 0 {
		t.Error("empty pool id must not be tracked")
	}
}
