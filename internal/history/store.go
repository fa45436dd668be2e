// Package history keeps recent transactions per pool under fixed
// capacity bounds so memory stays flat under continuous polling.
package history

import (
	"sync"

	"solana-pool-radar/internal/domain"
)

// Store holds bounded per-pool transaction history. Two independent
// eviction policies apply:
//
//   - each pool's list is insert-at-front, truncated to txCap;
//   - the tracked-pool map is capped at poolCap keys. On overflow,
//     keys other than the one just written and other than the active
//     (expanded) pool are evicted oldest-written-first. If only the
//     active pool remains evictable the map may stay above cap until
//     the active pool changes.
//
// The active pool id is explicit store state, not a UI read, so the
// store stays UI-independent and testable in isolation.
type Store struct {
	mu      sync.RWMutex
	txCap   int
	poolCap int

	txs    map[string][]domain.PoolTransaction
	order  []string // pool ids, oldest write first
	active string
}

// NewStore creates a store capped at poolCap tracked pools with txCap
// transactions each.
func NewStore(poolCap, txCap int) *Store {
	return &Store{
		txCap:   txCap,
		poolCap: poolCap,
		txs:     make(map[string][]domain.PoolTransaction),
	}
}

// Record inserts a transaction at the front of its pool's list,
// truncates the list to the transaction cap, and enforces the
// tracked-pool cap.
func (s *Store) Record(tx domain.PoolTransaction) {
	if tx.PoolID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, tracked := s.txs[tx.PoolID]
	list = append([]domain.PoolTransaction{tx}, list...)
	if len(list) > s.txCap {
		list = list[:s.txCap]
	}
	s.txs[tx.PoolID] = list

	if tracked {
		s.touch(tx.PoolID)
	} else {
		s.order = append(s.order, tx.PoolID)
	}

	s.evictOverflow(tx.PoolID)
}

// SetActive marks a pool as expanded for detail view. The previously
// active pool's history is evicted immediately.
func (s *Store) SetActive(poolID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.active
	s.active = poolID
	if prev != "" && prev != poolID {
		s.drop(prev)
	}
}

// Collapse clears the active pool and immediately evicts its history.
func (s *Store) Collapse() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != "" {
		s.drop(s.active)
		s.active = ""
	}
}

// Active returns the currently expanded pool id, empty if none.
func (s *Store) Active() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// History returns a copy of a pool's transactions, newest first.
func (s *Store) History(poolID string) []domain.PoolTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.txs[poolID]
	out := make([]domain.PoolTransaction, len(list))
	copy(out, list)
	return out
}

// TrackedPools returns how many pools currently hold history.
func (s *Store) TrackedPools() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs)
}

// evictOverflow removes evictable pools oldest-first until the tracked
// cap holds. The just-written pool and the active pool are preserved.
func (s *Store) evictOverflow(justWritten string) {
	for len(s.txs) > s.poolCap {
		victim := ""
		for _, id := range s.order {
			if id != justWritten && id != s.active {
				victim = id
				break
			}
		}
		if victim == "" {
			// Only protected pools remain; cap is exceeded until the
			// active pool changes.
			return
		}
		s.drop(victim)
	}
}

// touch moves a pool to the back of the write order.
func (s *Store) touch(poolID string) {
	for i, id := range s.order {
		if id == poolID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			s.order = append(s.order, poolID)
			return
		}
	}
}

// drop removes a pool's history and order entry. Caller holds the lock.
func (s *Store) drop(poolID string) {
	delete(s.txs, poolID)
	for i, id := range s.order {
		if id == poolID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
