// Package alerting evaluates user threshold rules against live pool
// metrics and keeps the bounded log of triggered alerts.
package alerting

import (
	"sync"

	"solana-pool-radar/internal/domain"
)

// TriggeredLog is the bounded, newest-first log of triggered alerts.
// Oldest entries are evicted once the cap is exceeded.
type TriggeredLog struct {
	mu      sync.RWMutex
	cap     int
	entries []domain.TriggeredAlert
}

// NewTriggeredLog creates a log capped at max entries.
func NewTriggeredLog(max int) *TriggeredLog {
	return &TriggeredLog{cap: max}
}

// Append records a trigger at the front, evicting the oldest entry
// when the cap is exceeded.
func (l *TriggeredLog) Append(ta domain.TriggeredAlert) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append([]domain.TriggeredAlert{ta}, l.entries...)
	if len(l.entries) > l.cap {
		l.entries = l.entries[:l.cap]
	}
}

// All returns a copy of the log, newest first.
func (l *TriggeredLog) All() []domain.TriggeredAlert {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.TriggeredAlert, len(l.entries))
	copy(out, l.entries)
	return out
}

// MarkAllRead flags every entry as read.
func (l *TriggeredLog) MarkAllRead() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.entries {
		l.entries[i].Read = true
	}
}

// Clear removes every entry.
func (l *TriggeredLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = nil
}

// Len returns the number of logged triggers.
func (l *TriggeredLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
