// Package state holds the application state behind an explicit set of
// mutation operations. Pipeline stages and HTTP handlers receive the
// container by reference; nothing reads ambient globals.
package state

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"solana-pool-radar/internal/alerting"
	"solana-pool-radar/internal/domain"
	"solana-pool-radar/internal/history"
)

// ErrAlertExists is returned when adding an alert whose id is taken.
var ErrAlertExists = errors.New("alert id already exists")

// ErrInvalidAlert is returned when an alert rule fails validation.
var ErrInvalidAlert = errors.New("invalid alert rule")

// Persister is notified after in-memory alert edits. Calls are
// fire-and-forget: the core never waits for confirmation.
type Persister interface {
	Insert(ctx context.Context, a *domain.Alert) error
	Delete(ctx context.Context, id string) error
	SetEnabled(ctx context.Context, id string, enabled bool) error
	List(ctx context.Context) ([]*domain.Alert, error)
}

// Options for creating a Container.
type Options struct {
	Persister Persister
	History   *history.Store
	Triggered *alerting.TriggeredLog
	Logger    zerolog.Logger

	// PersistTimeout bounds each background persistence call.
	PersistTimeout time.Duration
}

// Container is the single application state object. All writes go
// through its methods; reads return copies.
type Container struct {
	mu sync.RWMutex

	pools         []domain.Pool
	verifiedMints map[string]struct{}
	opportunities []domain.Opportunity
	alerts        []domain.Alert

	hist      *history.Store
	triggered *alerting.TriggeredLog

	persister      Persister
	persistTimeout time.Duration
	log            zerolog.Logger

	refreshSeq atomic.Uint64
	appliedGen uint64
}

// New creates a container.
func New(opts Options) *Container {
	timeout := opts.PersistTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Container{
		hist:           opts.History,
		triggered:      opts.Triggered,
		persister:      opts.Persister,
		persistTimeout: timeout,
		log:            opts.Logger,
	}
}

// BeginRefresh reserves a generation number for a refresh cycle.
// Generations order refreshes by start; ApplyRefresh discards results
// that would overwrite a newer, already-published generation.
func (c *Container) BeginRefresh() uint64 {
	return c.refreshSeq.Add(1)
}

// ApplyRefresh publishes a completed refresh. Returns false and leaves
// state untouched if a newer generation already published (out-of-order
// completion of a slow fetch).
func (c *Container) ApplyRefresh(gen uint64, pools []domain.Pool, verified map[string]struct{}, opps []domain.Opportunity) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen <= c.appliedGen {
		c.log.Debug().Uint64("gen", gen).Uint64("applied", c.appliedGen).
			Msg("discarding stale refresh")
		return false
	}
	c.appliedGen = gen
	c.pools = pools
	c.verifiedMints = verified
	c.opportunities = opps
	return true
}

// Pools returns a copy of the latest pool snapshot.
func (c *Container) Pools() []domain.Pool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Pool, len(c.pools))
	copy(out, c.pools)
	return out
}

// Opportunities returns a copy of the latest ranked list.
func (c *Container) Opportunities() []domain.Opportunity {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Opportunity, len(c.opportunities))
	copy(out, c.opportunities)
	return out
}

// VerifiedMints returns the current verified-mint set.
func (c *Container) VerifiedMints() map[string]struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]struct{}, len(c.verifiedMints))
	for m := range c.verifiedMints {
		out[m] = struct{}{}
	}
	return out
}

// LoadAlerts replaces the in-memory alert set from the persister,
// called once at startup.
func (c *Container) LoadAlerts(ctx context.Context) error {
	stored, err := c.persister.List(ctx)
	if err != nil {
		return err
	}

	alerts := make([]domain.Alert, 0, len(stored))
	for _, a := range stored {
		alerts = append(alerts, *a)
	}

	c.mu.Lock()
	c.alerts = alerts
	c.mu.Unlock()
	return nil
}

// Alerts returns a copy of the alert rules.
func (c *Container) Alerts() []domain.Alert {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Alert, len(c.alerts))
	copy(out, c.alerts)
	return out
}

// AddAlert validates and adds a rule, then notifies the persister in
// the background. The rule is visible to readers immediately.
func (c *Container) AddAlert(a domain.Alert) error {
	if err := validateAlert(&a); err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.alerts {
		if c.alerts[i].ID == a.ID {
			c.mu.Unlock()
			return ErrAlertExists
		}
	}
	c.alerts = append(c.alerts, a)
	c.mu.Unlock()

	c.persist("save alert", func(ctx context.Context) error {
		return c.persister.Insert(ctx, &a)
	})
	return nil
}

// RemoveAlert deletes a rule. Returns false if the id is unknown.
func (c *Container) RemoveAlert(id string) bool {
	c.mu.Lock()
	found := false
	for i := range c.alerts {
		if c.alerts[i].ID == id {
			c.alerts = append(c.alerts[:i], c.alerts[i+1:]...)
			found = true
			break
		}
	}
	c.mu.Unlock()

	if found {
		c.persist("delete alert", func(ctx context.Context) error {
			return c.persister.Delete(ctx, id)
		})
	}
	return found
}

// ToggleAlert enables or disables a rule without deleting it.
// Returns false if the id is unknown.
func (c *Container) ToggleAlert(id string, enabled bool) bool {
	c.mu.Lock()
	found := false
	for i := range c.alerts {
		if c.alerts[i].ID == id {
			c.alerts[i].Enabled = enabled
			found = true
			break
		}
	}
	c.mu.Unlock()

	if found {
		c.persist("toggle alert", func(ctx context.Context) error {
			return c.persister.SetEnabled(ctx, id, enabled)
		})
	}
	return found
}

// History returns the bounded transaction history store.
func (c *Container) History() *history.Store {
	return c.hist
}

// Triggered returns the bounded triggered-alert log.
func (c *Container) Triggered() *alerting.TriggeredLog {
	return c.triggered
}

// persist runs op in the background with a bounded context and logs
// failures. The caller returns before op completes.
func (c *Container) persist(what string, op func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.persistTimeout)
		defer cancel()

		if err := op(ctx); err != nil {
			c.log.Error().Err(err).Str("op", what).Msg("persistence notification failed")
		}
	}()
}

func validateAlert(a *domain.Alert) error {
	if a.ID == "" || a.PoolID == "" {
		return ErrInvalidAlert
	}
	switch a.Metric {
	case domain.MetricAPR, domain.MetricTVL, domain.MetricVolume, domain.MetricScore, domain.MetricFees:
	default:
		return ErrInvalidAlert
	}
	switch a.Condition {
	case domain.ConditionAbove, domain.ConditionBelow:
	default:
		return ErrInvalidAlert
	}
	return nil
}
