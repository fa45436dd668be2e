// Package orchestrator coordinates one refresh cycle:
// normalize → classify+score → detect opportunities → publish →
// evaluate alerts → archive.
package orchestrator

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"solana-pool-radar/internal/alerting"
	"solana-pool-radar/internal/domain"
	"solana-pool-radar/internal/normalize"
	"solana-pool-radar/internal/observability"
	"solana-pool-radar/internal/opportunity"
	"solana-pool-radar/internal/state"
	"solana-pool-radar/internal/storage"
)

// Orchestrator runs the refresh pipeline over already-fetched data.
// It performs no network I/O itself; fetching is the feed's job.
type Orchestrator struct {
	normalizer *normalize.Normalizer
	detector   *opportunity.Detector
	monitor    *alerting.Monitor
	container  *state.Container

	archive storage.ArchiveStore // nil disables archiving
	metrics *observability.Metrics
	log     zerolog.Logger

	now            func() time.Time
	archiveTimeout time.Duration
}

// Options for creating an Orchestrator.
type Options struct {
	Normalizer *normalize.Normalizer
	Detector   *opportunity.Detector
	Monitor    *alerting.Monitor
	Container  *state.Container

	// Optional collaborators.
	Archive storage.ArchiveStore
	Metrics *observability.Metrics
	Logger  zerolog.Logger

	// Now overrides the clock in tests.
	Now func() time.Time
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		normalizer:     opts.Normalizer,
		detector:       opts.Detector,
		monitor:        opts.Monitor,
		container:      opts.Container,
		archive:        opts.Archive,
		metrics:        opts.Metrics,
		log:            opts.Logger,
		now:            now,
		archiveTimeout: 10 * time.Second,
	}
}

// Result summarizes one refresh cycle.
type Result struct {
	Pools         int
	Dropped       int
	Opportunities int
	Triggered     int
	Stale         bool
}

// Refresh runs one full cycle over a raw snapshot. The cycle completes
// before state is published: classify, score and detect all run on the
// incoming set, then a single ApplyRefresh publishes it. A result that
// lost the publication race is discarded and reported Stale.
func (o *Orchestrator) Refresh(ctx context.Context, raw []normalize.RawPool, verified map[string]struct{}) Result {
	start := o.now()
	gen := o.container.BeginRefresh()

	norm := o.normalizer.Run(raw, verified)
	opps := o.detector.Detect(norm.Pools)

	if !o.container.ApplyRefresh(gen, norm.Pools, verified, opps) {
		if o.metrics != nil {
			o.metrics.StaleRefreshes.Inc()
			o.metrics.RefreshTotal.WithLabelValues("stale").Inc()
		}
		return Result{Stale: true}
	}

	fired := o.monitor.Evaluate(o.now(), norm.Pools, o.container.Alerts())

	o.archiveCycle(norm.Pools, fired)
	o.record(start, norm, opps, fired)

	o.log.Info().
		Int("pools", len(norm.Pools)).
		Int("dropped", norm.Dropped).
		Int("opportunities", len(opps)).
		Int("triggered", len(fired)).
		Msg("refresh published")

	return Result{
		Pools:         len(norm.Pools),
		Dropped:       norm.Dropped,
		Opportunities: len(opps),
		Triggered:     len(fired),
	}
}

// archiveCycle writes snapshots and triggers to the archive in the
// background. Archiving is best-effort and never blocks the cycle.
func (o *Orchestrator) archiveCycle(pools []domain.Pool, fired []domain.TriggeredAlert) {
	if o.archive == nil {
		return
	}

	observedAt := o.now().UnixMilli()
	snaps := make([]domain.PoolSnapshot, 0, len(pools))
	for i := range pools {
		snaps = append(snaps, domain.SnapshotOf(&pools[i], observedAt))
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), o.archiveTimeout)
		defer cancel()

		if err := o.archive.InsertSnapshots(ctx, snaps); err != nil {
			o.log.Error().Err(err).Msg("archive snapshots failed")
		}
		for i := range fired {
			if err := o.archive.InsertTriggered(ctx, &fired[i]); err != nil {
				o.log.Error().Err(err).Msg("archive triggered alert failed")
			}
		}
	}()
}

func (o *Orchestrator) record(start time.Time, norm normalize.Result, opps []domain.Opportunity, fired []domain.TriggeredAlert) {
	if o.metrics == nil {
		return
	}

	o.metrics.RefreshTotal.WithLabelValues("ok").Inc()
	o.metrics.RefreshDuration.Observe(o.now().Sub(start).Seconds())
	o.metrics.PoolsIngested.Set(float64(len(norm.Pools)))
	o.metrics.PoolsDropped.Add(float64(norm.Dropped))
	o.metrics.OpportunitiesDetected.Set(float64(len(opps)))
	o.metrics.AlertsEvaluated.Inc()
	o.metrics.AlertsTriggered.Add(float64(len(fired)))
	o.metrics.LastSuccessfulRefresh.Set(float64(o.now().Unix()))

	enabled := 0
	for _, a := range o.container.Alerts() {
		if a.Enabled {
			enabled++
		}
	}
	o.metrics.ActiveAlerts.Set(float64(enabled))
}
