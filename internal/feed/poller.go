package feed

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"solana-pool-radar/internal/normalize"
	"solana-pool-radar/internal/observability"
)

// SnapshotHandler receives one fully fetched snapshot per tick.
type SnapshotHandler func(ctx context.Context, raw []normalize.RawPool, verified map[string]struct{})

// Poller drives the refresh loop: fetch on a fixed interval, hand the
// resolved snapshot to the handler. A failed fetch skips the tick and
// keeps the previous published state; the next tick tries again.
type Poller struct {
	client   *Client
	interval time.Duration
	handler  SnapshotHandler
	metrics  *observability.Metrics
	log      zerolog.Logger
}

// NewPoller creates a poller.
func NewPoller(client *Client, interval time.Duration, handler SnapshotHandler, metrics *observability.Metrics, logger zerolog.Logger) *Poller {
	return &Poller{
		client:   client,
		interval: interval,
		handler:  handler,
		metrics:  metrics,
		log:      logger,
	}
}

// Run polls until the context is cancelled. The first tick fires
// immediately.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("poller stopped")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	verified, err := p.client.FetchVerifiedMints(ctx)
	if err != nil {
		p.feedError("verified_mints", err)
		return
	}

	raw, err := p.client.FetchPools(ctx)
	if err != nil {
		p.feedError("pools", err)
		return
	}

	p.handler(ctx, raw, verified)
}

func (p *Poller) feedError(source string, err error) {
	if p.metrics != nil {
		p.metrics.FeedErrors.WithLabelValues(source).Inc()
	}
	p.log.Error().Err(err).Str("source", source).Msg("fetch failed, skipping tick")
}
