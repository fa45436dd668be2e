// Package feed is the data-fetch collaborator: it pulls pool snapshots
// and the verified-mint set over HTTP and streams pool transactions
// over WebSocket. The core only ever sees already-resolved data.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"solana-pool-radar/internal/normalize"
	"solana-pool-radar/internal/solmint"
)

// Client fetches pool market data from the upstream HTTP API.
// Failed fetches surface as errors; there is no retry layer here.
type Client struct {
	httpClient  *http.Client
	poolsURL    string
	verifiedURL string
	log         zerolog.Logger
}

// NewClient creates a feed client.
func NewClient(poolsURL, verifiedURL string, logger zerolog.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		poolsURL:    poolsURL,
		verifiedURL: verifiedURL,
		log:         logger,
	}
}

// FetchPools retrieves the latest full pool snapshot. The result is a
// wholesale replacement for the previous set, never a diff.
func (c *Client) FetchPools(ctx context.Context) ([]normalize.RawPool, error) {
	var pools []normalize.RawPool
	if err := c.getJSON(ctx, c.poolsURL, &pools); err != nil {
		return nil, fmt.Errorf("fetch pools: %w", err)
	}
	return pools, nil
}

// FetchVerifiedMints retrieves the current verified token list as a
// set. Entries that are not valid Solana addresses are dropped.
func (c *Client) FetchVerifiedMints(ctx context.Context) (map[string]struct{}, error) {
	var mints []string
	if err := c.getJSON(ctx, c.verifiedURL, &mints); err != nil {
		return nil, fmt.Errorf("fetch verified mints: %w", err)
	}

	set := make(map[string]struct{}, len(mints))
	for _, m := range mints {
		if !solmint.IsValid(m) {
			c.log.Warn().Str("mint", m).Msg("dropping invalid verified mint")
			continue
		}
		set[m] = struct{}{}
	}
	return set, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
