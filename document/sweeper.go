/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package document

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/suparena/transitstore/datastore"
	"github.com/suparena/transitstore/metrics"
)

const (
	defaultSweepInterval = 30 * time.Second
	defaultSweepBatch    = 256
)

// Sweeper deletes expired documents from stores without native TTL. It scans
// in time-bounded batches and deletes per key, so it never holds a
// store-wide lock and never blocks a concurrent write or read.
type Sweeper struct {
	store    datastore.DocumentStore
	scanner  datastore.ExpiryScanner
	interval time.Duration
	batch    int
	log      zerolog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithInterval sets the pause between sweep passes.
func WithInterval(d time.Duration) SweeperOption {
	return func(s *Sweeper) { s.interval = d }
}

// WithBatchSize bounds the number of keys scanned per pass iteration.
func WithBatchSize(n int) SweeperOption {
	return func(s *Sweeper) { s.batch = n }
}

// WithLogger sets the sweeper's logger.
func WithLogger(log zerolog.Logger) SweeperOption {
	return func(s *Sweeper) { s.log = log }
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) SweeperOption {
	return func(s *Sweeper) { s.metrics = m }
}

// WithClock overrides the sweeper's notion of the current time.
func WithClock(now func() time.Time) SweeperOption {
	return func(s *Sweeper) { s.now = now }
}

// NewSweeper builds a Sweeper for the given store. The store must implement
// datastore.ExpiryScanner; stores with native TTL do not need a sweeper at
// all.
func NewSweeper(store datastore.DocumentStore, opts ...SweeperOption) (*Sweeper, error) {
	scanner, ok := store.(datastore.ExpiryScanner)
	if !ok {
		return nil, fmt.Errorf("store %T does not support expiry scans", store)
	}
	s := &Sweeper{
		store:    store,
		scanner:  scanner,
		interval: defaultSweepInterval,
		batch:    defaultSweepBatch,
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run sweeps on the configured interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Sweep(ctx)
			if err != nil {
				s.log.Error().Err(err).Msg("sweep pass failed")
				continue
			}
			if removed > 0 {
				s.log.Debug().Int("removed", removed).Msg("sweep pass completed")
			}
		}
	}
}

// Sweep runs one pass: it repeatedly asks the store for a batch of expired
// keys and deletes them, until a batch comes back short or the context is
// cancelled. Returns the number of documents removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	removed := 0
	for {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		keys, err := s.scanner.ExpiredKeys(ctx, s.now(), s.batch)
		if err != nil {
			return removed, fmt.Errorf("expired-key scan failed: %w", err)
		}
		for _, key := range keys {
			if err := s.store.Delete(ctx, key); err != nil {
				return removed, fmt.Errorf("failed to delete expired %q: %w", key, err)
			}
			removed++
			if s.metrics != nil {
				s.metrics.DocumentsSwept.Inc()
			}
		}
		if len(keys) < s.batch {
			return removed, nil
		}
	}
}
