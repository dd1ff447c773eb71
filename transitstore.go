/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package transitstore

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/suparena/transitstore/datastore"
	"github.com/suparena/transitstore/document"
	"github.com/suparena/transitstore/errors"
	"github.com/suparena/transitstore/index"
	"github.com/suparena/transitstore/keys"
	"github.com/suparena/transitstore/metrics"
	"github.com/suparena/transitstore/schema"
	"github.com/suparena/transitstore/storagemodels"
)

// Store is the public surface of the materialization engine. It composes the
// schema registry, key composer, document materializer, and index reconciler
// over a single DocumentStore.
//
// A Store is safe for concurrent use: the registry is read-only after load,
// and same-key write serialization is delegated to the store's atomic
// per-key upsert.
type Store struct {
	registry   *schema.Registry
	docs       datastore.DocumentStore
	reconciler *index.Reconciler
	log        zerolog.Logger
	metrics    *metrics.Metrics

	sweepOpts []document.SweeperOption
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger; components inherit it.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithMetrics attaches Prometheus metrics; components inherit them.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithSweeperOptions forwards options to the TTL sweeper created by
// NewSweeper, for stores without native expiry.
func WithSweeperOptions(opts ...document.SweeperOption) Option {
	return func(s *Store) { s.sweepOpts = opts }
}

// New builds a Store over a loaded registry and a document store.
func New(registry *schema.Registry, docs datastore.DocumentStore, opts ...Option) *Store {
	s := &Store{
		registry: registry,
		docs:     docs,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	reconcilerOpts := []index.Option{index.WithLogger(s.log)}
	if s.metrics != nil {
		reconcilerOpts = append(reconcilerOpts, index.WithMetrics(s.metrics))
	}
	s.reconciler = index.NewReconciler(registry, docs, reconcilerOpts...)
	return s
}

// Put materializes the record under its schema and upserts the document,
// returning the composed storage key. Re-ingesting the same observation
// yields the same key and overwrites the previous document.
func (s *Store) Put(ctx context.Context, entityType string, rec storagemodels.Record, now time.Time) (string, error) {
	sch, err := s.registry.Lookup(entityType)
	if err != nil {
		return "", err
	}
	key, err := keys.Compose(sch, rec)
	if err != nil {
		s.countRejected(entityType, err)
		return "", err
	}
	doc, err := document.Materialize(sch, rec, now)
	if err != nil {
		s.countRejected(entityType, err)
		return "", err
	}
	doc.Key = key
	if err := s.docs.Set(ctx, key, doc, sch.TTL()); err != nil {
		if s.metrics != nil {
			s.metrics.PutsTotal.WithLabelValues(entityType, "error").Inc()
		}
		return "", err
	}
	if s.metrics != nil {
		s.metrics.PutsTotal.WithLabelValues(entityType, "ok").Inc()
	}
	s.log.Debug().Str("entity_type", entityType).Str("key", key).Msg("document stored")
	return key, nil
}

// Get recomposes the key from the naming-key values and fetches the
// document. Absent and expired documents both yield a NotFoundError.
func (s *Store) Get(ctx context.Context, entityType string, namingKeyValues storagemodels.Record) (*storagemodels.StoredDocument, error) {
	sch, err := s.registry.Lookup(entityType)
	if err != nil {
		return nil, err
	}
	key, err := keys.Compose(sch, namingKeyValues)
	if err != nil {
		return nil, err
	}
	doc, err := s.docs.Get(ctx, key)
	if err != nil {
		if s.metrics != nil {
			s.metrics.GetsTotal.WithLabelValues(entityType, "error").Inc()
		}
		return nil, err
	}
	if doc == nil {
		if s.metrics != nil {
			s.metrics.GetsTotal.WithLabelValues(entityType, "miss").Inc()
		}
		return nil, errors.NewNotFoundError(entityType, key)
	}
	if s.metrics != nil {
		s.metrics.GetsTotal.WithLabelValues(entityType, "ok").Inc()
	}
	return doc, nil
}

// Delete removes the document addressed by the naming-key values. Deleting
// an absent document is a no-op.
func (s *Store) Delete(ctx context.Context, entityType string, namingKeyValues storagemodels.Record) error {
	sch, err := s.registry.Lookup(entityType)
	if err != nil {
		return err
	}
	key, err := keys.Compose(sch, namingKeyValues)
	if err != nil {
		return err
	}
	return s.docs.Delete(ctx, key)
}

// EnsureIndexes provisions the index for every registered schema, collecting
// per-schema failures into one aggregate error. Call it before steady-state
// writes begin; document writes do not block on index existence.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	return s.reconciler.EnsureAll(ctx)
}

// NewSweeper builds the TTL sweeper for the underlying store, or nil when
// the store expires documents natively. The caller owns the returned
// sweeper's lifecycle:
//
//	if sw, _ := store.NewSweeper(); sw != nil {
//	    go sw.Run(ctx)
//	}
func (s *Store) NewSweeper() (*document.Sweeper, error) {
	if s.docs.NativeTTL() {
		return nil, nil
	}
	opts := append([]document.SweeperOption{
		document.WithLogger(s.log),
	}, s.sweepOpts...)
	if s.metrics != nil {
		opts = append(opts, document.WithMetrics(s.metrics))
	}
	return document.NewSweeper(s.docs, opts...)
}

// Registry exposes the loaded schema registry.
func (s *Store) Registry() *schema.Registry {
	return s.registry
}

func (s *Store) countRejected(entityType string, err error) {
	if s.metrics == nil {
		return
	}
	reason := "invalid_record"
	switch {
	case errors.IsMissingNamingKey(err):
		reason = "missing_naming_key"
	case errors.IsUndeclaredField(err):
		reason = "undeclared_field"
	}
	s.metrics.RecordsRejected.WithLabelValues(entityType, reason).Inc()
}
