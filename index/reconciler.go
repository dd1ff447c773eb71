/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package index provisions search indexes from entity schemas and detects
// drift between a live index and the schema it was created from.
package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/suparena/transitstore/datastore"
	storeerrors "github.com/suparena/transitstore/errors"
	"github.com/suparena/transitstore/keys"
	"github.com/suparena/transitstore/metrics"
	"github.com/suparena/transitstore/schema"
	"github.com/suparena/transitstore/storagemodels"
)

// Reconciler ensures that every registered schema has a live index matching
// its field clauses. It never mutates a live index: schema evolution that
// changes index shape requires an explicit out-of-band rebuild, because
// search engines cannot generally alter field types in place.
type Reconciler struct {
	registry *schema.Registry
	store    datastore.DocumentStore
	log      zerolog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the reconciler's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Reconciler) { r.log = log }
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reconciler) { r.metrics = m }
}

// NewReconciler builds a Reconciler over the given registry and store.
func NewReconciler(registry *schema.Registry, store datastore.DocumentStore, opts ...Option) *Reconciler {
	r := &Reconciler{
		registry: registry,
		store:    store,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BuildSpec translates a schema's index fields into an index-creation
// directive. The injected entity_type TAG clause is appended when the schema
// does not declare one itself.
func BuildSpec(s *schema.EntitySchema) *storagemodels.IndexSpec {
	fields := append([]storagemodels.IndexFieldSpec(nil), s.IndexFields...)

	hasEntityType := false
	for _, f := range fields {
		if f.Name == schema.EntityTypeField {
			hasEntityType = true
			break
		}
	}
	if !hasEntityType {
		fields = append(fields, storagemodels.IndexFieldSpec{
			Name:  schema.EntityTypeField,
			Path:  "$." + schema.EntityTypeField,
			Alias: schema.EntityTypeField,
			Type:  storagemodels.FieldTag,
		})
	}

	return &storagemodels.IndexSpec{
		Name:      s.IndexName,
		KeyPrefix: s.EntityKeyPrefix + string(keys.Separator),
		Fields:    fields,
	}
}

// EnsureIndex creates the schema's index when absent and verifies it when
// present. A live index that disagrees with the schema yields an
// IndexDriftError; the index is left untouched. EnsureIndex is idempotent
// and safe to call on every process start, concurrently with writes.
func (r *Reconciler) EnsureIndex(ctx context.Context, s *schema.EntitySchema) error {
	want := BuildSpec(s)

	live, err := r.store.DescribeIndex(ctx, s.IndexName)
	if err != nil {
		return fmt.Errorf("failed to describe index %q: %w", s.IndexName, err)
	}
	if live == nil {
		if err := r.store.CreateIndex(ctx, want); err != nil {
			return fmt.Errorf("failed to create index %q: %w", s.IndexName, err)
		}
		if r.metrics != nil {
			r.metrics.IndexCreatesTotal.Inc()
		}
		r.log.Info().
			Str("index", s.IndexName).
			Str("entity_type", s.EntityType).
			Int("fields", len(want.Fields)).
			Msg("index created")
		return nil
	}

	if diffs := diffSpecs(want, live); len(diffs) > 0 {
		if r.metrics != nil {
			r.metrics.IndexDriftTotal.WithLabelValues(s.IndexName).Inc()
		}
		r.log.Warn().
			Str("index", s.IndexName).
			Strs("differences", diffs).
			Msg("live index disagrees with schema, rebuild required")
		return storeerrors.NewIndexDriftError(s.IndexName, diffs)
	}
	return nil
}

// EnsureAll provisions indexes for every registered schema. Failures are
// collected, not short-circuited, so one misconfigured schema does not block
// provisioning for the others.
func (r *Reconciler) EnsureAll(ctx context.Context) error {
	var errs []error
	for _, entityType := range r.registry.EntityTypes() {
		s, err := r.registry.Lookup(entityType)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := r.EnsureIndex(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// diffSpecs compares the wanted spec against the live one field by field.
func diffSpecs(want, live *storagemodels.IndexSpec) []string {
	var diffs []string

	if want.KeyPrefix != live.KeyPrefix {
		diffs = append(diffs, fmt.Sprintf("key prefix %q, schema wants %q", live.KeyPrefix, want.KeyPrefix))
	}

	liveByAlias := make(map[string]storagemodels.IndexFieldSpec, len(live.Fields))
	for _, f := range live.Fields {
		liveByAlias[f.Alias] = f
	}
	wantAliases := make(map[string]bool, len(want.Fields))

	for _, w := range want.Fields {
		wantAliases[w.Alias] = true
		l, ok := liveByAlias[w.Alias]
		if !ok {
			diffs = append(diffs, fmt.Sprintf("field %q missing from live index", w.Alias))
			continue
		}
		if l.Type != w.Type {
			diffs = append(diffs, fmt.Sprintf("field %q: type %s, schema wants %s", w.Alias, l.Type, w.Type))
		}
		if l.Sortable != w.Sortable {
			diffs = append(diffs, fmt.Sprintf("field %q: sortable=%t, schema wants sortable=%t", w.Alias, l.Sortable, w.Sortable))
		}
		if l.Path != w.Path {
			diffs = append(diffs, fmt.Sprintf("field %q: path %q, schema wants %q", w.Alias, l.Path, w.Path))
		}
	}
	for _, l := range live.Fields {
		if !wantAliases[l.Alias] {
			diffs = append(diffs, fmt.Sprintf("field %q not declared by schema", l.Alias))
		}
	}
	return diffs
}
