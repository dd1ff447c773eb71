/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"fmt"
	"time"

	"github.com/suparena/transitstore/errors"
	"github.com/suparena/transitstore/storagemodels"
)

// EntityTypeField is the tag field the engine injects into every stored
// document and every index. It need not appear in a schema's data fields.
const EntityTypeField = "entity_type"

// EntitySchema describes one entity type: how its records are keyed, which
// fields they may carry, how long documents live, and how they are indexed.
// Schemas are immutable after registry load.
type EntitySchema struct {
	// EntityType is the unique name of the entity type (e.g. "vehicle").
	EntityType string
	// EntityKeyPrefix is the short namespace prefix for storage keys (e.g. "v").
	EntityKeyPrefix string
	// IndexName identifies the search index backing this entity type.
	IndexName string
	// TTLSeconds is the document time-to-live; 0 means never expires.
	TTLSeconds int64
	// NamingKeys are the ordered fields whose values form the storage key.
	// Order is part of the key format contract.
	NamingKeys []string
	// DataFields are the non-key fields carried in the document payload.
	DataFields []string
	// IndexFields describe how fields are exposed to the index, in order.
	IndexFields []storagemodels.IndexFieldSpec

	declared map[string]bool
}

// TTL returns the schema's time-to-live as a duration; zero means no expiry.
func (s *EntitySchema) TTL() time.Duration {
	return time.Duration(s.TTLSeconds) * time.Second
}

// Declared reports whether a field belongs to the schema's closed field set
// (naming keys plus data fields).
func (s *EntitySchema) Declared(field string) bool {
	return s.declared[field]
}

// TimeAxis returns the field name of the SORTABLE NUMERIC clause, if the
// schema designates one.
func (s *EntitySchema) TimeAxis() (string, bool) {
	for _, f := range s.IndexFields {
		if f.Type == storagemodels.FieldNumeric && f.Sortable {
			return f.Name, true
		}
	}
	return "", false
}

// finalize builds the declared-field set and checks the per-schema
// invariants. Cross-schema uniqueness is the registry's job.
func (s *EntitySchema) finalize() error {
	if s.EntityType == "" {
		return errors.NewSchemaError("", "entity type name must not be empty")
	}
	if s.EntityKeyPrefix == "" {
		return errors.NewSchemaError(s.EntityType, "entity key prefix must not be empty")
	}
	if s.IndexName == "" {
		return errors.NewSchemaError(s.EntityType, "index name must not be empty")
	}
	if s.TTLSeconds < 0 {
		return errors.NewSchemaError(s.EntityType, fmt.Sprintf("ttl must be non-negative, got %d", s.TTLSeconds))
	}
	if len(s.NamingKeys) == 0 {
		return errors.NewSchemaError(s.EntityType, "naming keys must not be empty")
	}

	s.declared = make(map[string]bool, len(s.NamingKeys)+len(s.DataFields))
	for _, k := range s.NamingKeys {
		if k == "" {
			return errors.NewSchemaError(s.EntityType, "naming key name must not be empty")
		}
		if s.declared[k] {
			return errors.NewSchemaError(s.EntityType, fmt.Sprintf("duplicate naming key %q", k))
		}
		s.declared[k] = true
	}
	for _, f := range s.DataFields {
		if f == "" {
			return errors.NewSchemaError(s.EntityType, "data field name must not be empty")
		}
		if s.declared[f] {
			return errors.NewSchemaError(s.EntityType, fmt.Sprintf("field %q appears in both naming keys and data fields", f))
		}
		s.declared[f] = true
	}

	sortableNumerics := 0
	for _, f := range s.IndexFields {
		if _, err := storagemodels.ParseFieldType(string(f.Type)); err != nil {
			return errors.NewSchemaError(s.EntityType, err.Error())
		}
		// The engine injects entity_type into every document, so the index
		// may reference it without a declaration.
		if f.Name != EntityTypeField && !s.declared[f.Name] {
			return errors.NewSchemaError(s.EntityType,
				fmt.Sprintf("index field %q is neither a naming key nor a data field", f.Name))
		}
		if f.Sortable {
			if f.Type != storagemodels.FieldNumeric {
				return errors.NewSchemaError(s.EntityType,
					fmt.Sprintf("index field %q: only NUMERIC fields may be sortable", f.Name))
			}
			sortableNumerics++
		}
	}
	if sortableNumerics > 1 {
		return errors.NewSchemaError(s.EntityType, "at most one NUMERIC index field may be sortable")
	}

	return nil
}
