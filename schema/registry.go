/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"fmt"
	"sort"

	"github.com/suparena/transitstore/errors"
)

// Registry holds the loaded entity schemas. It is immutable after Load and
// safe for concurrent reads without locking; schema changes require a
// process restart, not a runtime mutation path.
type Registry struct {
	schemas map[string]*EntitySchema
	order   []string
}

// Load validates a set of schemas and installs them atomically: either every
// schema loads or none do, so no partial registry state is ever observable.
func Load(schemas []*EntitySchema) (*Registry, error) {
	if len(schemas) == 0 {
		return nil, errors.NewSchemaError("", "no schema definitions provided")
	}

	byType := make(map[string]*EntitySchema, len(schemas))
	prefixes := make(map[string]string, len(schemas))
	indexes := make(map[string]string, len(schemas))
	order := make([]string, 0, len(schemas))

	for _, s := range schemas {
		if err := s.finalize(); err != nil {
			return nil, err
		}
		if _, dup := byType[s.EntityType]; dup {
			return nil, errors.NewSchemaError(s.EntityType, "duplicate entity type")
		}
		if owner, dup := prefixes[s.EntityKeyPrefix]; dup {
			return nil, errors.NewSchemaError(s.EntityType,
				fmt.Sprintf("entity key prefix %q already used by %q", s.EntityKeyPrefix, owner))
		}
		if owner, dup := indexes[s.IndexName]; dup {
			return nil, errors.NewSchemaError(s.EntityType,
				fmt.Sprintf("index name %q already used by %q", s.IndexName, owner))
		}
		byType[s.EntityType] = s
		prefixes[s.EntityKeyPrefix] = s.EntityType
		indexes[s.IndexName] = s.EntityType
		order = append(order, s.EntityType)
	}
	sort.Strings(order)

	return &Registry{schemas: byType, order: order}, nil
}

// FromDefinitions compiles a mapping of entity-type name to external
// definition and loads the result.
func FromDefinitions(defs map[string]Definition) (*Registry, error) {
	schemas := make([]*EntitySchema, 0, len(defs))
	for name, def := range defs {
		s, err := def.Compile(name)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}
	return Load(schemas)
}

// Lookup returns the schema registered for the entity type.
func (r *Registry) Lookup(entityType string) (*EntitySchema, error) {
	s, ok := r.schemas[entityType]
	if !ok {
		return nil, errors.NewUnknownEntityTypeError(entityType)
	}
	return s, nil
}

// EntityTypes returns the registered entity type names in sorted order.
func (r *Registry) EntityTypes() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
