/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/transitstore/errors"
	"github.com/suparena/transitstore/storagemodels"
)

func vehicleSchema() *EntitySchema {
	return &EntitySchema{
		EntityType:      "vehicle",
		EntityKeyPrefix: "v",
		IndexName:       "vehicle_idx",
		TTLSeconds:      600,
		NamingKeys:      []string{"company_id", "trip_id", "licence_plate", "timestamp"},
		DataFields:      []string{"speed", "location", "route_id"},
		IndexFields: []storagemodels.IndexFieldSpec{
			{Name: "timestamp", Path: "$.timestamp", Alias: "timestamp", Type: storagemodels.FieldNumeric, Sortable: true},
			{Name: "speed", Path: "$.speed", Alias: "speed", Type: storagemodels.FieldNumeric},
			{Name: "location", Path: "$.location", Alias: "location", Type: storagemodels.FieldGeo},
			{Name: "entity_type", Path: "$.entity_type", Alias: "entity_type", Type: storagemodels.FieldTag},
		},
	}
}

func alertSchema() *EntitySchema {
	return &EntitySchema{
		EntityType:      "alert",
		EntityKeyPrefix: "a",
		IndexName:       "alert_idx",
		TTLSeconds:      0,
		NamingKeys:      []string{"company_id", "alert_id"},
		DataFields:      []string{"cause", "effect", "header_text"},
		IndexFields: []storagemodels.IndexFieldSpec{
			{Name: "header_text", Path: "$.header_text", Alias: "header_text", Type: storagemodels.FieldText},
			{Name: "cause", Path: "$.cause", Alias: "cause", Type: storagemodels.FieldTag},
		},
	}
}

func TestLoadAndLookup(t *testing.T) {
	reg, err := Load([]*EntitySchema{vehicleSchema(), alertSchema()})
	require.NoError(t, err)

	s, err := reg.Lookup("vehicle")
	require.NoError(t, err)
	assert.Equal(t, "v", s.EntityKeyPrefix)
	assert.True(t, s.Declared("speed"))
	assert.True(t, s.Declared("company_id"))
	assert.False(t, s.Declared("altitude"))

	axis, ok := s.TimeAxis()
	require.True(t, ok)
	assert.Equal(t, "timestamp", axis)

	a, err := reg.Lookup("alert")
	require.NoError(t, err)
	_, ok = a.TimeAxis()
	assert.False(t, ok)

	assert.Equal(t, []string{"alert", "vehicle"}, reg.EntityTypes())
}

func TestLookupUnknownEntityType(t *testing.T) {
	reg, err := Load([]*EntitySchema{vehicleSchema()})
	require.NoError(t, err)

	_, err = reg.Lookup("ferry")
	assert.True(t, errors.IsUnknownEntityType(err))
}

func TestLoadRejectsInvalidSchemas(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*EntitySchema)
	}{
		{"empty entity type", func(s *EntitySchema) { s.EntityType = "" }},
		{"empty key prefix", func(s *EntitySchema) { s.EntityKeyPrefix = "" }},
		{"empty index name", func(s *EntitySchema) { s.IndexName = "" }},
		{"negative ttl", func(s *EntitySchema) { s.TTLSeconds = -1 }},
		{"no naming keys", func(s *EntitySchema) { s.NamingKeys = nil }},
		{"duplicate naming key", func(s *EntitySchema) {
			s.NamingKeys = append(s.NamingKeys, "trip_id")
		}},
		{"naming key also data field", func(s *EntitySchema) {
			s.DataFields = append(s.DataFields, "trip_id")
		}},
		{"dangling index field", func(s *EntitySchema) {
			s.IndexFields = append(s.IndexFields, storagemodels.IndexFieldSpec{
				Name: "altitude", Path: "$.altitude", Alias: "altitude", Type: storagemodels.FieldNumeric,
			})
		}},
		{"sortable non-numeric", func(s *EntitySchema) {
			s.IndexFields[3].Sortable = true
		}},
		{"two sortable numerics", func(s *EntitySchema) {
			s.IndexFields[1].Sortable = true
		}},
		{"bad field type", func(s *EntitySchema) {
			s.IndexFields[1].Type = "VECTOR"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := vehicleSchema()
			tt.mutate(s)
			_, err := Load([]*EntitySchema{s})
			assert.True(t, errors.IsInvalidSchema(err), "expected SchemaError, got %v", err)
		})
	}
}

func TestLoadRejectsCrossSchemaDuplicates(t *testing.T) {
	t.Run("duplicate entity type", func(t *testing.T) {
		_, err := Load([]*EntitySchema{vehicleSchema(), vehicleSchema()})
		assert.True(t, errors.IsInvalidSchema(err))
	})

	t.Run("duplicate key prefix", func(t *testing.T) {
		a := alertSchema()
		a.EntityKeyPrefix = "v"
		_, err := Load([]*EntitySchema{vehicleSchema(), a})
		assert.True(t, errors.IsInvalidSchema(err))
	})

	t.Run("duplicate index name", func(t *testing.T) {
		a := alertSchema()
		a.IndexName = "vehicle_idx"
		_, err := Load([]*EntitySchema{vehicleSchema(), a})
		assert.True(t, errors.IsInvalidSchema(err))
	})
}

func TestLoadIsAtomic(t *testing.T) {
	bad := alertSchema()
	bad.TTLSeconds = -5

	reg, err := Load([]*EntitySchema{vehicleSchema(), bad})
	require.Error(t, err)
	assert.Nil(t, reg, "a failed load must not install any schema")
}

func TestLoadRejectsEmptySet(t *testing.T) {
	_, err := Load(nil)
	assert.True(t, errors.IsInvalidSchema(err))
}

func TestEntityTypeIndexFieldNeedsNoDeclaration(t *testing.T) {
	// entity_type is injected by the engine; the index may reference it even
	// though it appears in neither naming keys nor data fields.
	s := vehicleSchema()
	require.NotContains(t, s.DataFields, "entity_type")

	_, err := Load([]*EntitySchema{s})
	assert.NoError(t, err)
}

func TestTTLDuration(t *testing.T) {
	reg, err := Load([]*EntitySchema{vehicleSchema(), alertSchema()})
	require.NoError(t, err)

	v, _ := reg.Lookup("vehicle")
	assert.Equal(t, "10m0s", v.TTL().String())

	a, _ := reg.Lookup("alert")
	assert.Zero(t, a.TTL())
}
