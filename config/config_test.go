/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/transitstore/schema"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load("testdata/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, BackendBadger, cfg.Backend)
	assert.Equal(t, "testdata/schemas.json", cfg.SchemaFile)
	assert.Equal(t, "/var/lib/transitstore", cfg.Badger.Dir)
	assert.Equal(t, 15*time.Second, cfg.Sweep.Interval)
	assert.Equal(t, 128, cfg.Sweep.BatchSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "schema_file: schemas.json\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, 30*time.Second, cfg.Sweep.Interval)
	assert.Equal(t, 256, cfg.Sweep.BatchSize)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown backend", "backend: redis\n"},
		{"badger without dir", "backend: badger\n"},
		{"dynamodb without table", "backend: dynamodb\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadDefinitions(t *testing.T) {
	defs, err := LoadDefinitions("testdata/schemas.json")
	require.NoError(t, err)
	require.Len(t, defs, 3)

	vehicle, ok := defs["vehicle"]
	require.True(t, ok)
	assert.Equal(t, "v", vehicle.EntityKey)
	assert.Equal(t, "vehicle_idx", vehicle.Index)
	assert.Equal(t, int64(600), vehicle.TTL)
	assert.Equal(t, []string{"company_id", "trip_id", "licence_plate", "timestamp"}, vehicle.NamingKeys)

	// The definitions file must compile into a registry as-is.
	reg, err := schema.FromDefinitions(defs)
	require.NoError(t, err)
	assert.Equal(t, []string{"alert", "trip_update", "vehicle"}, reg.EntityTypes())

	alert, err := reg.Lookup("alert")
	require.NoError(t, err)
	assert.Zero(t, alert.TTLSeconds)
	assert.Len(t, alert.IndexFields, 8)
}

func TestLoadDefinitionsRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemas.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	_, err := LoadDefinitions(path)
	assert.Error(t, err)
}
