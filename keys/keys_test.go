/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/transitstore/errors"
	"github.com/suparena/transitstore/schema"
	"github.com/suparena/transitstore/storagemodels"
)

func vehicleSchema() *schema.EntitySchema {
	return &schema.EntitySchema{
		EntityType:      "vehicle",
		EntityKeyPrefix: "v",
		NamingKeys:      []string{"company_id", "trip_id", "licence_plate", "timestamp"},
	}
}

func TestComposeExampleKey(t *testing.T) {
	rec := storagemodels.Record{
		"company_id":    "c1",
		"trip_id":       "t1",
		"licence_plate": "XYZ1",
		"timestamp":     1000,
		"speed":         12.5,
		"location":      "1.0,2.0",
	}

	key, err := Compose(vehicleSchema(), rec)
	require.NoError(t, err)
	assert.Equal(t, "v:c1:t1:XYZ1:1000", key)
}

func TestComposeIsDeterministic(t *testing.T) {
	rec := storagemodels.Record{
		"company_id":    "c1",
		"trip_id":       "t1",
		"licence_plate": "XYZ1",
		"timestamp":     1000,
	}
	s := vehicleSchema()

	first, err := Compose(s, rec)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Compose(s, rec)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestComposeJSONDecodedNumbers(t *testing.T) {
	// JSON decoding turns whole-number timestamps into float64; the rendered
	// key must not grow a fractional part.
	rec := storagemodels.Record{
		"company_id":    "c1",
		"trip_id":       "t1",
		"licence_plate": "XYZ1",
		"timestamp":     float64(1000),
	}
	key, err := Compose(vehicleSchema(), rec)
	require.NoError(t, err)
	assert.Equal(t, "v:c1:t1:XYZ1:1000", key)
}

func TestComposeMissingNamingKey(t *testing.T) {
	rec := storagemodels.Record{
		"company_id": "c1",
		"trip_id":    "t1",
		"timestamp":  1000,
	}
	_, err := Compose(vehicleSchema(), rec)
	assert.True(t, errors.IsMissingNamingKey(err))

	rec["licence_plate"] = nil
	_, err = Compose(vehicleSchema(), rec)
	assert.True(t, errors.IsMissingNamingKey(err))
}

func TestComposeEscapesSeparator(t *testing.T) {
	s := &schema.EntitySchema{
		EntityType:      "vehicle",
		EntityKeyPrefix: "v",
		NamingKeys:      []string{"licence_plate", "timestamp"},
	}

	withSeparator, err := Compose(s, storagemodels.Record{"licence_plate": "AB:1", "timestamp": 2})
	require.NoError(t, err)
	plain, err := Compose(s, storagemodels.Record{"licence_plate": "AB", "timestamp": "1:2"})
	require.NoError(t, err)

	// Without escaping both would collide on "v:AB:1:2".
	assert.NotEqual(t, withSeparator, plain)
}

func TestDecomposeRoundTrip(t *testing.T) {
	s := &schema.EntitySchema{
		EntityType:      "vehicle",
		EntityKeyPrefix: "v",
		NamingKeys:      []string{"licence_plate", "trip_id"},
	}

	values := []string{`AB:12\`, "plain"}
	key, err := Compose(s, storagemodels.Record{
		"licence_plate": values[0],
		"trip_id":       values[1],
	})
	require.NoError(t, err)

	prefix, parts, err := Decompose(key)
	require.NoError(t, err)
	assert.Equal(t, "v", prefix)
	assert.Equal(t, values, parts)
}

func TestDecomposeExample(t *testing.T) {
	prefix, values, err := Decompose("v:c1:t1:XYZ1:1000")
	require.NoError(t, err)
	assert.Equal(t, "v", prefix)
	assert.Equal(t, []string{"c1", "t1", "XYZ1", "1000"}, values)
}

func TestDecomposeDanglingEscape(t *testing.T) {
	_, _, err := Decompose(`v:abc\`)
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "abc", "abc"},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"uint", uint(9), "9"},
		{"whole float64", float64(1000), "1000"},
		{"fractional float64", 12.5, "12.5"},
		{"float32", float32(2.25), "2.25"},
		{"bool", true, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderUnsupportedType(t *testing.T) {
	_, err := Render(map[string]int{"a": 1})
	assert.Error(t, err)
}
