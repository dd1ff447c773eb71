/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"fmt"
	"strings"

	"github.com/suparena/transitstore/errors"
	"github.com/suparena/transitstore/storagemodels"
)

// Definition is the external wire shape of one entity schema, as found in
// existing definition files. The engine accepts this shape unchanged.
type Definition struct {
	// EntityKey is the one-letter storage key prefix.
	EntityKey string `json:"entity_key" yaml:"entity_key"`
	// Index is the name of the search index for this entity type.
	Index string `json:"index" yaml:"index"`
	// TTL is the document time-to-live in seconds; 0 means never expires.
	TTL int64 `json:"ttl" yaml:"ttl"`
	// NamingKeys are the ordered key fields.
	NamingKeys []string `json:"naming_keys" yaml:"naming_keys"`
	// DataFields are the payload fields.
	DataFields []string `json:"data_fields" yaml:"data_fields"`
	// CreateIndexQuery is the index specification in the engine-native
	// query form, e.g.
	//
	//	FT.CREATE vehicle_idx ON JSON PREFIX 1 v: SCHEMA
	//	  $.timestamp AS timestamp NUMERIC SORTABLE
	//	  $.location AS location GEO
	//	  $.entity_type AS entity_type TAG
	CreateIndexQuery string `json:"create_index_query" yaml:"create_index_query"`
}

// Compile turns a definition into a validated-shape EntitySchema. Invariant
// checks beyond parsing happen at registry load.
func (d Definition) Compile(entityType string) (*EntitySchema, error) {
	fields, err := ParseCreateIndexQuery(d.CreateIndexQuery)
	if err != nil {
		return nil, errors.NewSchemaError(entityType, err.Error())
	}
	return &EntitySchema{
		EntityType:      entityType,
		EntityKeyPrefix: d.EntityKey,
		IndexName:       d.Index,
		TTLSeconds:      d.TTL,
		NamingKeys:      append([]string(nil), d.NamingKeys...),
		DataFields:      append([]string(nil), d.DataFields...),
		IndexFields:     fields,
	}, nil
}

// ParseCreateIndexQuery extracts the field clauses from an FT.CREATE-style
// index query. Everything before the SCHEMA keyword (index name, key prefix)
// is carried separately in the definition and is ignored here; each clause
// after it must have the form
//
//	$.<path> AS <alias> <NUMERIC|TEXT|TAG|GEO> [SORTABLE]
func ParseCreateIndexQuery(query string) ([]storagemodels.IndexFieldSpec, error) {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("create_index_query is empty")
	}

	start := -1
	for i, tok := range tokens {
		if strings.EqualFold(tok, "SCHEMA") {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("create_index_query has no SCHEMA clause")
	}

	var fields []storagemodels.IndexFieldSpec
	i := start
	for i < len(tokens) {
		path := tokens[i]
		if !strings.HasPrefix(path, "$.") {
			return nil, fmt.Errorf("expected JSON path starting with %q, got %q", "$.", path)
		}
		if i+3 > len(tokens) {
			return nil, fmt.Errorf("truncated field clause at %q", path)
		}
		if !strings.EqualFold(tokens[i+1], "AS") {
			return nil, fmt.Errorf("expected AS after %q, got %q", path, tokens[i+1])
		}
		alias := tokens[i+2]
		if i+3 >= len(tokens) {
			return nil, fmt.Errorf("field %q has no type token", alias)
		}
		ftype, err := storagemodels.ParseFieldType(tokens[i+3])
		if err != nil {
			return nil, err
		}
		spec := storagemodels.IndexFieldSpec{
			Name:  fieldNameFromPath(path),
			Path:  path,
			Alias: alias,
			Type:  ftype,
		}
		i += 4
		if i < len(tokens) && strings.EqualFold(tokens[i], "SORTABLE") {
			spec.Sortable = true
			i++
		}
		fields = append(fields, spec)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("create_index_query declares no fields")
	}
	return fields, nil
}

func fieldNameFromPath(path string) string {
	trimmed := strings.TrimPrefix(path, "$.")
	if idx := strings.LastIndex(trimmed, "."); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
