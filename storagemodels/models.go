/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
)

// Record is an ephemeral entity record produced by an upstream feed
// decoder. Keys are schema field names; the engine validates them against
// the schema's closed field set on every write.
type Record map[string]any

// FieldType is the index type of a single field clause.
type FieldType string

const (
	FieldNumeric FieldType = "NUMERIC"
	FieldText    FieldType = "TEXT"
	FieldTag     FieldType = "TAG"
	FieldGeo     FieldType = "GEO"
)

// ParseFieldType converts a type token from a schema definition into a
// FieldType, rejecting anything outside the supported set.
func ParseFieldType(token string) (FieldType, error) {
	ft := FieldType(token)
	switch ft {
	case FieldNumeric, FieldText, FieldTag, FieldGeo:
		return ft, nil
	}
	return "", fmt.Errorf("unsupported field type token %q", token)
}

// IndexFieldSpec describes how one document field is exposed to the index.
type IndexFieldSpec struct {
	// Name is the schema field name the clause refers to.
	Name string `json:"name"`
	// Path is the JSON path within the stored document (e.g. "$.speed").
	Path string `json:"path"`
	// Alias is the name the field is indexed as.
	Alias string `json:"alias"`
	// Type is the index type of the field.
	Type FieldType `json:"type"`
	// Sortable marks a NUMERIC field as the schema's time axis.
	Sortable bool `json:"sortable,omitempty"`
}

// IndexSpec is the index-creation directive derived from a schema.
type IndexSpec struct {
	// Name identifies the index in the storage engine.
	Name string `json:"name"`
	// KeyPrefix scopes the index to keys of one entity type (e.g. "v:").
	KeyPrefix string `json:"keyPrefix"`
	// Fields holds one clause per indexed field, in schema order.
	Fields []IndexFieldSpec `json:"fields"`
}

// StoredDocument is the materialized form of an entity record: naming-key
// fields and data fields merged with the injected entity_type tag, persisted
// under the composed key with an expiry deadline derived from the schema TTL.
type StoredDocument struct {
	// Key is the composed storage key.
	Key string `json:"key"`
	// EntityType names the schema the document was materialized from.
	EntityType string `json:"entityType"`
	// Fields holds naming-key and data-field values plus the injected
	// entity_type tag.
	Fields map[string]any `json:"fields"`
	// StoredAt is the materialization timestamp.
	StoredAt strfmt.DateTime `json:"storedAt"`
	// ExpiresAt is the expiry deadline; nil means the document never expires.
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Expired reports whether the document's TTL has elapsed at the given time.
func (d *StoredDocument) Expired(now time.Time) bool {
	return d.ExpiresAt != nil && !now.Before(*d.ExpiresAt)
}

// Clone returns a deep-enough copy for handing across the storage boundary;
// field values themselves are shared.
func (d *StoredDocument) Clone() *StoredDocument {
	cp := *d
	cp.Fields = make(map[string]any, len(d.Fields))
	for k, v := range d.Fields {
		cp.Fields[k] = v
	}
	if d.ExpiresAt != nil {
		exp := *d.ExpiresAt
		cp.ExpiresAt = &exp
	}
	return &cp
}
