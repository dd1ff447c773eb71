/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package document materializes entity records into stored documents and
// enforces TTL for stores without a native expiry mechanism.
package document

import (
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/transitstore/errors"
	"github.com/suparena/transitstore/schema"
	"github.com/suparena/transitstore/storagemodels"
)

// Materialize merges a record's naming-key and data-field values into a
// StoredDocument, injecting the entity_type tag and computing the expiry
// deadline from the schema TTL.
//
// The schema is closed: a record field outside namingKeys ∪ dataFields is
// rejected with UndeclaredFieldError, and every naming key must be present.
// One bad record never affects the rest of a batch; the caller gets the
// error and moves on.
func Materialize(s *schema.EntitySchema, rec storagemodels.Record, now time.Time) (*storagemodels.StoredDocument, error) {
	for field := range rec {
		if !s.Declared(field) {
			return nil, errors.NewUndeclaredFieldError(s.EntityType, field)
		}
	}
	for _, nk := range s.NamingKeys {
		if v, ok := rec[nk]; !ok || v == nil {
			return nil, errors.NewMissingNamingKeyError(s.EntityType, nk)
		}
	}

	fields := make(map[string]any, len(rec)+1)
	for k, v := range rec {
		fields[k] = v
	}
	fields[schema.EntityTypeField] = s.EntityType

	doc := &storagemodels.StoredDocument{
		EntityType: s.EntityType,
		Fields:     fields,
		StoredAt:   strfmt.DateTime(now),
	}
	if s.TTLSeconds > 0 {
		exp := now.Add(s.TTL())
		doc.ExpiresAt = &exp
	}
	return doc, nil
}
