/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package keys composes storage keys from entity schemas and records.
//
// A key has the form {entityKeyPrefix}:{v1}:{v2}:...:{vn} where v1..vn are
// the record's naming-key values in schema order. Composition is pure and
// deterministic, so re-ingesting the same observation overwrites rather
// than duplicates.
package keys

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/suparena/transitstore/errors"
	"github.com/suparena/transitstore/schema"
	"github.com/suparena/transitstore/storagemodels"
)

// Separator joins the prefix and naming-key values inside a key.
const Separator = ':'

const escapeChar = '\\'

// Compose derives the storage key for a record from the schema's ordered
// naming keys. Values are rendered losslessly and escaped so that a
// separator inside a value (e.g. a licence plate) cannot collide with the
// key format.
func Compose(s *schema.EntitySchema, rec storagemodels.Record) (string, error) {
	var b strings.Builder
	b.WriteString(escape(s.EntityKeyPrefix))
	for _, nk := range s.NamingKeys {
		v, ok := rec[nk]
		if !ok || v == nil {
			return "", errors.NewMissingNamingKeyError(s.EntityType, nk)
		}
		rendered, err := Render(v)
		if err != nil {
			return "", fmt.Errorf("naming key %q of %q: %w", nk, s.EntityType, err)
		}
		b.WriteByte(Separator)
		b.WriteString(escape(rendered))
	}
	return b.String(), nil
}

// Decompose splits a composed key back into its prefix and naming-key
// values, reversing the escaping applied by Compose.
func Decompose(key string) (prefix string, values []string, err error) {
	var parts []string
	var cur strings.Builder
	escaped := false
	for _, r := range key {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == escapeChar:
			escaped = true
		case r == Separator:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		return "", nil, fmt.Errorf("key %q ends with a dangling escape", key)
	}
	parts = append(parts, cur.String())
	return parts[0], parts[1:], nil
}

// Render converts a naming-key value to its lossless string form. Integers
// keep their exact digits; floats use the shortest round-trip
// representation, so a whole-number float64 (the usual JSON decoding of a
// timestamp) renders without a fractional part.
func Render(v any) (string, error) {
	switch tv := v.(type) {
	case string:
		return tv, nil
	case int:
		return strconv.FormatInt(int64(tv), 10), nil
	case int8:
		return strconv.FormatInt(int64(tv), 10), nil
	case int16:
		return strconv.FormatInt(int64(tv), 10), nil
	case int32:
		return strconv.FormatInt(int64(tv), 10), nil
	case int64:
		return strconv.FormatInt(tv, 10), nil
	case uint:
		return strconv.FormatUint(uint64(tv), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(tv), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(tv), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(tv), 10), nil
	case uint64:
		return strconv.FormatUint(tv, 10), nil
	case float32:
		return strconv.FormatFloat(float64(tv), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(tv), nil
	case fmt.Stringer:
		return tv.String(), nil
	default:
		return "", fmt.Errorf("value of type %T cannot be rendered into a key", v)
	}
}

func escape(v string) string {
	if !strings.ContainsAny(v, "\\:") {
		return v
	}
	var b strings.Builder
	b.Grow(len(v) + 2)
	for _, r := range v {
		if r == escapeChar || r == Separator {
			b.WriteByte(escapeChar)
		}
		b.WriteRune(r)
	}
	return b.String()
}
