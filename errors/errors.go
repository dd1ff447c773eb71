/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors
var (
	// ErrInvalidSchema is returned when a schema definition violates an invariant.
	// Schema-load failures are the only errors that should be fatal at startup.
	ErrInvalidSchema = errors.New("invalid schema definition")

	// ErrUnknownEntityType is returned when a caller references an unregistered entity type
	ErrUnknownEntityType = errors.New("unknown entity type")

	// ErrMissingNamingKey is returned when a record lacks a field required by the key format
	ErrMissingNamingKey = errors.New("missing naming key")

	// ErrUndeclaredField is returned when a record carries a field the schema does not declare
	ErrUndeclaredField = errors.New("undeclared field")

	// ErrIndexDrift is returned when a live index definition disagrees with the schema
	ErrIndexDrift = errors.New("index drift")

	// ErrNotFound is returned when a document is absent or expired
	ErrNotFound = errors.New("document not found")
)

// SchemaError describes an invalid schema definition.
type SchemaError struct {
	EntityType string
	Reason     string
}

func (e *SchemaError) Error() string {
	if e.EntityType != "" {
		return fmt.Sprintf("schema %q invalid: %s", e.EntityType, e.Reason)
	}
	return fmt.Sprintf("schema invalid: %s", e.Reason)
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// UnknownEntityTypeError is returned by registry lookups for unregistered types.
type UnknownEntityTypeError struct {
	EntityType string
}

func (e *UnknownEntityTypeError) Error() string {
	return fmt.Sprintf("entity type %q is not registered", e.EntityType)
}

func (e *UnknownEntityTypeError) Is(target error) bool {
	return target == ErrUnknownEntityType
}

// MissingNamingKeyError marks a record that cannot form a storage key.
type MissingNamingKeyError struct {
	EntityType string
	Field      string
}

func (e *MissingNamingKeyError) Error() string {
	return fmt.Sprintf("record for %q is missing naming key %q", e.EntityType, e.Field)
}

func (e *MissingNamingKeyError) Is(target error) bool {
	return target == ErrMissingNamingKey
}

// UndeclaredFieldError marks a record field outside the schema's closed field set.
type UndeclaredFieldError struct {
	EntityType string
	Field      string
}

func (e *UndeclaredFieldError) Error() string {
	return fmt.Sprintf("field %q is not declared in schema %q", e.Field, e.EntityType)
}

func (e *UndeclaredFieldError) Is(target error) bool {
	return target == ErrUndeclaredField
}

// IndexDriftError reports a live index whose definition disagrees with the schema.
// It is recoverable but requires an out-of-band index rebuild by an operator.
type IndexDriftError struct {
	IndexName   string
	Differences []string
}

func (e *IndexDriftError) Error() string {
	return fmt.Sprintf("index %q disagrees with schema: %s", e.IndexName, strings.Join(e.Differences, "; "))
}

func (e *IndexDriftError) Is(target error) bool {
	return target == ErrIndexDrift
}

// NotFoundError is returned when a document is absent or its TTL has elapsed.
type NotFoundError struct {
	EntityType string
	Key        string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.EntityType, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Helper functions for creating errors

// NewSchemaError creates a new SchemaError
func NewSchemaError(entityType, reason string) error {
	return &SchemaError{EntityType: entityType, Reason: reason}
}

// NewUnknownEntityTypeError creates a new UnknownEntityTypeError
func NewUnknownEntityTypeError(entityType string) error {
	return &UnknownEntityTypeError{EntityType: entityType}
}

// NewMissingNamingKeyError creates a new MissingNamingKeyError
func NewMissingNamingKeyError(entityType, field string) error {
	return &MissingNamingKeyError{EntityType: entityType, Field: field}
}

// NewUndeclaredFieldError creates a new UndeclaredFieldError
func NewUndeclaredFieldError(entityType, field string) error {
	return &UndeclaredFieldError{EntityType: entityType, Field: field}
}

// NewIndexDriftError creates a new IndexDriftError
func NewIndexDriftError(indexName string, differences []string) error {
	return &IndexDriftError{IndexName: indexName, Differences: differences}
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType, key string) error {
	return &NotFoundError{EntityType: entityType, Key: key}
}

// IsInvalidSchema checks if an error is a schema definition error
func IsInvalidSchema(err error) bool {
	return errors.Is(err, ErrInvalidSchema)
}

// IsUnknownEntityType checks if an error is an unknown entity type error
func IsUnknownEntityType(err error) bool {
	return errors.Is(err, ErrUnknownEntityType)
}

// IsMissingNamingKey checks if an error is a missing naming key error
func IsMissingNamingKey(err error) bool {
	return errors.Is(err, ErrMissingNamingKey)
}

// IsUndeclaredField checks if an error is an undeclared field error
func IsUndeclaredField(err error) bool {
	return errors.Is(err, ErrUndeclaredField)
}

// IsIndexDrift checks if an error is an index drift error
func IsIndexDrift(err error) bool {
	return errors.Is(err, ErrIndexDrift)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
