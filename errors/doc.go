/*
Package errors provides semantic error types for TransitStore.

The taxonomy separates fatal configuration problems from recoverable
per-record and operational failures:

  - SchemaError: malformed schema definition, fatal at load
  - UnknownEntityTypeError: caller referenced an unregistered type
  - MissingNamingKeyError, UndeclaredFieldError: one malformed record,
    rejected without affecting the rest of a batch
  - IndexDriftError: live index disagrees with the schema, requires an
    operator-driven rebuild
  - NotFoundError: expired or never-written key

All typed errors implement Is against their sentinel, so callers can use
errors.Is or the provided predicates:

	_, err := store.Get(ctx, "vehicle", key)
	if errors.IsNotFound(err) {
	    // expired or absent, expected
	}

Storage transport errors are wrapped with %w and pass through unchanged;
retry policy belongs to the caller.
*/
package errors
