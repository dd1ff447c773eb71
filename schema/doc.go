/*
Package schema manages entity schema definitions for TransitStore.

A schema describes one real-time entity type (vehicle, trip_update, alert,
or any extension added purely by data): its storage key prefix, ordered
naming keys, payload fields, TTL, and index field clauses.

Registries load atomically and are immutable afterwards:

	reg, err := schema.FromDefinitions(defs)
	if err != nil {
	    // fatal at startup: a schema violated an invariant
	}
	vehicle, _ := reg.Lookup("vehicle")

The Definition type accepts the existing JSON definition files unchanged,
including the FT.CREATE-style create_index_query string.
*/
package schema
