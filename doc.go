/*
Package transitstore is a schema-driven entity materialization engine for
real-time transit data.

Entity types (vehicle positions, trip updates, service alerts, and any
extension added purely by data) are described by declarative schemas: a
one-letter key prefix, an ordered set of naming keys, a closed set of data
fields, a TTL, and an index field specification. The engine gives those
schemas meaning:

  - deterministic key construction from the ordered naming keys
    ("v:c1:t1:XYZ1:1000")
  - document materialization with TTL-governed lifecycle
  - automatic search-index provisioning and drift detection

Feed decoding, query execution, and polling schedulers are external
collaborators; the engine consumes typed entity records and talks to a
document store through the datastore.DocumentStore boundary.

Basic Usage:

	defs, _ := config.LoadDefinitions("schemas.json")
	reg, err := schema.FromDefinitions(defs)
	if err != nil {
	    // fatal: invalid schema definitions
	}

	store := transitstore.New(reg, memory.New())
	if err := store.EnsureIndexes(ctx); err != nil {
	    // index drift requires an operator-driven rebuild
	}

	key, err := store.Put(ctx, "vehicle", storagemodels.Record{
	    "company_id": "c1", "trip_id": "t1",
	    "licence_plate": "XYZ1", "timestamp": 1000,
	    "speed": 12.5, "location": "1.0,2.0",
	}, time.Now())

For more information, see the documentation at https://github.com/suparena/transitstore
*/
package transitstore
