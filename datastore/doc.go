/*
Package datastore defines the storage boundary for TransitStore.

The DocumentStore interface covers exactly the operations the engine needs:
per-key document upsert/get/delete and index create/describe.

Implementations:
  - memory: in-process map, lazy expiry, sweeper support (also the test double)
  - badgerstore: embedded Badger with native per-entry TTL
  - ddb: DynamoDB single-table with a native TTL attribute
*/
package datastore
