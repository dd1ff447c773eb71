/*
Package storagemodels defines the data shapes that cross TransitStore's
storage boundary: ingestion records, materialized documents, and the index
specifications the reconciler derives from entity schemas.
*/
package storagemodels
