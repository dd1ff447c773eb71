/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"
	"time"

	"github.com/suparena/transitstore/storagemodels"
)

// DocumentStore is the storage boundary of the materialization engine. The
// engine issues document upserts, gets, deletes, and index create/describe
// operations; the transport behind them is an implementation choice.
//
// Get and DescribeIndex return (nil, nil) when the target is absent; the
// facade layers the NotFoundError semantics on top. Set must be an atomic
// per-key upsert: last write wins by wall-clock arrival order.
type DocumentStore interface {
	Set(ctx context.Context, key string, doc *storagemodels.StoredDocument, ttl time.Duration) error

	Get(ctx context.Context, key string) (*storagemodels.StoredDocument, error)

	Delete(ctx context.Context, key string) error

	CreateIndex(ctx context.Context, spec *storagemodels.IndexSpec) error

	DescribeIndex(ctx context.Context, name string) (*storagemodels.IndexSpec, error)

	// NativeTTL reports whether the store expires documents itself. When
	// false, the document sweeper enforces TTL instead.
	NativeTTL() bool
}

// ExpiryScanner is implemented by stores without native TTL so the sweeper
// can find overdue documents in time-bounded batches.
type ExpiryScanner interface {
	// ExpiredKeys returns up to limit keys whose expiry deadline has passed
	// at the given time.
	ExpiredKeys(ctx context.Context, now time.Time, limit int) ([]string, error)
}
