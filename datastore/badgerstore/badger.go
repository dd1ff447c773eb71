/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package badgerstore provides a DocumentStore backed by an embedded Badger
// database. Badger expires entries natively, so no sweeper is needed.
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/suparena/transitstore/storagemodels"
)

// Index catalog entries live in their own key namespace so they never read
// back as documents.
const indexKeyPrefix = "!idx!"

// Store is a Badger-backed DocumentStore.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a Badger database at dir and wraps it in a Store.
func Open(dir string) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a non-persistent Badger database, useful in tests.
func OpenInMemory() (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory badger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Set upserts the document under key, delegating expiry to Badger's entry
// TTL when ttl > 0.
func (s *Store) Set(ctx context.Context, key string, doc *storagemodels.StoredDocument, ttl time.Duration) error {
	val, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document %q: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), val)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Get returns the document under key, or (nil, nil) when absent or expired.
func (s *Store) Get(ctx context.Context, key string) (*storagemodels.StoredDocument, error) {
	var doc *storagemodels.StoredDocument
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			doc = &storagemodels.StoredDocument{}
			return json.Unmarshal(val, doc)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return doc, nil
}

// Delete removes the document under key. Deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// CreateIndex records the index definition in the catalog.
func (s *Store) CreateIndex(ctx context.Context, spec *storagemodels.IndexSpec) error {
	val, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("failed to marshal index spec %q: %w", spec.Name, err)
	}
	key := []byte(indexKeyPrefix + spec.Name)
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return fmt.Errorf("index %q already exists", spec.Name)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, val)
	})
}

// DescribeIndex returns the catalog entry for name, or (nil, nil) when no
// index with that name exists.
func (s *Store) DescribeIndex(ctx context.Context, name string) (*storagemodels.IndexSpec, error) {
	var spec *storagemodels.IndexSpec
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(indexKeyPrefix + name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			spec = &storagemodels.IndexSpec{}
			return json.Unmarshal(val, spec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to describe index %q: %w", name, err)
	}
	return spec, nil
}

// NativeTTL reports true: Badger expires entries itself.
func (s *Store) NativeTTL() bool { return true }
