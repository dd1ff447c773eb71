/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package memory provides an in-process DocumentStore. It backs unit tests
// and single-node deployments that can tolerate losing documents on restart.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/suparena/transitstore/storagemodels"
)

// Store is a map-backed DocumentStore. It has no native TTL: Get checks the
// expiry deadline lazily, and the document sweeper reclaims expired entries.
type Store struct {
	mu      sync.RWMutex
	docs    map[string]*storagemodels.StoredDocument
	indexes map[string]*storagemodels.IndexSpec
	now     func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		docs:    make(map[string]*storagemodels.StoredDocument),
		indexes: make(map[string]*storagemodels.IndexSpec),
		now:     time.Now,
	}
}

// WithClock overrides the store's notion of the current time. Tests use it
// to cross TTL boundaries without sleeping.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Set upserts the document under key. The ttl argument is unused: the store
// has no native TTL mechanism and relies on doc.ExpiresAt instead.
func (s *Store) Set(ctx context.Context, key string, doc *storagemodels.StoredDocument, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = doc.Clone()
	return nil
}

// Get returns the document under key, or (nil, nil) when it is absent or
// its TTL has elapsed.
func (s *Store) Get(ctx context.Context, key string) (*storagemodels.StoredDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[key]
	if !ok || doc.Expired(s.now()) {
		return nil, nil
	}
	return doc.Clone(), nil
}

// Delete removes the document under key. Deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, key)
	return nil
}

// CreateIndex records the index definition.
func (s *Store) CreateIndex(ctx context.Context, spec *storagemodels.IndexSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.indexes[spec.Name]; exists {
		return fmt.Errorf("index %q already exists", spec.Name)
	}
	cp := *spec
	cp.Fields = append([]storagemodels.IndexFieldSpec(nil), spec.Fields...)
	s.indexes[spec.Name] = &cp
	return nil
}

// DescribeIndex returns the recorded index definition, or (nil, nil) when
// no index with that name exists.
func (s *Store) DescribeIndex(ctx context.Context, name string) (*storagemodels.IndexSpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	spec, ok := s.indexes[name]
	if !ok {
		return nil, nil
	}
	cp := *spec
	cp.Fields = append([]storagemodels.IndexFieldSpec(nil), spec.Fields...)
	return &cp, nil
}

// NativeTTL reports false: expiry is enforced lazily on Get and by the
// document sweeper.
func (s *Store) NativeTTL() bool { return false }

// ExpiredKeys returns up to limit keys whose deadline has passed at now.
func (s *Store) ExpiredKeys(ctx context.Context, now time.Time, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for key, doc := range s.docs {
		if doc.Expired(now) {
			out = append(out, key)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// Len reports the number of stored documents, including not-yet-swept
// expired ones.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
