/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package document

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/transitstore/datastore/memory"
	"github.com/suparena/transitstore/storagemodels"
)

func storeDoc(t *testing.T, store *memory.Store, key string, expiresAt *time.Time) {
	t.Helper()
	err := store.Set(context.Background(), key, &storagemodels.StoredDocument{
		Key:        key,
		EntityType: "vehicle",
		Fields:     map[string]any{"entity_type": "vehicle"},
		ExpiresAt:  expiresAt,
	}, 0)
	require.NoError(t, err)
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	base := time.Now()
	store := memory.New().WithClock(func() time.Time { return base })

	past := base.Add(-time.Minute)
	future := base.Add(time.Hour)
	storeDoc(t, store, "v:c1:t1:AAA1:100", &past)
	storeDoc(t, store, "v:c1:t1:BBB2:200", &future)
	storeDoc(t, store, "a:c1:alert1", nil)

	sw, err := NewSweeper(store, WithClock(func() time.Time { return base }))
	require.NoError(t, err)

	removed, err := sw.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, store.Len())

	// A second pass finds nothing new.
	removed, err = sw.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestSweepDrainsInBatches(t *testing.T) {
	base := time.Now()
	store := memory.New().WithClock(func() time.Time { return base })

	past := base.Add(-time.Second)
	for i := 0; i < 25; i++ {
		storeDoc(t, store, fmt.Sprintf("v:c1:t1:PLATE%d:%d", i, i), &past)
	}

	sw, err := NewSweeper(store,
		WithBatchSize(4),
		WithClock(func() time.Time { return base }),
	)
	require.NoError(t, err)

	removed, err := sw.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25, removed)
	assert.Zero(t, store.Len())
}

func TestSweepHonorsCancellation(t *testing.T) {
	store := memory.New()
	sw, err := NewSweeper(store)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = sw.Sweep(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSweeperRequiresExpiryScanner(t *testing.T) {
	_, err := NewSweeper(nativeTTLStore{})
	assert.Error(t, err)
}

func TestRunStopsOnCancel(t *testing.T) {
	store := memory.New()
	sw, err := NewSweeper(store, WithInterval(time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sw.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}

// nativeTTLStore is a DocumentStore without expiry scans.
type nativeTTLStore struct{}

func (nativeTTLStore) Set(context.Context, string, *storagemodels.StoredDocument, time.Duration) error {
	return nil
}
func (nativeTTLStore) Get(context.Context, string) (*storagemodels.StoredDocument, error) {
	return nil, nil
}
func (nativeTTLStore) Delete(context.Context, string) error { return nil }
func (nativeTTLStore) CreateIndex(context.Context, *storagemodels.IndexSpec) error {
	return nil
}
func (nativeTTLStore) DescribeIndex(context.Context, string) (*storagemodels.IndexSpec, error) {
	return nil, nil
}
func (nativeTTLStore) NativeTTL() bool { return true }
