package services

import (
	"context"
	"member-locator-service/internal/adapters/geocoding"
	"member-locator-service/internal/adapters/position"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore(time.Minute, nil)
	l := newTestLocator(position.Client{}, geocoding.NewMockGeocoder(places()))

	id := store.Add(l)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	got, ok := store.Get(id)
	require.True(t, ok)
	assert.Same(t, l, got)
	assert.Equal(t, 1, store.Len())

	assert.True(t, store.Remove(id))
	assert.False(t, store.Remove(id))
	assert.True(t, l.Closed())

	_, ok = store.Get(id)
	assert.False(t, ok)
}

func TestSessionStoreSweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore(10*time.Minute, nil)
	store.now = func() time.Time { return now }

	geo := geocoding.NewMockGeocoder(places())
	idle := newTestLocator(position.Client{}, geo)
	busy := newTestLocator(position.Client{}, geo)

	idleID := store.Add(idle)
	busyID := store.Add(busy)

	now = now.Add(8 * time.Minute)
	_, ok := store.Get(busyID)
	require.True(t, ok)

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 1, store.Sweep())

	_, ok = store.Get(idleID)
	assert.False(t, ok)
	assert.True(t, idle.Closed())
	assert.False(t, busy.Closed())
}

func TestSessionStoreRunClosesOnShutdown(t *testing.T) {
	store := NewSessionStore(time.Minute, nil)
	l := newTestLocator(position.Client{}, geocoding.NewMockGeocoder(places()))
	store.Add(l)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx, time.Hour)
		close(done)
	}()

	cancel()
	<-done

	assert.True(t, l.Closed())
	assert.Equal(t, 0, store.Len())
}
