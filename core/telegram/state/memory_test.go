package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreDefaultsToIdle(t *testing.T) {
	s := NewMemoryStore()
	got := s.Get(1)
	assert.True(t, got.Idle())
	assert.Equal(t, StateIdle, got.State)
	assert.Zero(t, s.Len())
}

func TestMemoryStoreSetAndClear(t *testing.T) {
	s := NewMemoryStore()
	s.Set(1, Session{State: "awaiting", Payload: "2025-06-01"})
	s.Set(2, Session{State: "awaiting"})
	require.Equal(t, 2, s.Len())
	assert.Equal(t, "2025-06-01", s.Get(1).Payload)

	s.Set(1, Session{State: StateIdle, Payload: "ignored"})
	assert.True(t, s.Get(1).Idle())
	assert.Empty(t, s.Get(1).Payload)

	s.Clear(2)
	assert.Zero(t, s.Len())
}

func TestMemoryStoreLockSerialisesUser(t *testing.T) {
	s := NewMemoryStore()
	const workers = 50

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := s.Lock(7)
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()
	assert.Equal(t, workers, counter)

	m := s.(*memoryStore)
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	assert.Empty(t, m.locks)
}

func TestMemoryStoreUnlockIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	unlock := s.Lock(3)
	unlock()
	unlock()
	relock := s.Lock(3)
	relock()
}
