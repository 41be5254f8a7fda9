package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreateTouchDelete(t *testing.T) {
	m := NewManager(time.Hour, time.Hour, nil)

	s := m.Create("2024-11-05", "test-client", "1.0")
	require.NotEmpty(t, s.ID)
	require.Equal(t, "2024-11-05", s.ProtocolVersion)
	require.Equal(t, 1, m.Count())

	got, err := m.Touch(s.ID)
	require.NoError(t, err)
	require.Equal(t, s.ID, got.ID)

	got, err = m.Get(s.ID)
	require.NoError(t, err)
	require.Equal(t, "test-client", got.ClientName)

	require.NoError(t, m.Delete(s.ID))
	require.Equal(t, 0, m.Count())
	require.ErrorIs(t, m.Delete(s.ID), ErrNotFound)

	_, err = m.Touch("no-such-session")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestIdleExpiry(t *testing.T) {
	m := NewManager(300*time.Millisecond, time.Hour, nil)
	s := m.Create("2024-11-05", "test-client", "1.0")

	time.Sleep(200 * time.Millisecond)
	_, err := m.Touch(s.ID)
	require.NoError(t, err)

	// The touch restarted the idle clock, so the session survives past
	// its original deadline.
	time.Sleep(200 * time.Millisecond)
	_, err = m.Get(s.ID)
	require.NoError(t, err)

	time.Sleep(400 * time.Millisecond)
	_, err = m.Get(s.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteFiresEvictHook(t *testing.T) {
	var mu sync.Mutex
	var evicted []string
	m := NewManager(time.Hour, time.Hour, func(id string) {
		mu.Lock()
		evicted = append(evicted, id)
		mu.Unlock()
	})

	s := m.Create("2024-11-05", "test-client", "1.0")
	require.NoError(t, m.Delete(s.ID))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{s.ID}, evicted)
}

func TestRunSweepsExpired(t *testing.T) {
	var mu sync.Mutex
	var evicted []string
	m := NewManager(50*time.Millisecond, 30*time.Millisecond, func(id string) {
		mu.Lock()
		evicted = append(evicted, id)
		mu.Unlock()
	})

	s := m.Create("2024-11-05", "test-client", "1.0")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(evicted) == 1 && evicted[0] == s.ID
	}, time.Second, 10*time.Millisecond)
	require.Equal(t, 0, m.Count())
}
