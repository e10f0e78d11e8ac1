package outbox

import (
	"testing"
	"time"

	settlementv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/settlement/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_PutGetDelete(t *testing.T) {
	s := newStore(t)

	_, ok, err := s.Get("m1", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	entry := &settlementv1.OutboxEntry{MarketID: "m1", BatchID: 1, State: settlementv1.OutboxPending}
	require.NoError(t, s.Put(entry))

	got, ok, err := s.Get("m1", 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, settlementv1.OutboxPending, got.State)

	entry.State = settlementv1.OutboxSent
	entry.Reference = "m1:1"
	require.NoError(t, s.Put(entry))

	got, _, err = s.Get("m1", 1)
	require.NoError(t, err)
	assert.Equal(t, "m1:1", got.Reference)

	require.NoError(t, s.Delete("m1", 1))
	_, ok, err = s.Get("m1", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Due(t *testing.T) {
	s := newStore(t)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	entries := []*settlementv1.OutboxEntry{
		{MarketID: "m1", BatchID: 2, State: settlementv1.OutboxPending, NextAttempt: now.Add(-time.Second)},
		{MarketID: "m1", BatchID: 10, State: settlementv1.OutboxPending, NextAttempt: now},
		{MarketID: "m1", BatchID: 3, State: settlementv1.OutboxPending, NextAttempt: now.Add(time.Minute)},
		{MarketID: "m2", BatchID: 1, State: settlementv1.OutboxSent, NextAttempt: now.Add(-time.Hour)},
		{MarketID: "m2", BatchID: 2, State: settlementv1.OutboxPending},
	}
	for _, e := range entries {
		require.NoError(t, s.Put(e))
	}

	due, err := s.Due(settlementv1.OutboxPending, now, 0)
	require.NoError(t, err)
	require.Len(t, due, 3)
	// keys are zero padded so batch 2 sorts before batch 10
	assert.Equal(t, int64(2), due[0].BatchID)
	assert.Equal(t, int64(10), due[1].BatchID)
	assert.Equal(t, "m2", due[2].MarketID)

	limited, err := s.Due(settlementv1.OutboxPending, now, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	sent, err := s.Due(settlementv1.OutboxSent, now, 0)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "m2", sent[0].MarketID)
}

func TestStore_Reopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(&settlementv1.OutboxEntry{MarketID: "m1", BatchID: 4, State: settlementv1.OutboxSent, Attempts: 2}))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()

	got, ok, err := s.Get("m1", 4)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, got.Attempts)
}
