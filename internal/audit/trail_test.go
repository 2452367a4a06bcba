package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingStore struct {
	mu      sync.Mutex
	batches [][]Entry
}

func (s *recordingStore) WriteBatch(_ context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, append([]Entry(nil), entries...))
	return nil
}

func (s *recordingStore) FetchLogs(context.Context, Filter) ([]Entry, error) {
	return nil, nil
}

func (s *recordingStore) all() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Entry
	for _, b := range s.batches {
		out = append(out, b...)
	}
	return out
}

func TestTrail_StopFlushesEverything(t *testing.T) {
	store := &recordingStore{}
	trail := NewTrail(store, zap.NewNop(), nil)
	trail.Start()

	for i := 0; i < 250; i++ {
		trail.Log(Entry{Actor: "admin", Action: "user.delete", Status: StatusSuccess})
	}
	trail.Stop()

	entries := store.all()
	require.Len(t, entries, 250)
	for _, e := range entries {
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.Timestamp.IsZero())
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	for _, b := range store.batches {
		assert.LessOrEqual(t, len(b), batchSize)
	}
}

func TestTrail_FlushesOnTimer(t *testing.T) {
	store := &recordingStore{}
	trail := NewTrail(store, zap.NewNop(), nil)
	trail.Start()
	defer trail.Stop()

	trail.Log(Entry{Action: "session.revoke"})

	assert.Eventually(t, func() bool {
		return len(store.all()) == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestTrail_LogAfterStopIsDropped(t *testing.T) {
	store := &recordingStore{}
	trail := NewTrail(store, zap.NewNop(), nil)
	trail.Start()
	trail.Stop()

	assert.NotPanics(t, func() {
		trail.Log(Entry{Action: "user.delete"})
	})
	assert.NotPanics(t, trail.Stop)
	assert.Empty(t, store.all())
}

func TestTrail_StopRacesWithLog(t *testing.T) {
	store := &recordingStore{}
	trail := NewTrail(store, zap.NewNop(), nil)
	trail.Start()

	const writers, perWriter = 8, 200
	var accepted sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < writers; i++ {
		accepted.Add(1)
		go func() {
			defer accepted.Done()
			<-start
			for j := 0; j < perWriter; j++ {
				trail.Log(Entry{Action: "session.delete"})
			}
		}()
	}

	close(start)
	assert.NotPanics(t, trail.Stop)
	accepted.Wait()

	assert.LessOrEqual(t, len(store.all()), writers*perWriter)
}

func TestLogStore_FetchNewestFirstWithFilter(t *testing.T) {
	s := NewLogStore(zap.NewNop(), 3)
	ctx := context.Background()

	require.NoError(t, s.WriteBatch(ctx, []Entry{
		{ID: "1", Actor: "ann", Action: "user.delete"},
		{ID: "2", Actor: "bob", Action: "user.delete"},
	}))
	require.NoError(t, s.WriteBatch(ctx, []Entry{
		{ID: "3", Actor: "ann", Action: "session.revoke"},
		{ID: "4", Actor: "ann", Action: "user.delete"},
	}))

	all, err := s.FetchLogs(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"4", "3", "2"}, ids(all))

	byActor, err := s.FetchLogs(ctx, Filter{Actor: "ann", Action: "user.delete"})
	require.NoError(t, err)
	assert.Equal(t, []string{"4"}, ids(byActor))

	none, err := s.FetchLogs(ctx, Filter{Actor: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func ids(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}
