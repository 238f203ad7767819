package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gucorpling/squeezer/pkg/adapters/memory"
	"github.com/gucorpling/squeezer/pkg/domain"
	"github.com/gucorpling/squeezer/pkg/ports"
	"github.com/gucorpling/squeezer/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s SlowStore) Load(ctx context.Context, id string) (*domain.Document, error) {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	return s.Store.Load(ctx, id)
}

func (s SlowStore) Save(ctx context.Context, doc *domain.Document) error {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	return s.Store.Save(ctx, doc)
}

func TestManager_UpdateIsSerialized(t *testing.T) {
	store := SlowStore{memory.NewStore()}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "race-test"

	require.NoError(t, manager.Save(ctx, domain.NewDocument(id)))

	var wg sync.WaitGroup
	writers := 10
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Read-modify-write: without the lock some additions would be lost.
			err := manager.Update(ctx, id, func(ctx context.Context, doc *domain.Document) error {
				doc.Graph.AddNode(domain.KindConstituent, "n")
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	doc, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, writers, doc.Graph.NodeCount())
}

func TestManager_UpdateFailureSkipsSave(t *testing.T) {
	store := memory.NewStore()
	manager := session.NewManager(store)
	ctx := context.Background()
	require.NoError(t, manager.Save(ctx, domain.NewDocument("d")))

	boom := errors.New("boom")
	err := manager.Update(ctx, "d", func(ctx context.Context, doc *domain.Document) error {
		doc.Graph.AddNode(domain.KindConstituent, "n")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	doc, err := manager.Load(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Graph.NodeCount())
}

func TestManager_UpdateMissing(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	err := manager.Update(context.Background(), "nope", func(context.Context, *domain.Document) error { return nil })
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

type recordingLocker struct {
	locked   atomic.Int32
	unlocked atomic.Int32
	ttl      time.Duration
	err      error
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.ttl = ttl
	l.locked.Add(1)
	return func(context.Context) error {
		l.unlocked.Add(1)
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &recordingLocker{}
	manager := session.NewManager(memory.NewStore(),
		session.WithLocker(locker),
		session.WithLockTTL(time.Minute),
	)
	ctx := context.Background()

	require.NoError(t, manager.Save(ctx, domain.NewDocument("d")))
	_, err := manager.Load(ctx, "d")
	require.NoError(t, err)

	assert.Equal(t, int32(2), locker.locked.Load())
	assert.Equal(t, int32(2), locker.unlocked.Load())
	assert.Equal(t, time.Minute, locker.ttl)
}

func TestManager_DistributedLockerFailure(t *testing.T) {
	locker := &recordingLocker{err: errors.New("redis down")}
	manager := session.NewManager(memory.NewStore(), session.WithLocker(locker))

	called := false
	err := manager.WithLock(context.Background(), "d", func(context.Context) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}
