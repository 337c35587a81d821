package audience

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestStoreOpenGetClose(t *testing.T) {
	store := NewStore(MockGenerator{})
	ctx := context.Background()

	session, err := store.Open(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID())
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(ctx, session.ID())
	require.NoError(t, err)
	assert.Same(t, session, got)

	require.NoError(t, store.Close(ctx, session.ID()))
	assert.True(t, session.Closed())
	assert.Equal(t, 0, store.Len())

	_, err = store.Get(ctx, session.ID())
	assert.True(t, IsSessionNotFound(err))
	assert.True(t, IsSessionNotFound(store.Close(ctx, session.ID())))
}

func TestStoreSessionsAreIsolated(t *testing.T) {
	store := NewStore(MockGenerator{})
	defer store.CloseAll()
	ctx := context.Background()

	a, err := store.Open(ctx)
	require.NoError(t, err)
	b, err := store.Open(ctx)
	require.NoError(t, err)
	require.NotEqual(t, a.ID(), b.ID())

	job, err := a.Submit(ctx, TargetingInput{})
	require.NoError(t, err)
	_, err = job.Wait(ctx)
	require.NoError(t, err)

	assert.Equal(t, TabInsights, a.Snapshot().ActiveTab)
	assert.Equal(t, InitialState(), b.Snapshot())
}

func TestStoreSweepClosesIdleSessions(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	n := 0
	store := NewStore(MockGenerator{},
		WithIdleTTL(time.Minute),
		WithStoreClock(clock.Now),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("session-%d", n)
		}),
	)
	defer store.CloseAll()
	ctx := context.Background()

	idle, err := store.Open(ctx)
	require.NoError(t, err)
	clock.Advance(45 * time.Second)
	active, err := store.Open(ctx)
	require.NoError(t, err)
	assert.Equal(t, "session-2", active.ID())

	clock.Advance(30 * time.Second)
	assert.Equal(t, 1, store.Sweep(ctx))
	assert.True(t, idle.Closed())
	assert.False(t, active.Closed())

	_, err = store.Get(ctx, idle.ID())
	assert.True(t, IsSessionNotFound(err))
}

func TestStoreSweepDisabledWithoutTTL(t *testing.T) {
	store := NewStore(MockGenerator{})
	defer store.CloseAll()

	_, err := store.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, store.Sweep(context.Background()))
	assert.Equal(t, 1, store.Len())
}

func TestStoreAppliesSessionOptions(t *testing.T) {
	rec := &eventRecorder{}
	store := NewStore(MockGenerator{}, WithSessionOptions(WithListener(rec.listen)))
	ctx := context.Background()

	session, err := store.Open(ctx)
	require.NoError(t, err)
	_, err = session.SelectTab(TabTargeting)
	require.NoError(t, err)
	store.CloseAll()

	assert.Equal(t, []EventKind{EventTabSelected, EventSessionClosed}, rec.kinds())
}
