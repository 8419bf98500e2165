package session

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoposter-bot/internal/domain"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, ok, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	want := State{Step: StepAwaitingTopic, Platform: domain.PlatformReddit, LastPostID: uuid.New()}
	require.NoError(t, store.Set(ctx, 1, want))
	got, ok, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, store.Clear(ctx, 1))
	_, ok, _ = store.Get(ctx, 1)
	assert.False(t, ok)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	var wg sync.WaitGroup
	for i := int64(0); i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_ = store.Set(ctx, id, State{Step: StepAwaitingTopic})
			_, _, _ = store.Get(ctx, id)
			_ = store.Clear(ctx, id)
		}(i)
	}
	wg.Wait()
	assert.Empty(t, store.states)
}
