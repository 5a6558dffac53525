package handoff

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishThenTakeOnce(t *testing.T) {
	h := New[string]()
	require.NoError(t, h.Publish("surface"))
	assert.True(t, h.Published())

	v, err := h.AwaitAndTake(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "surface", v)

	v, err = h.AwaitAndTake(10 * time.Millisecond)
	assert.ErrorIs(t, err, ErrNotAvailable)
	assert.Empty(t, v)
}

func TestSecondPublishFails(t *testing.T) {
	h := New[int]()
	require.NoError(t, h.Publish(1))
	assert.ErrorIs(t, h.Publish(2), ErrAlreadyPublished)

	v, err := h.AwaitAndTake(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestTimeoutWithoutPublish(t *testing.T) {
	h := New[int]()
	start := time.Now()
	_, err := h.AwaitAndTake(20 * time.Millisecond)
	assert.ErrorIs(t, err, ErrNotAvailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.False(t, h.Published())
}

func TestWaiterWakesOnPublish(t *testing.T) {
	h := New[int]()
	got := make(chan int, 1)
	go func() {
		v, err := h.AwaitAndTake(5 * time.Second)
		if err == nil {
			got <- v
		}
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, h.Publish(42))

	select {
	case v := <-got:
		assert.Equal(t, 42, v)
	case <-time.After(5 * time.Second):
		t.Fatal("waiter never woke")
	}
}

func TestPublishedValueBeatsExpiredContext(t *testing.T) {
	h := New[int]()
	require.NoError(t, h.Publish(7))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v, err := h.AwaitAndTakeContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestExactlyOneConcurrentTaker(t *testing.T) {
	h := New[int]()
	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.AwaitAndTake(time.Second); err == nil {
				wins.Add(1)
			}
		}()
	}
	require.NoError(t, h.Publish(1))
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}
