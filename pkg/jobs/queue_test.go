package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	var processed int64
	done := make(chan struct{}, 3)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		atomic.AddInt64(&processed, 1)
		done <- struct{}{}
		return nil
	}, QueueConfig{Workers: 2})

	q.Start(context.Background())
	defer q.Stop()

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(Job{ID: "job", Type: "noop"}))
	}
	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for jobs")
		}
	}
	assert.Equal(t, int64(3), atomic.LoadInt64(&processed))
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	done := make(chan struct{})
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 5, RetryDelay: 10 * time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "flaky", Type: "noop"}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried to success")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, attempts)
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})

	require.Error(t, q.Enqueue(Job{ID: "early"}))
}

func TestQueueStopIsIdempotentAfterDrain(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	q.Start(context.Background())
	q.Stop()
	q.Stop()
}
