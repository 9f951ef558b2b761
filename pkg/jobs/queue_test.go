package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDispatchesByType(t *testing.T) {
	q := NewQueue("test", QueueConfig{Workers: 2})
	done := make(chan interface{}, 1)
	q.Handle("recount", func(_ context.Context, job Job) error {
		done <- job.Payload
		return nil
	})
	q.Start(context.Background())
	defer q.Stop()

	id, err := q.Enqueue("recount", "sem-1")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case payload := <-done:
		assert.Equal(t, "sem-1", payload)
	case <-time.After(time.Second):
		t.Fatal("job was not processed")
	}
}

func TestQueueRetriesFailures(t *testing.T) {
	q := NewQueue("test", QueueConfig{MaxRetries: 2, RetryDelay: 5 * time.Millisecond})
	var attempts int32
	succeeded := make(chan struct{})
	q.Handle("flaky", func(context.Context, Job) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("transient")
		}
		close(succeeded)
		return nil
	})
	q.Start(context.Background())
	defer q.Stop()

	_, err := q.Enqueue("flaky", nil)
	require.NoError(t, err)

	select {
	case <-succeeded:
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	case <-time.After(2 * time.Second):
		t.Fatal("job never succeeded")
	}
}

func TestQueueRejectsUnknownTypeAndStopped(t *testing.T) {
	q := NewQueue("test", QueueConfig{})
	q.Handle("known", func(context.Context, Job) error { return nil })

	_, err := q.Enqueue("missing", nil)
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = q.Enqueue("known", nil)
	assert.Error(t, err)

	q.Start(context.Background())
	q.Stop()
	_, err = q.Enqueue("known", nil)
	assert.Error(t, err)
}
