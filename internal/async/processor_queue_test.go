package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-tracker/internal/common"
)

func TestProcessorQueueDrains(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
		ids  []string
	)
	h := HandlerFunc(func(ctx context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, job.Path)
		ids = append(ids, common.RequestIDFromContext(ctx))
		return nil
	})
	q := NewProcessorQueue(h, nil, WithWorkers(3), WithQueueSize(2))
	for _, p := range []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf", "e.pdf"} {
		require.NoError(t, q.Enqueue(context.Background(), Job{Path: p, RequestID: "rid-" + p}))
	}
	q.Shutdown(context.Background())

	assert.ElementsMatch(t, []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf", "e.pdf"}, seen)
	assert.Contains(t, ids, "rid-c.pdf")
}

func TestProcessorQueueKeepsGoingAfterErrors(t *testing.T) {
	var n atomic.Int32
	h := HandlerFunc(func(context.Context, Job) error {
		n.Add(1)
		return errors.New("boom")
	})
	q := NewProcessorQueue(h, nil, WithWorkers(1))
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "a"}))
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "b"}))
	q.Shutdown(context.Background())
	assert.Equal(t, int32(2), n.Load())
}

func TestProcessorQueueRejectsAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(HandlerFunc(func(context.Context, Job) error { return nil }), nil)
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())
	assert.ErrorIs(t, q.Enqueue(context.Background(), Job{Path: "late"}), common.ErrInput)
}

func TestProcessorQueueJobTimeout(t *testing.T) {
	got := make(chan error, 1)
	h := HandlerFunc(func(ctx context.Context, _ Job) error {
		<-ctx.Done()
		got <- ctx.Err()
		return ctx.Err()
	})
	q := NewProcessorQueue(h, nil, WithWorkers(1), WithProcessTimeout(20*time.Millisecond))
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "slow"}))
	q.Shutdown(context.Background())
	assert.ErrorIs(t, <-got, context.DeadlineExceeded)
}
