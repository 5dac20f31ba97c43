package audit_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/audit"
)

type recordingBatch struct {
	mu      sync.Mutex
	batches [][]audit.Event
	err     error
	block   chan struct{}
}

func (r *recordingBatch) StoreBatch(_ context.Context, events []audit.Event) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, append([]audit.Event(nil), events...))
	return r.err
}

func (r *recordingBatch) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.batches {
		n += len(b)
	}
	return n
}

func TestAsyncWriterFlushesOnBatchSize(t *testing.T) {
	t.Parallel()

	rec := &recordingBatch{}
	w := audit.NewAsyncWriter(rec, audit.AsyncOptions{BatchSize: 2, BatchTimeout: time.Hour}, nil)
	t.Cleanup(func() { _ = w.Close(context.Background()) })

	require.NoError(t, w.Store(context.Background(), audit.Event{ID: "1", Action: "x"}))
	require.NoError(t, w.Store(context.Background(), audit.Event{ID: "2", Action: "x"}))

	assert.Eventually(t, func() bool { return rec.total() == 2 }, time.Second, 5*time.Millisecond)
}

func TestAsyncWriterFlushesOnTimeout(t *testing.T) {
	t.Parallel()

	rec := &recordingBatch{}
	w := audit.NewAsyncWriter(rec, audit.AsyncOptions{BatchSize: 100, BatchTimeout: 10 * time.Millisecond}, nil)
	t.Cleanup(func() { _ = w.Close(context.Background()) })

	require.NoError(t, w.Store(context.Background(), audit.Event{ID: "1", Action: "x"}))
	assert.Eventually(t, func() bool { return rec.total() == 1 }, time.Second, 5*time.Millisecond)
}

func TestAsyncWriterCloseDrains(t *testing.T) {
	t.Parallel()

	rec := &recordingBatch{}
	w := audit.NewAsyncWriter(rec, audit.AsyncOptions{BatchSize: 100, BatchTimeout: time.Hour}, nil)
	for i := range 5 {
		require.NoError(t, w.Store(context.Background(), audit.Event{ID: string(rune('a' + i)), Action: "x"}))
	}

	require.NoError(t, w.Close(context.Background()))
	assert.Equal(t, 5, rec.total())
	assert.ErrorIs(t, w.Store(context.Background(), audit.Event{ID: "late", Action: "x"}), audit.ErrStorageNotAvailable)
	assert.NoError(t, w.Close(context.Background()))
}

func TestAsyncWriterBufferFull(t *testing.T) {
	t.Parallel()

	rec := &recordingBatch{block: make(chan struct{})}
	w := audit.NewAsyncWriter(rec, audit.AsyncOptions{BufferSize: 1, BatchSize: 1, BatchTimeout: time.Hour}, nil)

	// The first event is taken by the worker, which then blocks in StoreBatch.
	require.NoError(t, w.Store(context.Background(), audit.Event{ID: "1", Action: "x"}))
	require.Eventually(t, func() bool {
		return w.Store(context.Background(), audit.Event{ID: "2", Action: "x"}) == nil
	}, time.Second, time.Millisecond)

	assert.ErrorIs(t, w.Store(context.Background(), audit.Event{ID: "3", Action: "x"}), audit.ErrBufferFull)

	close(rec.block)
	require.NoError(t, w.Close(context.Background()))
	assert.Equal(t, 2, rec.total())
}

func TestAsyncWriterKeepsRunningAfterStoreError(t *testing.T) {
	t.Parallel()

	rec := &recordingBatch{err: errors.New("db down")}
	w := audit.NewAsyncWriter(rec, audit.AsyncOptions{BatchSize: 1, BatchTimeout: time.Hour}, nil)

	require.NoError(t, w.Store(context.Background(), audit.Event{ID: "1", Action: "x"}))
	require.NoError(t, w.Store(context.Background(), audit.Event{ID: "2", Action: "x"}))
	require.NoError(t, w.Close(context.Background()))
	assert.Equal(t, 2, rec.total())
}

func TestAsyncWriterCloseHonoursContext(t *testing.T) {
	t.Parallel()

	rec := &recordingBatch{block: make(chan struct{})}
	w := audit.NewAsyncWriter(rec, audit.AsyncOptions{BatchSize: 1, BatchTimeout: time.Hour}, nil)
	require.NoError(t, w.Store(context.Background(), audit.Event{ID: "1", Action: "x"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, w.Close(ctx), context.DeadlineExceeded)
	close(rec.block)
}

func TestNewAsyncWriterPanicsWithoutStorage(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { audit.NewAsyncWriter(nil, audit.AsyncOptions{}, nil) })
}
